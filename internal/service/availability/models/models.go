package models

import (
	"fmt"
	"sort"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/pkg/types"
)

// Request модели

// WindowRequest окно доступности в запросе
type WindowRequest struct {
	DayOfWeek int    `json:"dayOfWeek"` // 0 - воскресенье
	StartTime string `json:"startTime"` // "09:00"
	EndTime   string `json:"endTime"`   // "18:00"
}

// ReplaceWeeklyRequest полная замена недельного расписания практика
type ReplaceWeeklyRequest struct {
	Actor          domain.Actor    `json:"-"`
	PractitionerID int64           `json:"-"`
	Windows        []WindowRequest `json:"windows"`
}

// ToDomainWindows парсит окна запроса. Проверка согласованности окон выполняется в сервисе.
func (r *ReplaceWeeklyRequest) ToDomainWindows() ([]*domain.AvailabilityWindow, error) {
	windows := make([]*domain.AvailabilityWindow, 0, len(r.Windows))
	for i, w := range r.Windows {
		start, err := types.NewTimeStringFromString(w.StartTime)
		if err != nil {
			return nil, fmt.Errorf("windows[%d].startTime: %w", i, err)
		}
		end, err := types.NewTimeStringFromString(w.EndTime)
		if err != nil {
			return nil, fmt.Errorf("windows[%d].endTime: %w", i, err)
		}
		windows = append(windows, &domain.AvailabilityWindow{
			PractitionerID: r.PractitionerID,
			DayOfWeek:      w.DayOfWeek,
			StartTime:      start,
			EndTime:        end,
		})
	}
	return windows, nil
}

// Response модели

// WindowResponse окно доступности в ответе
type WindowResponse struct {
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// WeeklyResponse недельное расписание практика
type WeeklyResponse struct {
	PractitionerID int64            `json:"practitionerId"`
	Windows        []WindowResponse `json:"windows"`
}

// FromDomainWindows конвертирует окна в DTO, упорядочивая по дню и времени начала
func FromDomainWindows(practitionerID int64, windows []*domain.AvailabilityWindow) *WeeklyResponse {
	resp := &WeeklyResponse{
		PractitionerID: practitionerID,
		Windows:        make([]WindowResponse, 0, len(windows)),
	}

	for _, w := range windows {
		if w == nil {
			continue
		}
		resp.Windows = append(resp.Windows, WindowResponse{
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime.String(),
			EndTime:   w.EndTime.String(),
		})
	}

	sort.SliceStable(resp.Windows, func(i, j int) bool {
		a, b := resp.Windows[i], resp.Windows[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		return a.StartTime < b.StartTime
	})

	return resp
}
