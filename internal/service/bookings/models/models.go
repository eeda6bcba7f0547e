package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	Actor              domain.Actor `json:"-"`
	CancellationReason *string      `json:"cancellationReason,omitempty"`
	UseGrace           bool         `json:"useGrace"` // Списать льготную отмену внутри окна отсечки
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	Actor  domain.Actor `json:"-"`
	Status string       `json:"status"`
}

// GetClientBookingsRequest запрос на получение бронирований клиента
type GetClientBookingsRequest struct {
	Actor    domain.Actor
	ClientID int64
	Status   *string
}

// GetPractitionerBookingsRequest запрос на получение расписания практика
type GetPractitionerBookingsRequest struct {
	Actor            domain.Actor
	PractitionerID   int64
	From             *time.Time // Начало периода (опционально)
	To               *time.Time // Конец периода, не включительно (опционально)
	Status           *string    // Фильтр по статусу (опционально)
	IncludeCancelled bool       // Включить отмененные бронирования
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetPractitionerBookingsRequest) ToDomainFilter() (domain.PractitionerBookingsFilter, error) {
	filter := domain.PractitionerBookingsFilter{
		PractitionerID:   r.PractitionerID,
		From:             r.From,
		To:               r.To,
		IncludeCancelled: r.IncludeCancelled,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                  int64   `json:"id"`
	ClientID            int64   `json:"clientId"`
	PractitionerID      int64   `json:"practitionerId"`
	ScheduledAt         string  `json:"scheduledAt"` // RFC 3339
	DurationMinutes     int     `json:"durationMinutes"`
	SessionType         string  `json:"sessionType"`
	MaxParticipants     int     `json:"maxParticipants"`
	CurrentParticipants int     `json:"currentParticipants"`
	Location            string  `json:"location"`
	Status              string  `json:"status"`
	Notes               *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// PolicyResponse решение политики переноса/отмены для интерфейса
type PolicyResponse struct {
	BookingID      int64   `json:"bookingId"`
	Allowed        bool    `json:"allowed"`
	HoursUntil     float64 `json:"hoursUntil"`
	State          string  `json:"state"`
	Reason         string  `json:"reason,omitempty"`
	Notice         string  `json:"notice,omitempty"`
	GraceAvailable bool    `json:"graceAvailable"`
}

// CancelBookingResponse результат отмены
type CancelBookingResponse struct {
	BookingID int64  `json:"bookingId"`
	Status    string `json:"status"`
	GraceUsed bool   `json:"graceUsed"`
	Notice    string `json:"notice,omitempty"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                  b.ID,
		ClientID:            b.ClientID,
		PractitionerID:      b.PractitionerID,
		ScheduledAt:         b.ScheduledAt.Format(time.RFC3339),
		DurationMinutes:     b.DurationMinutes,
		SessionType:         string(b.SessionType()),
		MaxParticipants:     b.MaxParticipants,
		CurrentParticipants: b.CurrentParticipants,
		Location:            string(b.Location),
		Status:              string(b.Status),
		Notes:               b.Notes,
		CancellationReason:  b.CancellationReason,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}

	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// FromDecision конвертирует решение политики в DTO
func FromDecision(bookingID int64, d domain.RescheduleDecision) *PolicyResponse {
	return &PolicyResponse{
		BookingID:      bookingID,
		Allowed:        d.Allowed,
		HoursUntil:     d.HoursUntil,
		State:          string(d.State),
		Reason:         d.Reason,
		Notice:         d.Notice,
		GraceAvailable: d.GraceAvailable,
	}
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
