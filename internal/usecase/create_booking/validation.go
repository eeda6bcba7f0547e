package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/internal/scheduling"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Actor.UserID <= 0 || !req.Actor.Role.IsValid() {
		return fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}

	if req.PractitionerID <= 0 {
		return fmt.Errorf("%w: practitionerID must be positive", ErrInvalidInput)
	}

	if req.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is required", ErrInvalidInput)
	}

	if req.DurationMinutes != 0 &&
		(req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes) {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	switch req.SessionType {
	case domain.SessionIndividual:
	case domain.SessionGroup:
		if req.Actor.IsAdmin() && (req.MaxParticipants < 2 || req.MaxParticipants > domain.MaxGroupParticipants) {
			return fmt.Errorf("%w: group session needs between 2 and %d participants",
				ErrInvalidInput, domain.MaxGroupParticipants)
		}
	default:
		return fmt.Errorf("%w: unknown session type %q", ErrInvalidInput, req.SessionType)
	}

	if req.Location != domain.LocationOnline && req.Location != domain.LocationInPerson {
		return fmt.Errorf("%w: unknown location %q", ErrInvalidInput, req.Location)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateAdvance проверяет ограничение на запись заранее
func validateAdvance(scheduledAt, now time.Time, maxAdvanceDays int, loc *time.Location) error {
	if maxAdvanceDays == 0 {
		return nil
	}

	limit := startOfDay(now, loc).AddDate(0, 0, maxAdvanceDays+1)
	if !scheduledAt.Before(limit) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxAdvanceDays)
	}

	return nil
}

// checkPlacement проверяет, что занятие помещается в открытое окно дня
// и начинается на сетке слотов этого окна
func checkPlacement(windows []*domain.AvailabilityWindow, start time.Time, duration, step time.Duration, allowOverrun bool, loc *time.Location) error {
	end := start.Add(duration)

	for _, iv := range scheduling.ResolveAvailability(windows, startOfDay(start, loc)) {
		if !iv.Contains(start) {
			continue
		}
		if !allowOverrun && end.After(iv.End) {
			return ErrOutsideAvailability
		}
		if step > 0 && start.Sub(iv.Start)%step != 0 {
			return fmt.Errorf("%w: start must be a multiple of %s from %s",
				ErrNotOnGrid, step, iv.Start.Format(domain.TimeFormat))
		}
		return nil
	}

	return ErrOutsideAvailability
}

// startOfDay полночь календарного дня t в часовом поясе loc
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
