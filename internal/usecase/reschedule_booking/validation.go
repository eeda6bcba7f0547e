package reschedule_booking

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

	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.NewScheduledAt.IsZero() {
		return fmt.Errorf("%w: newScheduledAt is required", ErrInvalidInput)
	}

	return nil
}

// canReschedule переносить может клиент-владелец, практик этого занятия или администратор
func canReschedule(actor domain.Actor, booking *domain.Booking) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleClient:
		return booking.IsOwnedBy(actor.UserID)
	case domain.RolePractitioner:
		return booking.PractitionerID == actor.UserID
	default:
		return false
	}
}

// checkPlacement проверяет, что занятие помещается в открытое окно дня
// и начинается на сетке переноса этого окна
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
