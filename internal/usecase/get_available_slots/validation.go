package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.PractitionerID <= 0 {
		return fmt.Errorf("%w: practitionerID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if !req.Flow.IsValid() {
		return fmt.Errorf("%w: unknown flow %q", ErrInvalidInput, req.Flow)
	}

	if req.SessionType != domain.SessionIndividual && req.SessionType != domain.SessionGroup {
		return fmt.Errorf("%w: unknown session type %q", ErrInvalidInput, req.SessionType)
	}

	if req.DurationMinutes != 0 &&
		(req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes) {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	if req.Flow == domain.FlowReschedule && req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID is required for reschedule", ErrInvalidInput)
	}

	return nil
}

// validateDate проверяет, что дата не в прошлом и не дальше maxAdvanceDays
func validateDate(date time.Time, now time.Time, maxAdvanceDays int) error {
	today := startOfDay(now, date.Location())
	if date.Before(today) {
		return ErrInvalidDate
	}

	// Если maxAdvanceDays = 0, нет ограничений на дату
	if maxAdvanceDays == 0 {
		return nil
	}

	if date.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxAdvanceDays)
	}

	return nil
}

// startOfDay полночь календарного дня t в часовом поясе loc
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// calendarDate полночь в loc того же календарного дня, что и t в собственном часовом поясе.
// Дата "2024-01-01", распарсенная в UTC, остается 1 января и для расписаний в UTC-5.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
