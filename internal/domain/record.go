package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedRecord запись бронирования не может быть преобразована в Booking
var ErrMalformedRecord = errors.New("malformed booking record")

// BookingRecord persisted representation of a booking as it comes from the store.
// scheduled_at is kept as text so a single corrupt row does not fail the whole query.
type BookingRecord struct {
	ID                  int64
	ClientID            int64
	PractitionerID      int64
	ScheduledAt         string
	DurationMinutes     int
	MaxParticipants     int
	CurrentParticipants int
	Location            string
	Status              string
	Notes               *string
	CancellationReason  *string
	CancelledAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// recordTimeLayouts форматы, которые встречаются в scheduled_at
var recordTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseScheduledAt парсит ISO-8601 метку времени. Метки без зоны трактуются как UTC.
func ParseScheduledAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty scheduled_at", ErrMalformedRecord)
	}
	for _, layout := range recordTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable scheduled_at %q", ErrMalformedRecord, s)
}

// ToBooking validates the record and converts it into a Booking
func (r BookingRecord) ToBooking() (*Booking, error) {
	scheduledAt, err := ParseScheduledAt(r.ScheduledAt)
	if err != nil {
		return nil, fmt.Errorf("booking id=%d: %w", r.ID, err)
	}
	if r.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: booking id=%d: duration_minutes=%d", ErrMalformedRecord, r.ID, r.DurationMinutes)
	}

	status := BookingStatus(r.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: booking id=%d: unknown status %q", ErrMalformedRecord, r.ID, r.Status)
	}

	maxParticipants := r.MaxParticipants
	if maxParticipants < 1 {
		maxParticipants = 1
	}

	return &Booking{
		ID:                  r.ID,
		ClientID:            r.ClientID,
		PractitionerID:      r.PractitionerID,
		ScheduledAt:         scheduledAt,
		DurationMinutes:     r.DurationMinutes,
		MaxParticipants:     maxParticipants,
		CurrentParticipants: r.CurrentParticipants,
		Location:            SessionLocation(r.Location),
		Status:              status,
		Notes:               r.Notes,
		CancellationReason:  r.CancellationReason,
		CancelledAt:         r.CancelledAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}, nil
}

// ParseRecords converts records, collecting the ones that failed instead of aborting
func ParseRecords(records []BookingRecord) ([]*Booking, []error) {
	bookings := make([]*Booking, 0, len(records))
	var skipped []error

	for _, rec := range records {
		b, err := rec.ToBooking()
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		bookings = append(bookings, b)
	}

	return bookings, skipped
}
