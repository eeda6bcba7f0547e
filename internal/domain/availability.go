package domain

import (
	"time"

	"github.com/m04kA/SMC-SessionScheduler/pkg/types"
)

// AvailabilityWindow represents a practitioner's recurring weekly open period
type AvailabilityWindow struct {
	ID             int64
	PractitionerID int64
	DayOfWeek      int // 0-6, Sunday = 0
	StartTime      types.TimeString
	EndTime        types.TimeString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Weekday returns the window's day as time.Weekday
func (w *AvailabilityWindow) Weekday() time.Weekday {
	return time.Weekday(w.DayOfWeek)
}

// IsValid returns true if the window has a known weekday and start < end
func (w *AvailabilityWindow) IsValid() bool {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return false
	}
	if w.StartTime.Validate() != nil || w.EndTime.IsZero() {
		return false
	}
	return w.StartTime.IsBefore(w.EndTime)
}

// Overlaps returns true if both windows are on the same day and intersect
func (w *AvailabilityWindow) Overlaps(other *AvailabilityWindow) bool {
	if w.DayOfWeek != other.DayOfWeek {
		return false
	}
	return w.StartTime.IsBefore(other.EndTime) && other.StartTime.IsBefore(w.EndTime)
}
