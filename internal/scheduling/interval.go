// Package scheduling computes bookable session start times for a practitioner
// and evaluates the reschedule cutoff rule. Everything here is pure: callers
// pass in the data snapshot and the current time.
package scheduling

import "time"

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsValid returns true if the interval is non-empty
func (i Interval) IsValid() bool {
	return i.Start.Before(i.End)
}

// Duration returns the interval length
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Contains returns true if t lies inside [Start, End)
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Overlaps reports whether two half-open intervals share any instant.
// Intervals that only touch (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}
