package scheduling

import (
	"slices"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// ResolveAvailability returns the open intervals of the given calendar date.
// Windows of other weekdays and invalid windows are ignored; overlapping or
// adjacent windows of the same day are merged. The result is sorted by start
// and is empty when the practitioner is not available that day.
func ResolveAvailability(windows []*domain.AvailabilityWindow, date time.Time) []Interval {
	weekday := date.Weekday()
	intervals := make([]Interval, 0, 1)

	for _, w := range windows {
		if w == nil || w.Weekday() != weekday || !w.IsValid() {
			continue
		}
		intervals = append(intervals, Interval{
			Start: w.StartTime.On(date),
			End:   w.EndTime.On(date),
		})
	}

	if len(intervals) < 2 {
		return intervals
	}

	slices.SortFunc(intervals, func(a, b Interval) int {
		return a.Start.Compare(b.Start)
	})

	merged := intervals[:1]
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}

	return merged
}
