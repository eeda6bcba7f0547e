package scheduling

import (
	"slices"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// DayRequest is everything needed to build the slot list of one practitioner day
type DayRequest struct {
	Date     time.Time
	Windows  []*domain.AvailabilityWindow
	Bookings []*domain.Booking
	Options  SlotOptions
	Check    CheckOptions
	Now      time.Time
}

// BuildDaySlots resolves the day's open intervals, enumerates candidates in each
// and checks every candidate against the bookings. For group requests the start
// times of joinable group sessions inside the open intervals are offered too,
// even when they are off the step grid. Output is ascending without duplicates.
func BuildDaySlots(req DayRequest) []domain.CandidateSlot {
	intervals := ResolveAvailability(req.Windows, req.Date)
	slots := make([]domain.CandidateSlot, 0)
	if len(intervals) == 0 {
		return slots
	}

	seen := make(map[int64]struct{})
	starts := make([]time.Time, 0)
	add := func(t time.Time) {
		key := t.UnixNano()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		starts = append(starts, t)
	}

	for _, iv := range intervals {
		for _, t := range GenerateCandidates(iv, req.Options, req.Now) {
			add(t)
		}
	}
	if req.Check.IsGroup {
		for _, t := range groupStarts(intervals, req.Bookings, req.Check, req.Now) {
			add(t)
		}
	}

	slices.SortFunc(starts, func(a, b time.Time) int { return a.Compare(b) })

	durationMinutes := int(req.Options.Duration / time.Minute)
	for _, t := range starts {
		v := CheckCandidate(t, req.Options.Duration, req.Bookings, req.Check)
		slots = append(slots, domain.CandidateSlot{
			StartTime:       t,
			DurationMinutes: durationMinutes,
			Available:       v.Available,
			Reason:          v.Reason,
			SpotsLeft:       v.SpotsLeft,
			GroupBookingID:  v.GroupBookingID,
		})
	}

	return slots
}

func groupStarts(intervals []Interval, bookings []*domain.Booking, opts CheckOptions, now time.Time) []time.Time {
	var starts []time.Time
	for _, b := range bookings {
		if !counts(b, opts) || !b.IsGroup() || !b.ScheduledAt.After(now) {
			continue
		}
		for _, iv := range intervals {
			if iv.Contains(b.ScheduledAt) {
				starts = append(starts, b.ScheduledAt)
				break
			}
		}
	}
	return starts
}
