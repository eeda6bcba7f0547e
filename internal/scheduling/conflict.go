package scheduling

import (
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// CheckOptions describes the request a candidate is checked for
type CheckOptions struct {
	// IsGroup marks a request to join an existing group session
	IsGroup bool
	// ExcludeBookingID is ignored during the check (the booking being rescheduled)
	ExcludeBookingID int64
}

// Verdict is the outcome of checking one candidate
type Verdict struct {
	Available      bool
	Reason         domain.SlotReason
	SpotsLeft      int
	GroupBookingID int64
}

// CheckCandidate decides whether a session of the given duration can start at
// candidate. bookings are the practitioner's bookings around that day; cancelled
// bookings and bookings without a usable start or duration never conflict.
//
// A group request that lands exactly on the start of a group session joins it:
// the result depends only on that session's capacity. Anything else is exclusive
// and fails on the first overlap.
func CheckCandidate(candidate time.Time, duration time.Duration, bookings []*domain.Booking, opts CheckOptions) Verdict {
	if opts.IsGroup {
		if v, ok := checkGroupJoin(candidate, bookings, opts); ok {
			return v
		}
	}

	slot := Interval{Start: candidate, End: candidate.Add(duration)}
	for _, b := range bookings {
		if !counts(b, opts) {
			continue
		}
		if Overlaps(slot, Interval{Start: b.ScheduledAt, End: b.End()}) {
			return Verdict{Available: false, Reason: domain.ReasonAlreadyBooked}
		}
	}

	return Verdict{Available: true}
}

// CheckAt is CheckCandidate for a single requested time: a candidate that is
// not strictly after now is rejected with ReasonInThePast.
func CheckAt(candidate time.Time, duration time.Duration, bookings []*domain.Booking, opts CheckOptions, now time.Time) Verdict {
	if !candidate.After(now) {
		return Verdict{Available: false, Reason: domain.ReasonInThePast}
	}
	return CheckCandidate(candidate, duration, bookings, opts)
}

func checkGroupJoin(candidate time.Time, bookings []*domain.Booking, opts CheckOptions) (Verdict, bool) {
	var full *domain.Booking

	for _, b := range bookings {
		if !counts(b, opts) || !b.IsGroup() || !b.ScheduledAt.Equal(candidate) {
			continue
		}
		if b.HasCapacity() {
			return Verdict{
				Available:      true,
				SpotsLeft:      b.SpotsLeft(),
				GroupBookingID: b.ID,
			}, true
		}
		if full == nil {
			full = b
		}
	}

	if full != nil {
		return Verdict{Available: false, Reason: domain.ReasonGroupFull, GroupBookingID: full.ID}, true
	}
	return Verdict{}, false
}

// counts returns true if the booking takes part in conflict detection
func counts(b *domain.Booking, opts CheckOptions) bool {
	if b == nil || !b.IsActive() {
		return false
	}
	if opts.ExcludeBookingID != 0 && b.ID == opts.ExcludeBookingID {
		return false
	}
	return !b.ScheduledAt.IsZero() && b.DurationMinutes > 0
}
