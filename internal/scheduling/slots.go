package scheduling

import "time"

// SlotOptions controls candidate enumeration inside an open interval
type SlotOptions struct {
	// Step between consecutive candidates (60m for new bookings, 30m for reschedule)
	Step time.Duration
	// Duration of the requested session
	Duration time.Duration
	// AllowOverrun emits candidates whose session would end after the interval
	// closes. Off by default: a candidate must satisfy start+Duration <= End.
	AllowOverrun bool
}

// GenerateCandidates enumerates start times Start, Start+Step, ... inside the
// interval, dropping every candidate that is not strictly after now.
// The result is ascending and depends only on the arguments.
func GenerateCandidates(iv Interval, opts SlotOptions, now time.Time) []time.Time {
	candidates := make([]time.Time, 0)

	if opts.Step <= 0 || !iv.IsValid() {
		return candidates
	}
	if !opts.AllowOverrun && opts.Duration <= 0 {
		return candidates
	}

	for t := iv.Start; t.Before(iv.End); t = t.Add(opts.Step) {
		if !opts.AllowOverrun && t.Add(opts.Duration).After(iv.End) {
			break
		}
		if !t.After(now) {
			continue
		}
		candidates = append(candidates, t)
	}

	return candidates
}
