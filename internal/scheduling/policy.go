package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// DefaultRescheduleCutoff is how long before a session a client may still move or cancel it
const DefaultRescheduleCutoff = domain.DefaultRescheduleCutoffHours * time.Hour

// PolicyInput is the snapshot the reschedule rule is evaluated against
type PolicyInput struct {
	ScheduledAt time.Time
	Now         time.Time
	// GraceUsed is true once the client spent the one-time grace cancellation.
	// Unknown grace data must be passed as false.
	GraceUsed bool
	IsAdmin   bool
	// Cutoff overrides DefaultRescheduleCutoff when positive
	Cutoff time.Duration
}

// EvaluateReschedule applies the cutoff rule: a session at least Cutoff away is
// eligible, otherwise it is blocked and the grace flag picks the message.
// Admins are always eligible and only get a notice inside the cutoff.
func EvaluateReschedule(in PolicyInput) domain.RescheduleDecision {
	cutoff := in.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultRescheduleCutoff
	}

	until := in.ScheduledAt.Sub(in.Now)
	decision := domain.RescheduleDecision{
		HoursUntil:     until.Hours(),
		GraceAvailable: !in.GraceUsed,
	}
	inside := until < cutoff

	if in.IsAdmin {
		decision.Allowed = true
		decision.State = domain.StateEligible
		if inside {
			decision.Notice = fmt.Sprintf(
				"session starts in less than %s; changing it overrides the client cutoff", formatCutoff(cutoff))
		}
		return decision
	}

	if !inside {
		decision.Allowed = true
		decision.State = domain.StateEligible
		return decision
	}

	if in.GraceUsed {
		decision.State = domain.StateBlockedGraceUsed
		decision.Reason = fmt.Sprintf(
			"sessions cannot be changed less than %s before the start and the one-time grace cancellation has already been used",
			formatCutoff(cutoff))
		return decision
	}

	decision.State = domain.StateBlockedStandard
	decision.Reason = fmt.Sprintf(
		"sessions cannot be rescheduled less than %s before the start; a one-time grace cancellation is still available",
		formatCutoff(cutoff))
	return decision
}

func formatCutoff(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}
