package scheduling

import (
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/pkg/types"
)

// monday 2024-01-01
var monday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func at(hhmm string) time.Time {
	return types.MustTimeString(hhmm).On(monday)
}

func window(day time.Weekday, start, end string) *domain.AvailabilityWindow {
	return &domain.AvailabilityWindow{
		PractitionerID: 1,
		DayOfWeek:      int(day),
		StartTime:      types.MustTimeString(start),
		EndTime:        types.MustTimeString(end),
	}
}

func booking(id int64, start string, minutes int) *domain.Booking {
	return &domain.Booking{
		ID:                  id,
		PractitionerID:      1,
		ScheduledAt:         at(start),
		DurationMinutes:     minutes,
		MaxParticipants:     1,
		CurrentParticipants: 1,
		Status:              domain.StatusScheduled,
	}
}

func groupBooking(id int64, start string, minutes, max, current int) *domain.Booking {
	b := booking(id, start, minutes)
	b.MaxParticipants = max
	b.CurrentParticipants = current
	return b
}

func startTimes(slots []domain.CandidateSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.StartTime.Format("15:04"))
	}
	return out
}
