package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

func TestOverlaps_Symmetric(t *testing.T) {
	intervals := []Interval{
		{Start: at("09:00"), End: at("10:00")},
		{Start: at("09:30"), End: at("10:30")},
		{Start: at("10:00"), End: at("11:00")},
		{Start: at("08:00"), End: at("12:00")},
		{Start: at("11:00"), End: at("11:00")},
	}

	for _, a := range intervals {
		for _, b := range intervals {
			assert.Equal(t, Overlaps(a, b), Overlaps(b, a), "%v / %v", a, b)
		}
	}
}

func TestOverlaps_TouchingIsNotOverlap(t *testing.T) {
	a := Interval{Start: at("10:00"), End: at("11:00")}
	b := Interval{Start: at("11:00"), End: at("12:00")}
	assert.False(t, Overlaps(a, b))
	assert.True(t, Overlaps(a, Interval{Start: at("10:59"), End: at("11:30")}))
}

func TestCheckCandidate_Individual(t *testing.T) {
	bookings := []*domain.Booking{booking(1, "10:00", 60)}

	tests := []struct {
		name      string
		candidate string
		duration  time.Duration
		available bool
	}{
		{"starts inside existing", "10:30", 30 * time.Minute, false},
		{"starts when existing ends", "11:00", 30 * time.Minute, true},
		{"ends inside existing", "09:30", time.Hour, false},
		{"ends when existing starts", "09:00", time.Hour, true},
		{"contains existing", "09:30", 2 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CheckCandidate(at(tt.candidate), tt.duration, bookings, CheckOptions{})
			assert.Equal(t, tt.available, v.Available)
			if !tt.available {
				assert.Equal(t, domain.ReasonAlreadyBooked, v.Reason)
			}
		})
	}
}

func TestCheckCandidate_GroupJoin(t *testing.T) {
	t.Run("capacity left", func(t *testing.T) {
		bookings := []*domain.Booking{groupBooking(7, "14:00", 60, 10, 9)}

		v := CheckCandidate(at("14:00"), time.Hour, bookings, CheckOptions{IsGroup: true})

		assert.True(t, v.Available)
		assert.Equal(t, 1, v.SpotsLeft)
		assert.Equal(t, int64(7), v.GroupBookingID)
	})

	t.Run("full", func(t *testing.T) {
		bookings := []*domain.Booking{groupBooking(7, "14:00", 60, 10, 10)}

		v := CheckCandidate(at("14:00"), time.Hour, bookings, CheckOptions{IsGroup: true})

		assert.False(t, v.Available)
		assert.Equal(t, domain.ReasonGroupFull, v.Reason)
	})

	t.Run("join ignores other overlaps", func(t *testing.T) {
		bookings := []*domain.Booking{
			groupBooking(7, "14:00", 60, 10, 3),
			booking(8, "14:30", 60),
		}

		v := CheckCandidate(at("14:00"), time.Hour, bookings, CheckOptions{IsGroup: true})

		assert.True(t, v.Available)
	})

	t.Run("off exact time falls back to exclusive rule", func(t *testing.T) {
		bookings := []*domain.Booking{groupBooking(7, "14:00", 60, 10, 3)}

		v := CheckCandidate(at("14:30"), time.Hour, bookings, CheckOptions{IsGroup: true})

		assert.False(t, v.Available)
		assert.Equal(t, domain.ReasonAlreadyBooked, v.Reason)
	})

	t.Run("individual request cannot share a group slot", func(t *testing.T) {
		bookings := []*domain.Booking{groupBooking(7, "14:00", 60, 10, 3)}

		v := CheckCandidate(at("14:00"), time.Hour, bookings, CheckOptions{})

		assert.False(t, v.Available)
		assert.Equal(t, domain.ReasonAlreadyBooked, v.Reason)
	})

	t.Run("new group class on free time is checked like individual", func(t *testing.T) {
		v := CheckCandidate(at("16:00"), time.Hour, []*domain.Booking{booking(1, "10:00", 60)}, CheckOptions{IsGroup: true})

		assert.True(t, v.Available)
		assert.Zero(t, v.GroupBookingID)
	})
}

func TestCheckCandidate_SkipsIgnoredBookings(t *testing.T) {
	cancelled := booking(1, "09:00", 60)
	cancelled.Status = domain.StatusCancelled

	zeroTime := booking(2, "09:00", 60)
	zeroTime.ScheduledAt = time.Time{}

	noDuration := booking(3, "09:00", 0)

	v := CheckCandidate(at("09:00"), time.Hour, []*domain.Booking{cancelled, zeroTime, noDuration, nil}, CheckOptions{})

	assert.True(t, v.Available)
	assert.Equal(t, domain.ReasonNone, v.Reason)
}

func TestCheckCandidate_ExcludeBooking(t *testing.T) {
	bookings := []*domain.Booking{booking(5, "10:00", 60)}

	assert.False(t, CheckCandidate(at("10:30"), time.Hour, bookings, CheckOptions{}).Available)
	assert.True(t, CheckCandidate(at("10:30"), time.Hour, bookings, CheckOptions{ExcludeBookingID: 5}).Available)
}

func TestCheckAt(t *testing.T) {
	bookings := []*domain.Booking{booking(1, "10:00", 60)}

	v := CheckAt(at("09:00"), time.Hour, bookings, CheckOptions{}, at("09:00"))
	assert.Equal(t, Verdict{Available: false, Reason: domain.ReasonInThePast}, v)

	v = CheckAt(at("10:00"), time.Hour, bookings, CheckOptions{}, at("09:00"))
	assert.Equal(t, domain.ReasonAlreadyBooked, v.Reason)

	v = CheckAt(at("11:00"), time.Hour, bookings, CheckOptions{}, at("09:00"))
	assert.True(t, v.Available)
}
