package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SessionScheduler/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SessionScheduler/pkg/types"
)

type fakeBookingRepo struct {
	booking *domain.Booking
	records []domain.BookingRecord
	err     error

	from, to time.Time
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return f.booking, nil
}

func (f *fakeBookingRepo) ListActiveForDay(_ context.Context, _ int64, from, to time.Time) ([]domain.BookingRecord, error) {
	f.from, f.to = from, to
	return f.records, f.err
}

type fakeAvailabilityRepo struct {
	windows []*domain.AvailabilityWindow
	err     error
}

func (f *fakeAvailabilityRepo) ListByPractitioner(context.Context, int64) ([]*domain.AvailabilityWindow, error) {
	return f.windows, f.err
}

type fakeMetrics struct {
	generated   int
	unavailable map[string]int
	skipped     int
}

func (f *fakeMetrics) ObserveSlots(_ string, n int) { f.generated += n }
func (f *fakeMetrics) IncSlotUnavailable(reason string) {
	if f.unavailable == nil {
		f.unavailable = map[string]int{}
	}
	f.unavailable[reason]++
}
func (f *fakeMetrics) AddSkippedRecords(n int) { f.skipped += n }

type recordingLogger struct {
	warns []string
}

func (l *recordingLogger) Info(string, ...interface{}) {}
func (l *recordingLogger) Warn(format string, v ...interface{}) {
	l.warns = append(l.warns, fmt.Sprintf(format, v...))
}
func (l *recordingLogger) Error(string, ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

// monday 2024-01-01
var monday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func record(id int64, scheduledAt string, minutes int) domain.BookingRecord {
	return domain.BookingRecord{
		ID:                  id,
		ClientID:            100 + id,
		PractitionerID:      1,
		ScheduledAt:         scheduledAt,
		DurationMinutes:     minutes,
		MaxParticipants:     1,
		CurrentParticipants: 1,
		Status:              string(domain.StatusScheduled),
	}
}

type fixture struct {
	uc       *UseCase
	bookings *fakeBookingRepo
	metrics  *fakeMetrics
	logger   *recordingLogger
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		bookings: &fakeBookingRepo{},
		metrics:  &fakeMetrics{},
		logger:   &recordingLogger{},
	}
	availability := &fakeAvailabilityRepo{windows: []*domain.AvailabilityWindow{{
		PractitionerID: 1,
		DayOfWeek:      int(time.Monday),
		StartTime:      types.MustTimeString("09:00"),
		EndTime:        types.MustTimeString("18:00"),
	}}}
	f.uc = NewUseCase(f.bookings, availability, f.metrics, Config{
		BookingStep:            time.Hour,
		RescheduleStep:         30 * time.Minute,
		DefaultDurationMinutes: 60,
		MaxAdvanceDays:         30,
		Location:               time.UTC,
	}, f.logger)
	f.uc.timeProvider = fixedTime{t: now}
	return f
}

func starts(slots []domain.CandidateSlot, onlyAvailable bool) []string {
	out := make([]string, 0)
	for _, s := range slots {
		if onlyAvailable && !s.Available {
			continue
		}
		out = append(out, s.StartTime.Format("15:04"))
	}
	return out
}

func TestExecute_BookingFlow(t *testing.T) {
	f := newFixture(monday.Add(8 * time.Hour))
	f.bookings.records = []domain.BookingRecord{
		record(1, "2024-01-01T10:00:00Z", 60),
		record(2, "not a timestamp", 60),
	}

	resp, err := f.uc.Execute(context.Background(), &Request{
		PractitionerID: 1,
		Date:           monday.Add(15 * time.Hour),
		SessionType:    domain.SessionIndividual,
		Flow:           domain.FlowBooking,
	})

	require.NoError(t, err)
	assert.Equal(t, monday, resp.Date)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t,
		[]string{"09:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"},
		starts(resp.Slots, true))

	assert.Equal(t, monday, f.bookings.from)
	assert.Equal(t, monday.AddDate(0, 0, 1), f.bookings.to)

	// битая запись пропущена и залогирована, но не блокирует день
	assert.Equal(t, 1, f.metrics.skipped)
	require.Len(t, f.logger.warns, 1)
	assert.Contains(t, f.logger.warns[0], "malformed")
	assert.Equal(t, 9, f.metrics.generated)
	assert.Equal(t, 1, f.metrics.unavailable["already_booked"])
}

func TestExecute_RescheduleFlow(t *testing.T) {
	f := newFixture(monday.Add(8 * time.Hour))
	f.bookings.booking = &domain.Booking{
		ID:              5,
		PractitionerID:  1,
		ScheduledAt:     monday.Add(10 * time.Hour),
		DurationMinutes: 90,
		MaxParticipants: 1,
		Status:          domain.StatusScheduled,
	}
	f.bookings.records = []domain.BookingRecord{record(5, "2024-01-01T10:00:00Z", 90)}

	resp, err := f.uc.Execute(context.Background(), &Request{
		PractitionerID: 1,
		Date:           monday,
		SessionType:    domain.SessionIndividual,
		Flow:           domain.FlowReschedule,
		BookingID:      5,
	})

	require.NoError(t, err)
	assert.Equal(t, 90, resp.DurationMinutes)
	all := starts(resp.Slots, false)
	assert.Equal(t, "09:00", all[0])
	assert.Equal(t, "09:30", all[1])
	// 16:30 + 90m = 18:00 - последний допустимый старт
	assert.Equal(t, "16:30", all[len(all)-1])
	// своя бронь не блокирует перенос
	assert.Len(t, starts(resp.Slots, true), len(all))
}

func TestExecute_RescheduleOtherPractitioner(t *testing.T) {
	f := newFixture(monday)
	f.bookings.booking = &domain.Booking{ID: 5, PractitionerID: 2, DurationMinutes: 60}

	_, err := f.uc.Execute(context.Background(), &Request{
		PractitionerID: 1,
		Date:           monday,
		SessionType:    domain.SessionIndividual,
		Flow:           domain.FlowReschedule,
		BookingID:      5,
	})

	assert.ErrorIs(t, err, ErrBookingMismatch)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		now     time.Time
		wantErr error
	}{
		{
			name:    "missing practitioner",
			req:     Request{Date: monday, SessionType: domain.SessionIndividual, Flow: domain.FlowBooking},
			now:     monday,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown flow",
			req:     Request{PractitionerID: 1, Date: monday, SessionType: domain.SessionIndividual, Flow: "other"},
			now:     monday,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "reschedule without booking",
			req:     Request{PractitionerID: 1, Date: monday, SessionType: domain.SessionIndividual, Flow: domain.FlowReschedule},
			now:     monday,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "duration too short",
			req:     Request{PractitionerID: 1, Date: monday, DurationMinutes: 5, SessionType: domain.SessionIndividual, Flow: domain.FlowBooking},
			now:     monday,
			wantErr: ErrInvalidInput,
		},
		{
			name:    "past date",
			req:     Request{PractitionerID: 1, Date: monday, SessionType: domain.SessionIndividual, Flow: domain.FlowBooking},
			now:     monday.AddDate(0, 0, 1),
			wantErr: ErrInvalidDate,
		},
		{
			name:    "too far ahead",
			req:     Request{PractitionerID: 1, Date: monday.AddDate(0, 0, 31), SessionType: domain.SessionIndividual, Flow: domain.FlowBooking},
			now:     monday,
			wantErr: ErrDateTooFarInFuture,
		},
		{
			name:    "reschedule unknown booking",
			req:     Request{PractitionerID: 1, Date: monday, SessionType: domain.SessionIndividual, Flow: domain.FlowReschedule, BookingID: 9},
			now:     monday,
			wantErr: ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.now)
			_, err := f.uc.Execute(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecute_RepositoryFailure(t *testing.T) {
	f := newFixture(monday)
	f.bookings.err = errors.New("db down")

	_, err := f.uc.Execute(context.Background(), &Request{
		PractitionerID: 1,
		Date:           monday,
		SessionType:    domain.SessionIndividual,
		Flow:           domain.FlowBooking,
	})

	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_GroupJoinSlot(t *testing.T) {
	f := newFixture(monday.Add(8 * time.Hour))
	group := record(7, "2024-01-01T14:00:00Z", 60)
	group.MaxParticipants = 10
	group.CurrentParticipants = 9
	f.bookings.records = []domain.BookingRecord{group}

	resp, err := f.uc.Execute(context.Background(), &Request{
		PractitionerID: 1,
		Date:           monday,
		SessionType:    domain.SessionGroup,
		Flow:           domain.FlowBooking,
	})

	require.NoError(t, err)
	var joinable *domain.CandidateSlot
	for i := range resp.Slots {
		if resp.Slots[i].IsGroupJoin() {
			joinable = &resp.Slots[i]
		}
	}
	require.NotNil(t, joinable)
	assert.Equal(t, "14:00", joinable.StartTime.Format("15:04"))
	assert.True(t, joinable.Available)
	assert.Equal(t, 1, joinable.SpotsLeft)
}

func TestExecute_KeepsCalendarDateInScheduleZone(t *testing.T) {
	est := time.FixedZone("UTC-5", -5*60*60)
	f := newFixture(monday.Add(8 * time.Hour))
	f.uc.cfg.Location = est

	resp, err := f.uc.Execute(context.Background(), &Request{
		PractitionerID: 1,
		Date:           monday, // "2024-01-01", распарсенная в UTC
		SessionType:    domain.SessionIndividual,
		Flow:           domain.FlowBooking,
	})

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, est), resp.Date)
	require.NotEmpty(t, resp.Slots)
	assert.True(t, resp.Slots[0].StartTime.Equal(time.Date(2024, time.January, 1, 14, 0, 0, 0, time.UTC)))
}
