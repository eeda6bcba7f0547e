package create_booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SessionScheduler/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SessionScheduler/pkg/txmanager"
	"github.com/m04kA/SMC-SessionScheduler/pkg/types"
)

type fakeBookingRepo struct {
	records   []domain.BookingRecord
	bookings  map[int64]*domain.Booking
	createErr error
	joinErr   error

	created *domain.Booking
	joined  [][2]int64
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := *b
	c.ID = 42
	f.created = &c
	return &c, nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if b, ok := f.bookings[id]; ok {
		return b, nil
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (f *fakeBookingRepo) ListActiveForDay(context.Context, int64, time.Time, time.Time) ([]domain.BookingRecord, error) {
	return f.records, nil
}

func (f *fakeBookingRepo) JoinGroup(_ context.Context, bookingID, clientID int64) error {
	if f.joinErr != nil {
		return f.joinErr
	}
	f.joined = append(f.joined, [2]int64{bookingID, clientID})
	return nil
}

type fakeAvailabilityRepo struct {
	windows []*domain.AvailabilityWindow
}

func (f *fakeAvailabilityRepo) ListByPractitioner(context.Context, int64) ([]*domain.AvailabilityWindow, error) {
	return f.windows, nil
}

// fakeTx выполняет fn без транзакции и, если задано, подменяет ее результат
type fakeTx struct {
	err error
}

func (f *fakeTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return f.err
}

type fakeMetrics struct {
	conflicts int
	skipped   int
}

func (f *fakeMetrics) IncBookingConflict(string) { f.conflicts++ }
func (f *fakeMetrics) AddSkippedRecords(n int)   { f.skipped += n }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

// monday 2024-01-01
var monday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var client = domain.Actor{UserID: 7, Role: domain.RoleClient}

type fixture struct {
	uc       *UseCase
	bookings *fakeBookingRepo
	tx       *fakeTx
	metrics  *fakeMetrics
}

func newFixture() *fixture {
	f := &fixture{
		bookings: &fakeBookingRepo{bookings: map[int64]*domain.Booking{}},
		tx:       &fakeTx{},
		metrics:  &fakeMetrics{},
	}
	availability := &fakeAvailabilityRepo{windows: []*domain.AvailabilityWindow{{
		PractitionerID: 1,
		DayOfWeek:      int(time.Monday),
		StartTime:      types.MustTimeString("09:00"),
		EndTime:        types.MustTimeString("18:00"),
	}}}
	f.uc = NewUseCase(f.bookings, availability, f.tx, f.metrics, Config{
		Step:                   time.Hour,
		DefaultDurationMinutes: 60,
		MaxAdvanceDays:         30,
	}, nopLogger{})
	f.uc.timeProvider = fixedTime{t: monday.Add(8 * time.Hour)}
	return f
}

func individual(at time.Duration) *Request {
	return &Request{
		Actor:          client,
		PractitionerID: 1,
		ScheduledAt:    monday.Add(at),
		SessionType:    domain.SessionIndividual,
		Location:       domain.LocationOnline,
	}
}

func record(id int64, at string, minutes, max, current int) domain.BookingRecord {
	return domain.BookingRecord{
		ID:                  id,
		ClientID:            100 + id,
		PractitionerID:      1,
		ScheduledAt:         at,
		DurationMinutes:     minutes,
		MaxParticipants:     max,
		CurrentParticipants: current,
		Status:              string(domain.StatusScheduled),
	}
}

func TestExecute_CreatesIndividualBooking(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), individual(10*time.Hour))

	require.NoError(t, err)
	assert.False(t, resp.Joined)
	assert.Equal(t, int64(42), resp.Booking.ID)
	require.NotNil(t, f.bookings.created)
	assert.Equal(t, int64(7), f.bookings.created.ClientID)
	assert.Equal(t, 60, f.bookings.created.DurationMinutes)
	assert.Equal(t, 1, f.bookings.created.MaxParticipants)
	assert.Equal(t, domain.StatusScheduled, f.bookings.created.Status)
}

func TestExecute_AdminBooksForClient(t *testing.T) {
	f := newFixture()
	req := individual(10 * time.Hour)
	req.Actor = domain.Actor{UserID: 1000, Role: domain.RoleAdmin}
	req.ClientID = 55

	_, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, int64(55), f.bookings.created.ClientID)
}

func TestExecute_SlotTaken(t *testing.T) {
	f := newFixture()
	f.bookings.records = []domain.BookingRecord{
		record(1, "2024-01-01T10:30:00Z", 60, 1, 1),
		record(2, "garbage", 60, 1, 1),
	}

	_, err := f.uc.Execute(context.Background(), individual(10*time.Hour))

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Nil(t, f.bookings.created)
	assert.Equal(t, 1, f.metrics.conflicts)
	assert.Equal(t, 1, f.metrics.skipped)
}

func TestExecute_BackToBackIsAllowed(t *testing.T) {
	f := newFixture()
	f.bookings.records = []domain.BookingRecord{record(1, "2024-01-01T09:00:00Z", 60, 1, 1)}

	_, err := f.uc.Execute(context.Background(), individual(10*time.Hour))

	assert.NoError(t, err)
}

func TestExecute_ConcurrentWriteMapsToSlotNotAvailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"serialization failure", fmt.Errorf("%w: commit", txmanager.ErrSerialization)},
		{"exclusion constraint", fmt.Errorf("%w: insert", txmanager.ErrConflict)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.tx.err = tt.err

			_, err := f.uc.Execute(context.Background(), individual(10*time.Hour))

			assert.ErrorIs(t, err, ErrSlotNotAvailable)
			assert.Equal(t, 1, f.metrics.conflicts)
		})
	}
}

func TestExecute_CreateFailureIsInternal(t *testing.T) {
	f := newFixture()
	f.bookings.createErr = &pq.Error{Code: "XX000"}

	_, err := f.uc.Execute(context.Background(), individual(10*time.Hour))

	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
		want   error
	}{
		{"practitioner cannot book", func(r *Request) { r.Actor.Role = domain.RolePractitioner }, ErrForbidden},
		{"in the past", func(r *Request) { r.ScheduledAt = monday.Add(7 * time.Hour) }, ErrInThePast},
		{"exactly now", func(r *Request) { r.ScheduledAt = monday.Add(8 * time.Hour) }, ErrInThePast},
		{"too far ahead", func(r *Request) { r.ScheduledAt = monday.AddDate(0, 0, 40).Add(10 * time.Hour) }, ErrDateTooFarInFuture},
		{"before opening", func(r *Request) { r.ScheduledAt = monday.Add(8*time.Hour + 30*time.Minute) }, ErrOutsideAvailability},
		{"runs past closing", func(r *Request) { r.ScheduledAt = monday.Add(17*time.Hour + 30*time.Minute) }, ErrOutsideAvailability},
		{"off the grid", func(r *Request) { r.ScheduledAt = monday.Add(10*time.Hour + 30*time.Minute) }, ErrNotOnGrid},
		{"closed day", func(r *Request) { r.ScheduledAt = monday.AddDate(0, 0, 1).Add(10 * time.Hour) }, ErrOutsideAvailability},
		{"short duration", func(r *Request) { r.DurationMinutes = 5 }, ErrInvalidInput},
		{"unknown type", func(r *Request) { r.SessionType = "pair" }, ErrInvalidInput},
		{"unknown location", func(r *Request) { r.Location = "moon" }, ErrInvalidInput},
		{"missing practitioner", func(r *Request) { r.PractitionerID = 0 }, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := individual(10 * time.Hour)
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, f.bookings.created)
		})
	}
}

func TestExecute_OverrunAllowedByConfig(t *testing.T) {
	f := newFixture()
	f.uc.cfg.AllowOverrun = true
	req := individual(17 * time.Hour)
	req.DurationMinutes = 90

	_, err := f.uc.Execute(context.Background(), req)

	assert.NoError(t, err)
}

func TestExecute_ClientJoinsGroup(t *testing.T) {
	f := newFixture()
	f.bookings.records = []domain.BookingRecord{record(3, "2024-01-01T14:00:00Z", 60, 5, 3)}
	f.bookings.bookings[3] = &domain.Booking{ID: 3, MaxParticipants: 5, CurrentParticipants: 4}

	req := individual(14 * time.Hour)
	req.SessionType = domain.SessionGroup

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, resp.Joined)
	assert.Equal(t, int64(3), resp.Booking.ID)
	assert.Equal(t, [][2]int64{{3, 7}}, f.bookings.joined)
}

func TestExecute_GroupJoinFailures(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.BookingRecord
		joinErr error
		want    error
	}{
		{"full", []domain.BookingRecord{record(3, "2024-01-01T14:00:00Z", 60, 5, 5)}, nil, ErrGroupFull},
		{"filled concurrently", []domain.BookingRecord{record(3, "2024-01-01T14:00:00Z", 60, 5, 4)}, bookingRepo.ErrSlotNotAvailable, ErrGroupFull},
		{"already joined", []domain.BookingRecord{record(3, "2024-01-01T14:00:00Z", 60, 5, 4)}, bookingRepo.ErrAlreadyParticipant, ErrAlreadyJoined},
		{"no group", nil, nil, ErrGroupNotFound},
		{"individual session there", []domain.BookingRecord{record(3, "2024-01-01T14:00:00Z", 60, 1, 1)}, nil, ErrSlotNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.bookings.records = tt.records
			f.bookings.joinErr = tt.joinErr

			req := individual(14 * time.Hour)
			req.SessionType = domain.SessionGroup

			_, err := f.uc.Execute(context.Background(), req)

			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestExecute_GroupOwnerCannotTakeSecondSeat(t *testing.T) {
	f := newFixture()
	owned := record(3, "2024-01-01T14:00:00Z", 60, 5, 0)
	owned.ClientID = client.UserID
	f.bookings.records = []domain.BookingRecord{owned}

	req := individual(14 * time.Hour)
	req.SessionType = domain.SessionGroup

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Empty(t, f.bookings.joined)
}

func TestExecute_AdminCreatesGroupSession(t *testing.T) {
	f := newFixture()
	req := individual(14 * time.Hour)
	req.Actor = domain.Actor{UserID: 1000, Role: domain.RoleAdmin}
	req.SessionType = domain.SessionGroup
	req.MaxParticipants = 8

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.False(t, resp.Joined)
	assert.Equal(t, 8, f.bookings.created.MaxParticipants)
	assert.Equal(t, 0, f.bookings.created.CurrentParticipants)
}

func TestExecute_AdminGroupNeedsCapacity(t *testing.T) {
	f := newFixture()
	req := individual(14 * time.Hour)
	req.Actor = domain.Actor{UserID: 1000, Role: domain.RoleAdmin}
	req.SessionType = domain.SessionGroup
	req.MaxParticipants = 1

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
}
