package booking

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/pkg/dbmetrics"
)

func newMock(t *testing.T) (*Repository, *dbmetrics.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := dbmetrics.Wrap(sqlDB, nil)
	return NewRepository(db), db, mock
}

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows(bookingColumns)
}

func addRow(rows *sqlmock.Rows, id int64, scheduledAt string, status string) *sqlmock.Rows {
	now := time.Date(2024, time.January, 1, 7, 0, 0, 0, time.UTC)
	return rows.AddRow(id, 10, 1, scheduledAt, 60, 1, 1, "online", status, nil, nil, nil, now, now)
}

func TestRepository_Create(t *testing.T) {
	repo, _, mock := newMock(t)
	scheduledAt := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	created := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings (client_id,practitioner_id,scheduled_at")).
		WithArgs(int64(10), int64(1), scheduledAt, 60, 1, 1, domain.LocationOnline, domain.StatusScheduled, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, created, created))

	b, err := repo.Create(context.Background(), &domain.Booking{
		ClientID:            10,
		PractitionerID:      1,
		ScheduledAt:         scheduledAt,
		DurationMinutes:     60,
		MaxParticipants:     1,
		CurrentParticipants: 1,
		Location:            domain.LocationOnline,
		Status:              domain.StatusScheduled,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), b.ID)
	assert.Equal(t, created, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, _, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
			WithArgs(int64(5)).
			WillReturnRows(addRow(bookingRows(), 5, "2024-01-01T10:00:00Z", "scheduled"))

		b, err := repo.GetByID(context.Background(), 5)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC), b.ScheduledAt)
		assert.Equal(t, domain.LocationOnline, b.Location)
		assert.Nil(t, b.CancelledAt)
	})

	t.Run("not found", func(t *testing.T) {
		repo, _, mock := newMock(t)
		mock.ExpectQuery("FROM bookings").WillReturnRows(bookingRows())

		_, err := repo.GetByID(context.Background(), 5)

		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("malformed record", func(t *testing.T) {
		repo, _, mock := newMock(t)
		mock.ExpectQuery("FROM bookings").WillReturnRows(addRow(bookingRows(), 5, "not-a-date", "scheduled"))

		_, err := repo.GetByID(context.Background(), 5)

		assert.ErrorIs(t, err, ErrScanRow)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})
}

func TestRepository_ListActiveForDay_LocksInsideTransaction(t *testing.T) {
	repo, db, mock := newMock(t)
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("scheduled_at + make_interval(mins => duration_minutes) > $4 ORDER BY scheduled_at ASC FOR UPDATE")).
		WithArgs(int64(1), domain.StatusCancelled, to, from).
		WillReturnRows(addRow(addRow(bookingRows(), 1, "2024-01-01T10:00:00Z", "scheduled"), 2, "garbage", "scheduled"))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	records, err := repo.ListActiveForDay(dbmetrics.WithTx(ctx, tx), 1, from, to)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	// битая запись возвращается как есть, разбор - на стороне вызывающего
	require.Len(t, records, 2)
	assert.Equal(t, "garbage", records[1].ScheduledAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListActiveForDay_NoLockOutsideTransaction(t *testing.T) {
	repo, _, mock := newMock(t)
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER BY scheduled_at ASC$`).WillReturnRows(bookingRows())

	records, err := repo.ListActiveForDay(context.Background(), 1, from, from.AddDate(0, 0, 1))

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByClient_IncludesJoinedSessions(t *testing.T) {
	repo, _, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE (client_id = $1 OR id IN (SELECT booking_id FROM session_participants WHERE client_id = $2))")).
		WithArgs(int64(10), int64(10)).
		WillReturnRows(addRow(bookingRows(), 1, "2024-01-01T10:00:00Z", "scheduled"))

	records, err := repo.ListByClient(context.Background(), 10, nil)

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByPractitionerWithFilter(t *testing.T) {
	repo, _, mock := newMock(t)
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE practitioner_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3 AND status <> $4")).
		WithArgs(int64(1), from, to, domain.StatusCancelled).
		WillReturnRows(bookingRows())

	_, err := repo.ListByPractitionerWithFilter(context.Background(), domain.PractitionerBookingsFilter{
		PractitionerID: 1,
		From:           &from,
		To:             &to,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_JoinGroup(t *testing.T) {
	t.Run("joined", func(t *testing.T) {
		repo, _, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("SET current_participants = current_participants + 1")).
			WithArgs(int64(7), domain.StatusScheduled).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session_participants (booking_id,client_id) VALUES ($1,$2)")).
			WithArgs(int64(7), int64(10)).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.JoinGroup(context.Background(), 7, 10))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("full", func(t *testing.T) {
		repo, _, mock := newMock(t)
		mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.JoinGroup(context.Background(), 7, 10)

		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already joined", func(t *testing.T) {
		repo, _, mock := newMock(t)
		mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO session_participants").WillReturnError(&pq.Error{Code: "23505"})

		err := repo.JoinGroup(context.Background(), 7, 10)

		assert.ErrorIs(t, err, ErrAlreadyParticipant)
	})
}

func TestRepository_IsParticipant(t *testing.T) {
	repo, _, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM session_participants WHERE booking_id = $1 AND client_id = $2")).
		WithArgs(int64(7), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("FROM session_participants").WillReturnError(sql.ErrNoRows)

	ok, err := repo.IsParticipant(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsParticipant(context.Background(), 7, 11)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_Cancel(t *testing.T) {
	repo, _, mock := newMock(t)
	reason := "sick"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, cancellation_reason = $2, cancelled_at = NOW(), updated_at = NOW() WHERE id = $3 AND status = $4")).
		WithArgs(domain.StatusCancelled, &reason, int64(5), domain.StatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Cancel(context.Background(), 5, &reason))
	assert.ErrorIs(t, repo.Cancel(context.Background(), 5, &reason), ErrCannotCancel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateScheduledAt(t *testing.T) {
	repo, _, mock := newMock(t)
	newTime := time.Date(2024, time.January, 1, 15, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE bookings SET scheduled_at").
		WithArgs(newTime, int64(5), domain.StatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateScheduledAt(context.Background(), 5, newTime)

	assert.ErrorIs(t, err, ErrCannotReschedule)
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, _, mock := newMock(t)

	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), 5, "finished"), ErrInvalidStatus)

	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(domain.StatusCompleted, int64(5)).
		WillReturnError(&pq.Error{Code: "40001"})

	err := repo.UpdateStatus(context.Background(), 5, domain.StatusCompleted)

	assert.ErrorIs(t, err, ErrExecQuery)
	var pqErr *pq.Error
	assert.True(t, errors.As(err, &pqErr), "driver error must stay reachable for transaction classification")
}
