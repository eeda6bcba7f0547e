package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-SessionScheduler/pkg/psqlbuilder"
)

const (
	bookingsTable     = "bookings"
	participantsTable = "session_participants"

	codeUniqueViolation = "23505"
)

// bookingColumns порядок колонок совпадает с scanRecord
var bookingColumns = []string{
	"id",
	"client_id",
	"practitioner_id",
	"scheduled_at",
	"duration_minutes",
	"max_participants",
	"current_participants",
	"location",
	"status",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями занятий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция (через context.Value), использует её:
// use case создания выполняет проверку конфликтов и вставку в одной SERIALIZABLE транзакции.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(bookingsTable).
		Columns(
			"client_id",
			"practitioner_id",
			"scheduled_at",
			"duration_minutes",
			"max_participants",
			"current_participants",
			"location",
			"status",
			"notes",
		).
		Values(
			booking.ClientID,
			booking.PractitionerID,
			booking.ScheduledAt,
			booking.DurationMinutes,
			booking.MaxParticipants,
			booking.CurrentParticipants,
			booking.Location,
			booking.Status,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID.
// Битая запись (нечитаемое scheduled_at) возвращается как ErrScanRow.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(bookingsTable).
		Where(squirrel.Eq{"id": id})

	// Перенос и отмена читают бронь внутри транзакции - блокируем строку
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	record, err := scanRecord(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	booking, err := record.ToBooking()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - %w", ErrScanRow, err)
	}

	return booking, nil
}

// ListByClient получает записи бронирований клиента, включая групповые занятия,
// к которым клиент присоединился. Опционально фильтрует по статусу.
func (r *Repository) ListByClient(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]domain.BookingRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(bookingsTable).
		Where(squirrel.Or{
			squirrel.Eq{"client_id": clientID},
			squirrel.Expr("id IN (SELECT booking_id FROM "+participantsTable+" WHERE client_id = ?)", clientID),
		}).
		OrderBy("scheduled_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClient - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByPractitionerWithFilter получает бронирования практика с фильтрацией по периоду и статусу
func (r *Repository) ListByPractitionerWithFilter(ctx context.Context, filter domain.PractitionerBookingsFilter) ([]domain.BookingRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(bookingsTable).
		Where(squirrel.Eq{"practitioner_id": filter.PractitionerID})

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"scheduled_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"scheduled_at": *filter.To})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeCancelled {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": domain.StatusCancelled})
	}

	query, args, err := selectBuilder.OrderBy("scheduled_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByPractitionerWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByPractitionerWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListActiveForDay получает неотмененные бронирования практика, пересекающиеся с [from, to).
// Занятие, начавшееся накануне и заходящее за полночь, тоже попадает в выборку.
// Внутри транзакции строки блокируются (FOR UPDATE) для повторной проверки конфликтов перед записью.
func (r *Repository) ListActiveForDay(ctx context.Context, practitionerID int64, from, to time.Time) ([]domain.BookingRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(bookingsTable).
		Where(squirrel.Eq{"practitioner_id": practitionerID}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Where(squirrel.Lt{"scheduled_at": to}).
		Where(squirrel.Expr("scheduled_at + make_interval(mins => duration_minutes) > ?", from)).
		OrderBy("scheduled_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveForDay - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveForDay - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// JoinGroup атомарно занимает место в групповом занятии и записывает участника.
// Проверка вместимости и инкремент выполняются одним UPDATE, без чтения перед записью.
// Должен вызываться внутри транзакции, чтобы обе операции применились вместе.
func (r *Repository) JoinGroup(ctx context.Context, bookingID, clientID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(bookingsTable).
		Set("current_participants", squirrel.Expr("current_participants + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": bookingID}).
		Where(squirrel.Eq{"status": domain.StatusScheduled}).
		Where(squirrel.Expr("max_participants > 1")).
		Where(squirrel.Expr("current_participants < max_participants")).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: JoinGroup - build update query: %v", ErrBuildQuery, err)
	}

	if err := expectOneRow(ctx, executor, query, args, "JoinGroup", ErrSlotNotAvailable); err != nil {
		return err
	}

	query, args, err = psqlbuilder.Insert(participantsTable).
		Columns("booking_id", "client_id").
		Values(bookingID, clientID).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: JoinGroup - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation {
			return ErrAlreadyParticipant
		}
		return fmt.Errorf("%w: JoinGroup - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// IsParticipant проверяет, записан ли клиент на групповое занятие
func (r *Repository) IsParticipant(ctx context.Context, bookingID, clientID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From(participantsTable).
		Where(squirrel.Eq{"booking_id": bookingID, "client_id": clientID}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: IsParticipant - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: IsParticipant - scan: %v", ErrScanRow, err)
	}

	return true, nil
}

// UpdateScheduledAt переносит бронирование на новое время
func (r *Repository) UpdateScheduledAt(ctx context.Context, id int64, scheduledAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(bookingsTable).
		Set("scheduled_at", scheduledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusScheduled}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateScheduledAt - build update query: %v", ErrBuildQuery, err)
	}

	return expectOneRow(ctx, executor, query, args, "UpdateScheduledAt", ErrCannotReschedule)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(bookingsTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return expectOneRow(ctx, executor, query, args, "UpdateStatus", ErrBookingNotFound)
}

// Cancel отменяет бронирование с указанием причины. Бронь не удаляется физически.
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(bookingsTable).
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.StatusScheduled}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return expectOneRow(ctx, executor, query, args, "Cancel", ErrCannotCancel)
}

// expectOneRow выполняет запрос и возвращает notAffected, если ни одна строка не изменилась
func expectOneRow(ctx context.Context, executor DBExecutor, query string, args []interface{}, op string, notAffected error) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return notAffected
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord сканирует строку в сырую запись; scheduled_at читается как текст
func scanRecord(row rowScanner) (domain.BookingRecord, error) {
	var rec domain.BookingRecord
	var scheduledAt, location sql.NullString
	var cancelledAt, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&rec.ID,
		&rec.ClientID,
		&rec.PractitionerID,
		&scheduledAt,
		&rec.DurationMinutes,
		&rec.MaxParticipants,
		&rec.CurrentParticipants,
		&location,
		&rec.Status,
		&rec.Notes,
		&rec.CancellationReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return rec, err
	}

	rec.ScheduledAt = scheduledAt.String
	rec.Location = location.String
	if cancelledAt.Valid {
		rec.CancelledAt = &cancelledAt.Time
	}
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time

	return rec, nil
}

// scanRecords сканирует результаты запроса в слайс записей
func scanRecords(rows *sql.Rows) ([]domain.BookingRecord, error) {
	records := make([]domain.BookingRecord, 0)

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanRecords - scan row: %v", ErrScanRow, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanRecords - rows error: %v", ErrScanRow, err)
	}

	return records, nil
}
