package availability

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-SessionScheduler/pkg/psqlbuilder"
)

const windowsTable = "availability_windows"

type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий еженедельных окон доступности практиков
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория окон доступности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListByPractitioner получает все окна практика, отсортированные по дню недели и времени начала
func (r *Repository) ListByPractitioner(ctx context.Context, practitionerID int64) ([]*domain.AvailabilityWindow, error) {
	return r.list(ctx, "ListByPractitioner", squirrel.Eq{"practitioner_id": practitionerID})
}

// ListByPractitionerAndDay получает окна практика на конкретный день недели
func (r *Repository) ListByPractitionerAndDay(ctx context.Context, practitionerID int64, dayOfWeek int) ([]*domain.AvailabilityWindow, error) {
	return r.list(ctx, "ListByPractitionerAndDay", squirrel.Eq{"practitioner_id": practitionerID, "day_of_week": dayOfWeek})
}

func (r *Repository) list(ctx context.Context, op string, where squirrel.Eq) ([]*domain.AvailabilityWindow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"practitioner_id",
		"day_of_week",
		"start_time",
		"end_time",
		"created_at",
		"updated_at",
	).
		From(windowsTable).
		Where(where).
		OrderBy("day_of_week ASC", "start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	windows := make([]*domain.AvailabilityWindow, 0)
	for rows.Next() {
		var w domain.AvailabilityWindow
		var createdAt, updatedAt sql.NullTime

		if err := rows.Scan(
			&w.ID,
			&w.PractitionerID,
			&w.DayOfWeek,
			&w.StartTime,
			&w.EndTime,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: %s - scan window: %v", ErrScanRow, op, err)
		}

		w.CreatedAt = createdAt.Time
		w.UpdatedAt = updatedAt.Time
		windows = append(windows, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return windows, nil
}

// ReplaceForPractitioner заменяет все окна практика переданным набором.
// Удаление и вставка должны выполняться в одной транзакции (передается через контекст).
func (r *Repository) ReplaceForPractitioner(ctx context.Context, practitionerID int64, windows []*domain.AvailabilityWindow) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(windowsTable).
		Where(squirrel.Eq{"practitioner_id": practitionerID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ReplaceForPractitioner - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceForPractitioner - execute delete: %v", ErrExecQuery, err)
	}

	if len(windows) == 0 {
		return nil
	}

	insert := psqlbuilder.Insert(windowsTable).
		Columns("practitioner_id", "day_of_week", "start_time", "end_time")
	for _, w := range windows {
		insert = insert.Values(practitionerID, w.DayOfWeek, w.StartTime, w.EndTime)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceForPractitioner - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceForPractitioner - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
