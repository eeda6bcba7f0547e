package availability

import (
	"context"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// WindowRepository интерфейс репозитория окон доступности
type WindowRepository interface {
	ListByPractitionerAndDay(ctx context.Context, practitionerID int64, dayOfWeek int) ([]*domain.AvailabilityWindow, error)
	ReplaceForPractitioner(ctx context.Context, practitionerID int64, windows []*domain.AvailabilityWindow) error
}

// WindowReader чтение недельного расписания (через кэш, если он включен)
type WindowReader interface {
	ListByPractitioner(ctx context.Context, practitionerID int64) ([]*domain.AvailabilityWindow, error)
}

// CacheInvalidator сброс кэша расписания после изменения
type CacheInvalidator interface {
	Invalidate(ctx context.Context, practitionerID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
