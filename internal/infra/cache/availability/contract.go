package availability

import (
	"context"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// WindowRepository источник окон доступности (storage/availability)
type WindowRepository interface {
	ListByPractitioner(ctx context.Context, practitionerID int64) ([]*domain.AvailabilityWindow, error)
}

// Metrics счетчик попаданий в кэш
type Metrics interface {
	IncAvailabilityCache(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
