package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListActiveForDay(ctx context.Context, practitionerID int64, from, to time.Time) ([]domain.BookingRecord, error)
	UpdateScheduledAt(ctx context.Context, id int64, scheduledAt time.Time) error
}

// AvailabilityRepository интерфейс источника окон доступности
type AvailabilityRepository interface {
	ListByPractitioner(ctx context.Context, practitionerID int64) ([]*domain.AvailabilityWindow, error)
}

// GraceClient источник флага льготной отмены (CreditService).
// Недоступность сервиса трактуется как "льгота не использована".
type GraceClient interface {
	GraceCancellationUsedWithGracefulDegradation(ctx context.Context, clientID int64) bool
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics метрики политики переноса и конфликтов
type Metrics interface {
	IncPolicyDecision(state string)
	IncBookingConflict(operation string)
	AddSkippedRecords(n int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
