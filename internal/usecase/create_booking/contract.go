package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListActiveForDay(ctx context.Context, practitionerID int64, from, to time.Time) ([]domain.BookingRecord, error)
	JoinGroup(ctx context.Context, bookingID, clientID int64) error
}

// AvailabilityRepository интерфейс источника окон доступности
type AvailabilityRepository interface {
	ListByPractitioner(ctx context.Context, practitionerID int64) ([]*domain.AvailabilityWindow, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics метрики конфликтов записи
type Metrics interface {
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
