package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	// ListActiveForDay возвращает сырые записи: битые строки разбираются и отбрасываются здесь
	ListActiveForDay(ctx context.Context, practitionerID int64, from, to time.Time) ([]domain.BookingRecord, error)
}

// AvailabilityRepository интерфейс источника окон доступности (через кэш)
type AvailabilityRepository interface {
	ListByPractitioner(ctx context.Context, practitionerID int64) ([]*domain.AvailabilityWindow, error)
}

// Metrics метрики генерации слотов
type Metrics interface {
	ObserveSlots(flow string, generated int)
	IncSlotUnavailable(reason string)
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
