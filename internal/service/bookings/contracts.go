package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	IsParticipant(ctx context.Context, bookingID, clientID int64) (bool, error)
	ListByClient(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]domain.BookingRecord, error)
	ListByPractitionerWithFilter(ctx context.Context, filter domain.PractitionerBookingsFilter) ([]domain.BookingRecord, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, reason *string) error
}

// CreditClient интерфейс клиента CreditService (льготная отмена)
type CreditClient interface {
	GraceCancellationUsedWithGracefulDegradation(ctx context.Context, clientID int64) bool
	UseGraceCancellation(ctx context.Context, clientID, bookingID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics метрики политики и пропущенных записей
type Metrics interface {
	IncPolicyDecision(state string)
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
