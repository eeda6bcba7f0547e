package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// Config параметры политики переноса
type Config struct {
	Step         time.Duration // сетка переноса
	Cutoff       time.Duration
	AllowOverrun bool
	Location     *time.Location
}

// Request модель запроса на перенос бронирования
type Request struct {
	Actor          domain.Actor
	BookingID      int64
	NewScheduledAt time.Time
}

// Response модель ответа после переноса
type Response struct {
	Booking  *domain.Booking
	Decision domain.RescheduleDecision
}
