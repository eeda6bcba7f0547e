package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// Config параметры проверки времени бронирования
type Config struct {
	Step                   time.Duration // сетка слотов для записи
	DefaultDurationMinutes int
	AllowOverrun           bool
	MaxAdvanceDays         int
	Location               *time.Location
}

// Request модель запроса на создание бронирования.
// Для клиента SessionType = group означает присоединение к существующему групповому занятию;
// администратор с SessionType = group создает новое занятие на MaxParticipants мест.
type Request struct {
	Actor           domain.Actor
	ClientID        int64 // Администратор может записать клиента; для клиента игнорируется
	PractitionerID  int64
	ScheduledAt     time.Time
	DurationMinutes int // 0 - длительность по умолчанию
	SessionType     domain.SessionType
	MaxParticipants int
	Location        domain.SessionLocation
	Notes           *string
}

// Response модель ответа с бронированием
type Response struct {
	Booking *domain.Booking
	Joined  bool // true - клиент присоединился к существующему групповому занятию
}
