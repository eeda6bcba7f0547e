package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

// Config параметры генерации слотов
type Config struct {
	BookingStep            time.Duration // шаг сетки для новых бронирований
	RescheduleStep         time.Duration // шаг сетки при переносе
	DefaultDurationMinutes int
	AllowOverrun           bool
	MaxAdvanceDays         int // 0 - без ограничений
	Location               *time.Location
}

// Request модель запроса на получение слотов
type Request struct {
	PractitionerID  int64
	Date            time.Time          // Дата (время суток игнорируется)
	DurationMinutes int                // 0 - длительность по умолчанию
	SessionType     domain.SessionType // group - поиск группового занятия для присоединения
	Flow            domain.SlotFlow
	BookingID       int64 // Переносимое бронирование (только для Flow = reschedule)
}

// Response модель ответа со списком слотов
type Response struct {
	Date            time.Time
	PractitionerID  int64
	Flow            domain.SlotFlow
	DurationMinutes int
	Slots           []domain.CandidateSlot
}
