package reschedule_booking

import (
	"errors"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrForbidden возвращается, когда пользователь не может переносить это бронирование
	ErrForbidden = errors.New("reschedule_booking: access denied")

	// ErrCannotReschedule возвращается, когда бронирование не в статусе scheduled
	ErrCannotReschedule = errors.New("reschedule_booking: booking cannot be rescheduled in current status")

	// ErrRescheduleNotAllowed возвращается, когда до занятия меньше окна отсечки
	ErrRescheduleNotAllowed = errors.New("reschedule_booking: reschedule not allowed by policy")

	// ErrInThePast возвращается, когда новое время не позже текущего момента
	ErrInThePast = errors.New("reschedule_booking: new start is in the past")

	// ErrSameTime возвращается, когда новое время совпадает с текущим
	ErrSameTime = errors.New("reschedule_booking: new start equals current start")

	// ErrOutsideAvailability возвращается, когда новое время вне окна доступности
	ErrOutsideAvailability = errors.New("reschedule_booking: time is outside practitioner availability")

	// ErrNotOnGrid возвращается, когда новое время не совпадает с сеткой переноса
	ErrNotOnGrid = errors.New("reschedule_booking: time is not on the reschedule grid")

	// ErrSlotNotAvailable возвращается, когда новое время занято
	ErrSlotNotAvailable = errors.New("reschedule_booking: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)

// PolicyViolationError отказ политики переноса вместе с решением,
// чтобы вызывающий мог показать причину и состояние льготы
type PolicyViolationError struct {
	Decision domain.RescheduleDecision
}

func (e *PolicyViolationError) Error() string {
	return ErrRescheduleNotAllowed.Error() + ": " + e.Decision.Reason
}

func (e *PolicyViolationError) Unwrap() error {
	return ErrRescheduleNotAllowed
}
