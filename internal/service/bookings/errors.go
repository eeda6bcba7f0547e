package bookings

import (
	"errors"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrCannotCancel возвращается, когда бронирование не может быть отменено
	ErrCannotCancel = errors.New("booking cannot be cancelled")

	// ErrCancelNotAllowed возвращается, когда отмена запрещена окном отсечки
	ErrCancelNotAllowed = errors.New("cancellation not allowed by policy")

	// ErrInvalidTransition возвращается при недопустимой смене статуса
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

// PolicyViolationError отказ в отмене вместе с решением политики
type PolicyViolationError struct {
	Decision domain.RescheduleDecision
}

func (e *PolicyViolationError) Error() string {
	return ErrCancelNotAllowed.Error() + ": " + e.Decision.Reason
}

func (e *PolicyViolationError) Unwrap() error {
	return ErrCancelNotAllowed
}
