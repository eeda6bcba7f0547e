package get_available_slots

import "errors"

var (
	// ErrBookingNotFound возвращается, когда переносимое бронирование не найдено
	ErrBookingNotFound = errors.New("get_available_slots: booking not found")

	// ErrBookingMismatch возвращается, когда переносимое бронирование относится к другому практику
	ErrBookingMismatch = errors.New("get_available_slots: booking belongs to another practitioner")

	// ErrInvalidDate возвращается, когда дата в прошлом
	ErrInvalidDate = errors.New("get_available_slots: invalid date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение MaxAdvanceDays
	ErrDateTooFarInFuture = errors.New("get_available_slots: date is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
