package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotNotAvailable возвращается, когда слот занят или в группе нет мест
	ErrSlotNotAvailable = errors.New("booking.repository: slot not available")

	// ErrAlreadyParticipant клиент уже записан на это групповое занятие
	ErrAlreadyParticipant = errors.New("booking.repository: client already joined the session")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")

	// ErrInvalidStatus возвращается при попытке установить недопустимый статус
	ErrInvalidStatus = errors.New("booking.repository: invalid booking status")

	// ErrCannotCancel возвращается, когда бронирование уже не в статусе scheduled
	ErrCannotCancel = errors.New("booking.repository: booking cannot be cancelled")

	// ErrCannotReschedule возвращается, когда бронирование уже не в статусе scheduled
	ErrCannotReschedule = errors.New("booking.repository: booking cannot be rescheduled")
)
