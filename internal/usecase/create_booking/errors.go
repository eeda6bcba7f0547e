package create_booking

import "errors"

var (
	// ErrForbidden возвращается, когда роль не может создавать бронирования
	ErrForbidden = errors.New("create_booking: action not allowed for this role")

	// ErrInThePast возвращается, когда время начала не позже текущего момента
	ErrInThePast = errors.New("create_booking: session start is in the past")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение MaxAdvanceDays
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrOutsideAvailability возвращается, когда занятие не помещается в окно доступности практика
	ErrOutsideAvailability = errors.New("create_booking: time is outside practitioner availability")

	// ErrNotOnGrid возвращается, когда время начала не совпадает с сеткой слотов
	ErrNotOnGrid = errors.New("create_booking: time is not on the slot grid")

	// ErrSlotNotAvailable возвращается, когда слот занят (в том числе конкурентной записью)
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrGroupFull возвращается, когда в групповом занятии не осталось мест
	ErrGroupFull = errors.New("create_booking: group session is full")

	// ErrGroupNotFound возвращается, когда на это время нет группового занятия для присоединения
	ErrGroupNotFound = errors.New("create_booking: no group session at this time")

	// ErrAlreadyJoined возвращается, когда клиент уже записан на групповое занятие
	ErrAlreadyJoined = errors.New("create_booking: client already joined this session")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
