package availability

import "errors"

var (
	// ErrAccessDenied возвращается, когда пользователь не может менять расписание
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrOverlappingWindows возвращается, когда окна одного дня пересекаются
	ErrOverlappingWindows = errors.New("availability windows overlap")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
