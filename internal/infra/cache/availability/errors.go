package availability

import "errors"

var (
	// ErrCache ошибка обращения к redis
	ErrCache = errors.New("availability.cache: redis error")

	// ErrDecode в кэше лежит значение неизвестного формата
	ErrDecode = errors.New("availability.cache: failed to decode value")
)
