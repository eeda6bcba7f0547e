package creditservice

import "errors"

var (
	// ErrGraceAlreadyUsed возвращается, когда клиент уже использовал льготную отмену
	ErrGraceAlreadyUsed = errors.New("grace cancellation already used")

	// ErrClientNotFound возвращается, когда у клиента нет записей о кредитах
	ErrClientNotFound = errors.New("creditservice client: client not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("creditservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("creditservice client: invalid response")
)
