package creditservice

import "time"

// GraceStatus состояние льготной отмены клиента в CreditService
type GraceStatus struct {
	ClientID  int64      `json:"client_id"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	BookingID *int64     `json:"booking_id,omitempty"`
}

// UseGraceRequest запрос на списание льготной отмены
type UseGraceRequest struct {
	BookingID int64 `json:"booking_id"`
}

// ErrorResponse модель ошибки от CreditService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
