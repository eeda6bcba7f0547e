package reschedule_booking

import (
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-SessionScheduler/internal/usecase/reschedule_booking"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	ScheduledAt string `json:"scheduledAt"` // RFC 3339
}

// RescheduleBookingResponse HTTP response model.
// Notice заполнен, когда администратор переносит занятие внутри окна отсечки.
type RescheduleBookingResponse struct {
	Booking *models.BookingResponse `json:"booking"`
	Policy  *models.PolicyResponse  `json:"policy"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleBookingResponse {
	return &RescheduleBookingResponse{
		Booking: models.FromDomainBooking(resp.Booking),
		Policy:  models.FromDecision(resp.Booking.ID, resp.Decision),
	}
}
