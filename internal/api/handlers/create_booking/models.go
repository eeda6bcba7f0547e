package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-SessionScheduler/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ClientID        int64   `json:"clientId,omitempty"` // только для администратора
	PractitionerID  int64   `json:"practitionerId"`
	ScheduledAt     string  `json:"scheduledAt"` // RFC 3339
	DurationMinutes int     `json:"durationMinutes,omitempty"`
	SessionType     string  `json:"sessionType,omitempty"` // individual | group
	MaxParticipants int     `json:"maxParticipants,omitempty"`
	Location        string  `json:"location"` // online | in_person
	Notes           *string `json:"notes,omitempty"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	models.BookingResponse
	Joined bool `json:"joined"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(actor domain.Actor) (*createBooking.Request, error) {
	scheduledAt, err := time.Parse(time.RFC3339, r.ScheduledAt)
	if err != nil {
		return nil, err
	}

	sessionType := domain.SessionIndividual
	if r.SessionType != "" {
		sessionType = domain.SessionType(r.SessionType)
	}

	return &createBooking.Request{
		Actor:           actor,
		ClientID:        r.ClientID,
		PractitionerID:  r.PractitionerID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: r.DurationMinutes,
		SessionType:     sessionType,
		MaxParticipants: r.MaxParticipants,
		Location:        domain.SessionLocation(r.Location),
		Notes:           r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		BookingResponse: *models.FromDomainBooking(resp.Booking),
		Joined:          resp.Joined,
	}
}
