package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SessionScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings/models"
)

const (
	msgInvalidBookingID  = "некорректный ID бронирования"
	msgInvalidWithPolicy = "параметр withPolicy должен быть true или false"
	msgNotFound          = "бронирование не найдено"
	msgUnauthorized      = "пользователь не аутентифицирован"
	msgForbidden         = "доступ запрещен"
)

// BookingDetailsResponse бронирование и, по запросу, текущее решение политики переноса
type BookingDetailsResponse struct {
	models.BookingResponse
	Policy *models.PolicyResponse `json:"policy,omitempty"`
}

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}?withPolicy=true
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	withPolicy := false
	if raw := r.URL.Query().Get("withPolicy"); raw != "" {
		withPolicy, err = strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /bookings/{id} - Invalid withPolicy: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidWithPolicy)
			return
		}
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/{id} - Missing actor")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	booking, err := h.service.GetByID(r.Context(), bookingID, actor)
	if err != nil {
		h.respondError(w, err, bookingID, actor)
		return
	}

	resp := BookingDetailsResponse{BookingResponse: *booking}

	// Для завершенных и отмененных занятий политика не имеет смысла
	if withPolicy && booking.Status == string(domain.StatusScheduled) {
		policy, err := h.service.ReschedulePolicy(r.Context(), bookingID, actor)
		if err != nil {
			h.respondError(w, err, bookingID, actor)
			return
		}
		resp.Policy = policy
	}

	h.logger.Info("GET /bookings/{id} - Booking retrieved: booking_id=%d, user_id=%d, with_policy=%t",
		bookingID, actor.UserID, resp.Policy != nil)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, bookingID int64, actor domain.Actor) {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		h.logger.Warn("GET /bookings/{id} - Booking not found: booking_id=%d", bookingID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, bookings.ErrAccessDenied):
		h.logger.Warn("GET /bookings/{id} - Access denied: booking_id=%d, user_id=%d", bookingID, actor.UserID)
		handlers.RespondForbidden(w, msgForbidden)

	default:
		h.logger.Error("GET /bookings/{id} - Failed to get booking: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondInternalError(w)
	}
}
