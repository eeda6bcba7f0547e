package get_practitioner_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SessionScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings"
)

const (
	msgInvalidPractitionerID = "некорректный ID практика"
	msgUnauthorized          = "пользователь не аутентифицирован"
	msgInvalidParams         = "некорректные параметры запроса"
	msgForbidden             = "доступ запрещен"
)

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

// Handle GET /api/v1/practitioners/{practitionerId}/bookings
// Query params: from, to, status, includeCancelled (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := strconv.ParseInt(mux.Vars(r)["practitionerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/bookings - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	serviceReq, err := ToServiceRequest(practitionerID, actor, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Сервис сам проверит, что это практик или администратор
	result, err := h.service.GetPractitionerBookings(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /practitioners/{id}/bookings - Access denied: practitioner_id=%d, user_id=%d",
				practitionerID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /practitioners/{id}/bookings - Failed to get bookings: practitioner_id=%d, error=%v",
				practitionerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /practitioners/{id}/bookings - Bookings retrieved successfully: practitioner_id=%d, count=%d",
		practitionerID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
