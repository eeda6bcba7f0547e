package get_client_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SessionScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings/models"
	"github.com/m04kA/SMC-SessionScheduler/pkg/ptr"
)

const (
	msgInvalidClientID = "некорректный ID клиента"
	msgUnauthorized    = "пользователь не аутентифицирован"
	msgInvalidStatus   = "некорректный статус"
	msgForbidden       = "доступ запрещен"
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

// Handle GET /api/v1/clients/{clientId}/bookings
// Query params: status (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.ParseInt(mux.Vars(r)["clientId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /clients/{clientId}/bookings - Invalid client ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClientID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var status *string
	if v := r.URL.Query().Get("status"); v != "" {
		status = ptr.Ptr(v)
	}

	result, err := h.service.GetClientBookings(r.Context(), &models.GetClientBookingsRequest{
		Actor:    actor,
		ClientID: clientID,
		Status:   status,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /clients/{clientId}/bookings - Access denied: client_id=%d, user_id=%d",
				clientID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /clients/{clientId}/bookings - Failed to get bookings: client_id=%d, error=%v",
				clientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /clients/{clientId}/bookings - Bookings retrieved successfully: client_id=%d, count=%d",
		clientID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
