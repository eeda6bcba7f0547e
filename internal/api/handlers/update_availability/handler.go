package update_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SessionScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/availability"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/availability/models"
)

const (
	msgInvalidPractitionerID = "некорректный ID практика"
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgUnauthorized          = "пользователь не аутентифицирован"
	msgForbidden             = "доступ запрещен"
	msgInvalidData           = "некорректные данные расписания"
	msgOverlappingWindows    = "окна расписания пересекаются"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/practitioners/{practitionerId}/availability
// Заменяет недельное расписание целиком
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := strconv.ParseInt(mux.Vars(r)["practitionerId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /practitioners/{id}/availability - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.ReplaceWeeklyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /practitioners/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.Actor = actor
	req.PractitionerID = practitionerID

	result, err := h.service.ReplaceWeekly(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrAccessDenied):
			h.logger.Warn("PUT /practitioners/{id}/availability - Access denied: practitioner_id=%d, user_id=%d",
				practitionerID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, availability.ErrOverlappingWindows):
			handlers.RespondBadRequest(w, msgOverlappingWindows)

		case errors.Is(err, availability.ErrInvalidInput):
			h.logger.Warn("PUT /practitioners/{id}/availability - Invalid data: %v", err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /practitioners/{id}/availability - Failed to replace availability: practitioner_id=%d, error=%v",
				practitionerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /practitioners/{id}/availability - Availability updated successfully: practitioner_id=%d, windows=%d",
		practitionerID, len(result.Windows))
	handlers.RespondJSON(w, http.StatusOK, result)
}
