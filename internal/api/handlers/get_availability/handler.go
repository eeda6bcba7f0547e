package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/availability"
)

const (
	msgInvalidPractitionerID = "некорректный ID практика"
	msgInvalidDay            = "некорректный день недели, ожидается 0-6"
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

// Handle GET /api/v1/practitioners/{practitionerId}/availability
// Query params: day (опционально, 0 - воскресенье)
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := strconv.ParseInt(mux.Vars(r)["practitionerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/availability - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}

	var day *int
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			h.logger.Warn("GET /practitioners/{id}/availability - Invalid day: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDay)
			return
		}
		day = &d
	}

	result, err := h.service.GetWeekly(r.Context(), practitionerID, day)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidInput) {
			handlers.RespondBadRequest(w, msgInvalidDay)
			return
		}

		h.logger.Error("GET /practitioners/{id}/availability - Failed to get availability: practitioner_id=%d, error=%v",
			practitionerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /practitioners/{id}/availability - Availability retrieved successfully: practitioner_id=%d, windows=%d",
		practitionerID, len(result.Windows))
	handlers.RespondJSON(w, http.StatusOK, result)
}
