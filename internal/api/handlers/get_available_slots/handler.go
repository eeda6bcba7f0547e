package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-SessionScheduler/internal/usecase/get_available_slots"
)

const (
	msgInvalidPractitionerID = "некорректный ID практика"
	msgMissingDate           = "дата обязательна"
	msgInvalidDate           = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidParams         = "некорректные параметры запроса"
	msgDateInPast            = "дата в прошлом"
	msgDateTooFar            = "дата слишком далеко в будущем"
	msgBookingNotFound       = "бронирование не найдено"
	msgBookingMismatch       = "бронирование относится к другому практику"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/practitioners/{practitionerId}/available-slots
// Query params: date (required, YYYY-MM-DD), duration, type (individual|group),
// flow (booking|reschedule), bookingId (для flow=reschedule)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practitionerID, err := strconv.ParseInt(mux.Vars(r)["practitionerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/available-slots - Invalid practitioner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPractitionerID)
		return
	}

	useCaseReq, err := ToUseCaseRequest(practitionerID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /practitioners/{id}/available-slots - Invalid parameters: %v", err)
		switch {
		case errors.Is(err, errMissingDate):
			handlers.RespondBadRequest(w, msgMissingDate)
		case errors.Is(err, errInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidDate)
		default:
			handlers.RespondBadRequest(w, msgInvalidParams)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /practitioners/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrBookingNotFound):
			h.logger.Warn("GET /practitioners/{id}/available-slots - Booking not found: booking_id=%d", useCaseReq.BookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, getAvailableSlots.ErrBookingMismatch):
			handlers.RespondBadRequest(w, msgBookingMismatch)

		default:
			h.logger.Error("GET /practitioners/{id}/available-slots - Failed to get slots: practitioner_id=%d, error=%v",
				practitionerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /practitioners/{id}/available-slots - Slots retrieved successfully: practitioner_id=%d, flow=%s, slots_count=%d",
		practitionerID, result.Flow, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
