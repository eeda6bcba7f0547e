package reschedule_booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SessionScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-SessionScheduler/internal/usecase/reschedule_booking"
)

const (
	msgInvalidBookingID    = "некорректный ID бронирования"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidScheduledAt  = "некорректное время начала, ожидается RFC 3339"
	msgUnauthorized        = "пользователь не аутентифицирован"
	msgNotFound            = "бронирование не найдено"
	msgForbidden           = "доступ запрещен"
	msgCannotReschedule    = "бронирование не может быть перенесено"
	msgRescheduleBlocked   = "перенос недоступен: до занятия осталось слишком мало времени"
	msgInThePast           = "новое время уже прошло"
	msgSameTime            = "новое время совпадает с текущим"
	msgOutsideAvailability = "новое время вне расписания практика"
	msgNotOnGrid           = "новое время не совпадает с сеткой переноса"
	msgSlotNotAvailable    = "выбранный временной слот недоступен"
	msgInvalidInput        = "некорректные данные переноса"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	newStart, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/reschedule - Failed to parse scheduledAt: %v", err)
		handlers.RespondBadRequest(w, msgInvalidScheduledAt)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &rescheduleBooking.Request{
		Actor:          actor,
		BookingID:      bookingID,
		NewScheduledAt: newStart,
	})
	if err != nil {
		var violation *rescheduleBooking.PolicyViolationError
		switch {
		case errors.As(err, &violation):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Blocked by policy: booking_id=%d, user_id=%d, state=%s",
				bookingID, actor.UserID, violation.Decision.State)
			handlers.RespondPolicyViolation(w, msgRescheduleBlocked, models.FromDecision(bookingID, violation.Decision))

		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleBooking.ErrForbidden):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Access denied: booking_id=%d, user_id=%d",
				bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleBooking.ErrCannotReschedule):
			handlers.RespondBadRequest(w, msgCannotReschedule)

		case errors.Is(err, rescheduleBooking.ErrInThePast):
			handlers.RespondBadRequest(w, msgInThePast)

		case errors.Is(err, rescheduleBooking.ErrSameTime):
			handlers.RespondBadRequest(w, msgSameTime)

		case errors.Is(err, rescheduleBooking.ErrOutsideAvailability):
			handlers.RespondBadRequest(w, msgOutsideAvailability)

		case errors.Is(err, rescheduleBooking.ErrNotOnGrid):
			handlers.RespondBadRequest(w, msgNotOnGrid)

		case errors.Is(err, rescheduleBooking.ErrSlotNotAvailable):
			h.logger.Warn("PATCH /bookings/{id}/reschedule - Slot not available: booking_id=%d, new_start=%s",
				bookingID, req.ScheduledAt)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		default:
			h.logger.Error("PATCH /bookings/{id}/reschedule - Failed to reschedule booking: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/reschedule - Booking rescheduled successfully: booking_id=%d, user_id=%d, new_start=%s",
		bookingID, actor.UserID, req.ScheduledAt)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
