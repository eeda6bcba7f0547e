package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SessionScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-SessionScheduler/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-SessionScheduler/internal/usecase/create_booking"
)

const (
	msgUnauthorized        = "пользователь не аутентифицирован"
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidScheduledAt  = "некорректное время начала, ожидается RFC 3339"
	msgInvalidInput        = "некорректные данные бронирования"
	msgForbidden           = "роль не может создавать бронирования"
	msgInThePast           = "время начала уже прошло"
	msgDateTooFar          = "дата бронирования слишком далеко в будущем"
	msgOutsideAvailability = "время вне расписания практика"
	msgNotOnGrid           = "время не совпадает с сеткой слотов"
	msgSlotNotAvailable    = "выбранный временной слот недоступен"
	msgGroupFull           = "в групповом занятии нет свободных мест"
	msgGroupNotFound       = "на это время нет группового занятия"
	msgAlreadyJoined       = "клиент уже записан на это занятие"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse scheduledAt: %v", err)
		handlers.RespondBadRequest(w, msgInvalidScheduledAt)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrForbidden):
			h.logger.Warn("POST /bookings - Forbidden: user_id=%d, role=%s", actor.UserID, actor.Role)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createBooking.ErrInThePast):
			handlers.RespondBadRequest(w, msgInThePast)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrOutsideAvailability):
			handlers.RespondBadRequest(w, msgOutsideAvailability)

		case errors.Is(err, createBooking.ErrNotOnGrid):
			handlers.RespondBadRequest(w, msgNotOnGrid)

		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: user_id=%d, practitioner_id=%d", actor.UserID, req.PractitionerID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrGroupFull):
			h.logger.Warn("POST /bookings - Group full: user_id=%d, practitioner_id=%d", actor.UserID, req.PractitionerID)
			handlers.RespondConflict(w, msgGroupFull)

		case errors.Is(err, createBooking.ErrGroupNotFound):
			handlers.RespondNotFound(w, msgGroupNotFound)

		case errors.Is(err, createBooking.ErrAlreadyJoined):
			handlers.RespondConflict(w, msgAlreadyJoined)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, practitioner_id=%d, error=%v",
				actor.UserID, req.PractitionerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, practitioner_id=%d, joined=%t",
		result.Booking.ID, actor.UserID, result.Booking.PractitionerID, result.Joined)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
