package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SessionScheduler/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SessionScheduler/internal/scheduling"
	"github.com/m04kA/SMC-SessionScheduler/pkg/txmanager"
)

const metricOperation = "create"

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	txManager        TransactionManager
	metrics          Metrics
	cfg              Config
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	txManager TransactionManager,
	metrics Metrics,
	cfg Config,
	logger Logger,
) *UseCase {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &UseCase{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		txManager:        txManager,
		metrics:          metrics,
		cfg:              cfg,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка конфликтов повторяется внутри SERIALIZABLE транзакции по заблокированным строкам,
// поэтому два клиента, увидевшие один свободный слот, не смогут занять его оба.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: actor=%d (%s), practitioner=%d, at=%s, type=%s",
		req.Actor.UserID, req.Actor.Role, req.PractitionerID, req.ScheduledAt.Format(time.RFC3339), req.SessionType)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	if req.Actor.Role == domain.RolePractitioner {
		uc.logger.Warn("CreateBooking: practitioner=%d cannot book sessions", req.Actor.UserID)
		return nil, ErrForbidden
	}

	clientID := req.Actor.UserID
	if req.Actor.IsAdmin() && req.ClientID > 0 {
		clientID = req.ClientID
	}

	durationMinutes := req.DurationMinutes
	if durationMinutes == 0 {
		durationMinutes = uc.cfg.DefaultDurationMinutes
	}
	duration := time.Duration(durationMinutes) * time.Minute

	// 2. Проверки времени
	now := uc.timeProvider.Now()
	if !req.ScheduledAt.After(now) {
		uc.logger.Warn("CreateBooking: start %s is not after now", req.ScheduledAt.Format(time.RFC3339))
		return nil, ErrInThePast
	}

	if err := validateAdvance(req.ScheduledAt, now, uc.cfg.MaxAdvanceDays, uc.cfg.Location); err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	joining := req.SessionType == domain.SessionGroup && !req.Actor.IsAdmin()

	// 3. Занятие должно помещаться в окно доступности практика
	windows, err := uc.availabilityRepo.ListByPractitioner(ctx, req.PractitionerID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get availability for practitioner=%d: %v", req.PractitionerID, err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	// Для присоединения к группе время задает само занятие
	if !joining {
		if err := checkPlacement(windows, req.ScheduledAt, duration, uc.cfg.Step, uc.cfg.AllowOverrun, uc.cfg.Location); err != nil {
			uc.logger.Warn("CreateBooking: %s rejected for practitioner=%d: %v",
				req.ScheduledAt.Format(time.RFC3339), req.PractitionerID, err)
			return nil, err
		}
	}

	// Переменная для хранения результата
	var result *Response

	// 4. Выполняем проверку и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		day := startOfDay(req.ScheduledAt, uc.cfg.Location)

		records, err := uc.bookingRepo.ListActiveForDay(txCtx, req.PractitionerID, day, day.AddDate(0, 0, 1))
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		bookings, skipped := domain.ParseRecords(records)
		for _, skipErr := range skipped {
			uc.logger.Warn("CreateBooking: skipping malformed booking record: %v", skipErr)
		}
		uc.metrics.AddSkippedRecords(len(skipped))

		verdict := scheduling.CheckAt(req.ScheduledAt, duration, bookings,
			scheduling.CheckOptions{IsGroup: joining}, now)

		if joining {
			result, err = uc.join(txCtx, verdict, bookings, clientID)
			return err
		}

		if !verdict.Available {
			uc.logger.Warn("CreateBooking: slot %s not available: %s", req.ScheduledAt.Format(time.RFC3339), verdict.Reason)
			return reasonError(verdict.Reason)
		}

		booking := &domain.Booking{
			ClientID:            clientID,
			PractitionerID:      req.PractitionerID,
			ScheduledAt:         req.ScheduledAt,
			DurationMinutes:     durationMinutes,
			MaxParticipants:     domain.DefaultMaxParticipants,
			CurrentParticipants: 1,
			Location:            req.Location,
			Status:              domain.StatusScheduled,
			Notes:               req.Notes,
		}
		if req.SessionType == domain.SessionGroup {
			// Новое групповое занятие создает администратор, места пока свободны
			booking.MaxParticipants = req.MaxParticipants
			booking.CurrentParticipants = 0
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = &Response{Booking: created}
		return nil
	})

	if err != nil {
		return nil, uc.mapTxError(err)
	}

	uc.logger.Info("CreateBooking: booking id=%d ready for client=%d (joined=%t)", result.Booking.ID, clientID, result.Joined)
	return result, nil
}

// join присоединяет клиента к групповому занятию, найденному проверкой конфликтов
func (uc *UseCase) join(ctx context.Context, verdict scheduling.Verdict, bookings []*domain.Booking, clientID int64) (*Response, error) {
	if !verdict.Available {
		uc.logger.Warn("CreateBooking: cannot join group: %s", verdict.Reason)
		return nil, reasonError(verdict.Reason)
	}
	if verdict.GroupBookingID == 0 {
		uc.logger.Warn("CreateBooking: no group session to join")
		return nil, ErrGroupNotFound
	}

	// Владелец занятия не числится в session_participants, но место у него уже есть
	for _, b := range bookings {
		if b.ID == verdict.GroupBookingID && b.IsOwnedBy(clientID) {
			uc.logger.Warn("CreateBooking: client=%d owns group session id=%d", clientID, b.ID)
			return nil, ErrAlreadyJoined
		}
	}

	// Атомарный инкремент с проверкой вместимости
	if err := uc.bookingRepo.JoinGroup(ctx, verdict.GroupBookingID, clientID); err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrSlotNotAvailable):
			return nil, ErrGroupFull
		case errors.Is(err, bookingRepo.ErrAlreadyParticipant):
			return nil, ErrAlreadyJoined
		default:
			return nil, fmt.Errorf("%w: failed to join group: %w", ErrInternal, err)
		}
	}

	booking, err := uc.bookingRepo.GetByID(ctx, verdict.GroupBookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reload group session: %w", ErrInternal, err)
	}

	return &Response{Booking: booking, Joined: true}, nil
}

// mapTxError переводит ошибки гонки за слот в ErrSlotNotAvailable
func (uc *UseCase) mapTxError(err error) error {
	switch {
	case errors.Is(err, txmanager.ErrSerialization), errors.Is(err, txmanager.ErrConflict):
		uc.metrics.IncBookingConflict(metricOperation)
		uc.logger.Warn("CreateBooking: concurrent booking detected: %v", err)
		return ErrSlotNotAvailable
	case errors.Is(err, ErrSlotNotAvailable), errors.Is(err, ErrGroupFull):
		uc.metrics.IncBookingConflict(metricOperation)
		return err
	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateBooking: %v", err)
		return err
	case errors.Is(err, txmanager.ErrTransaction):
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	default:
		return err
	}
}

func reasonError(reason domain.SlotReason) error {
	switch reason {
	case domain.ReasonInThePast:
		return ErrInThePast
	case domain.ReasonGroupFull:
		return ErrGroupFull
	default:
		return ErrSlotNotAvailable
	}
}
