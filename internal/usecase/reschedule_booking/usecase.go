package reschedule_booking

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

const metricOperation = "reschedule"

// UseCase use case для переноса бронирования на другое время
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	graceClient      GraceClient
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
	graceClient GraceClient,
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
		graceClient:      graceClient,
		txManager:        txManager,
		metrics:          metrics,
		cfg:              cfg,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute переносит бронирование. Политика оценивается по текущему времени занятия,
// а не по новому: клиент не может уйти от окна отсечки переносом на дальнюю дату.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: actor=%d (%s), booking=%d, new=%s",
		req.Actor.UserID, req.Actor.Role, req.BookingID, req.NewScheduledAt.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем бронирование и проверяем права
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if !canReschedule(req.Actor, booking) {
		uc.logger.Warn("RescheduleBooking: actor=%d has no access to booking id=%d", req.Actor.UserID, booking.ID)
		return nil, ErrForbidden
	}

	if !booking.CanBeRescheduled() {
		uc.logger.Warn("RescheduleBooking: booking id=%d has status %s", booking.ID, booking.Status)
		return nil, ErrCannotReschedule
	}

	// 3. Политика окна отсечки
	now := uc.timeProvider.Now()
	decision := uc.evaluate(ctx, req.Actor, booking, now)
	uc.metrics.IncPolicyDecision(string(decision.State))

	if !decision.Allowed {
		uc.logger.Warn("RescheduleBooking: booking id=%d blocked (%s, %.2fh until start)",
			booking.ID, decision.State, decision.HoursUntil)
		return nil, &PolicyViolationError{Decision: decision}
	}
	if decision.Notice != "" {
		uc.logger.Info("RescheduleBooking: admin override for booking id=%d: %s", booking.ID, decision.Notice)
	}

	// 4. Проверки нового времени
	if !req.NewScheduledAt.After(now) {
		return nil, ErrInThePast
	}
	if req.NewScheduledAt.Equal(booking.ScheduledAt) {
		return nil, ErrSameTime
	}

	duration := time.Duration(booking.DurationMinutes) * time.Minute

	windows, err := uc.availabilityRepo.ListByPractitioner(ctx, booking.PractitionerID)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to get availability for practitioner=%d: %v", booking.PractitionerID, err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	if err := checkPlacement(windows, req.NewScheduledAt, duration, uc.cfg.Step, uc.cfg.AllowOverrun, uc.cfg.Location); err != nil {
		uc.logger.Warn("RescheduleBooking: %s rejected for practitioner=%d: %v",
			req.NewScheduledAt.Format(time.RFC3339), booking.PractitionerID, err)
		return nil, err
	}

	// 5. Повторная проверка конфликтов и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		day := startOfDay(req.NewScheduledAt, uc.cfg.Location)

		records, err := uc.bookingRepo.ListActiveForDay(txCtx, booking.PractitionerID, day, day.AddDate(0, 0, 1))
		if err != nil {
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		bookings, skipped := domain.ParseRecords(records)
		for _, skipErr := range skipped {
			uc.logger.Warn("RescheduleBooking: skipping malformed booking record: %v", skipErr)
		}
		uc.metrics.AddSkippedRecords(len(skipped))

		verdict := scheduling.CheckAt(req.NewScheduledAt, duration, bookings,
			scheduling.CheckOptions{ExcludeBookingID: booking.ID}, now)
		if !verdict.Available {
			uc.logger.Warn("RescheduleBooking: slot %s not available: %s",
				req.NewScheduledAt.Format(time.RFC3339), verdict.Reason)
			return ErrSlotNotAvailable
		}

		if err := uc.bookingRepo.UpdateScheduledAt(txCtx, booking.ID, req.NewScheduledAt); err != nil {
			if errors.Is(err, bookingRepo.ErrCannotReschedule) {
				return ErrCannotReschedule
			}
			return fmt.Errorf("%w: failed to update booking: %w", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, txmanager.ErrSerialization), errors.Is(err, txmanager.ErrConflict),
			errors.Is(err, ErrSlotNotAvailable):
			uc.metrics.IncBookingConflict(metricOperation)
			return nil, ErrSlotNotAvailable
		case errors.Is(err, ErrCannotReschedule):
			return nil, err
		default:
			uc.logger.Error("RescheduleBooking: %v", err)
			if errors.Is(err, ErrInternal) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	booking.ScheduledAt = req.NewScheduledAt

	uc.logger.Info("RescheduleBooking: booking id=%d moved to %s", booking.ID, req.NewScheduledAt.Format(time.RFC3339))
	return &Response{Booking: booking, Decision: decision}, nil
}

// evaluate применяет политику. Флаг льготы запрашивается только когда он влияет на ответ.
func (uc *UseCase) evaluate(ctx context.Context, actor domain.Actor, booking *domain.Booking, now time.Time) domain.RescheduleDecision {
	in := scheduling.PolicyInput{
		ScheduledAt: booking.ScheduledAt,
		Now:         now,
		IsAdmin:     actor.IsAdmin(),
		Cutoff:      uc.cfg.Cutoff,
	}

	if !in.IsAdmin && booking.ScheduledAt.Sub(now) < uc.cutoff() {
		in.GraceUsed = uc.graceClient.GraceCancellationUsedWithGracefulDegradation(ctx, booking.ClientID)
	}

	return scheduling.EvaluateReschedule(in)
}

func (uc *UseCase) cutoff() time.Duration {
	if uc.cfg.Cutoff > 0 {
		return uc.cfg.Cutoff
	}
	return scheduling.DefaultRescheduleCutoff
}
