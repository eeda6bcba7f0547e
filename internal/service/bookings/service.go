package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SessionScheduler/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SessionScheduler/internal/integrations/creditservice"
	"github.com/m04kA/SMC-SessionScheduler/internal/scheduling"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/bookings/models"
	"github.com/m04kA/SMC-SessionScheduler/pkg/ptr"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	creditClient CreditClient
	txManager    TransactionManager
	metrics      Metrics
	cutoff       time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований.
// cutoff <= 0 означает окно отсечки по умолчанию.
func NewService(
	bookingRepo BookingRepository,
	creditClient CreditClient,
	txManager TransactionManager,
	metrics Metrics,
	cutoff time.Duration,
	logger Logger,
) *Service {
	if cutoff <= 0 {
		cutoff = scheduling.DefaultRescheduleCutoff
	}
	return &Service{
		bookingRepo:  bookingRepo,
		creditClient: creditClient,
		txManager:    txManager,
		metrics:      metrics,
		cutoff:       cutoff,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID.
// Клиент видит свои бронирования и групповые занятия, на которые записан,
// практик - свои занятия, администратор - все.
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d (%s)", id, actor.UserID, actor.Role)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkViewAccess(ctx, booking, actor); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actor.UserID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetClientBookings получает историю бронирований клиента (включая групповые занятия).
// Опционально фильтрует по статусу.
func (s *Service) GetClientBookings(ctx context.Context, req *models.GetClientBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetClientBookings: fetching bookings for client=%d, status=%v", req.ClientID, req.Status)

	if !req.Actor.IsAdmin() && !(req.Actor.Role == domain.RoleClient && req.Actor.UserID == req.ClientID) {
		s.logger.Warn("GetClientBookings: user=%d cannot view bookings of client=%d", req.Actor.UserID, req.ClientID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetClientBookings: invalid status=%s for client=%d", *req.Status, req.ClientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	records, err := s.bookingRepo.ListByClient(ctx, req.ClientID, domainStatus)
	if err != nil {
		s.logger.Error("GetClientBookings: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientBookings - repository error: %v", ErrInternal, err)
	}

	bookings := s.parseRecords("GetClientBookings", records)

	s.logger.Info("GetClientBookings: successfully fetched %d bookings for client=%d", len(bookings), req.ClientID)
	return models.FromDomainBookingList(bookings), nil
}

// GetPractitionerBookings получает расписание практика с фильтрацией
// по периоду, статусу и включению отмененных бронирований.
// Доступно самому практику и администратору.
func (s *Service) GetPractitionerBookings(ctx context.Context, req *models.GetPractitionerBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetPractitionerBookings: fetching bookings for practitioner=%d, user=%d", req.PractitionerID, req.Actor.UserID)
	if req.From != nil {
		logMsg += fmt.Sprintf(", from=%s", req.From.Format(domain.DateFormat))
	}
	if req.To != nil {
		logMsg += fmt.Sprintf(", to=%s", req.To.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeCancelled {
		logMsg += ", includeCancelled=true"
	}
	s.logger.Info(logMsg)

	if !req.Actor.IsAdmin() && !(req.Actor.Role == domain.RolePractitioner && req.Actor.UserID == req.PractitionerID) {
		s.logger.Warn("GetPractitionerBookings: user=%d cannot view schedule of practitioner=%d", req.Actor.UserID, req.PractitionerID)
		return nil, ErrAccessDenied
	}

	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetPractitionerBookings: invalid filter for practitioner=%d: %v", req.PractitionerID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	records, err := s.bookingRepo.ListByPractitionerWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetPractitionerBookings: repository error for practitioner=%d: %v", req.PractitionerID, err)
		return nil, fmt.Errorf("%w: GetPractitionerBookings - repository error: %v", ErrInternal, err)
	}

	bookings := s.parseRecords("GetPractitionerBookings", records)

	s.logger.Info("GetPractitionerBookings: successfully fetched %d bookings for practitioner=%d", len(bookings), req.PractitionerID)
	return models.FromDomainBookingList(bookings), nil
}

// ReschedulePolicy возвращает решение политики для бронирования на текущий момент,
// чтобы интерфейс мог заранее скрыть перенос и отмену
func (s *Service) ReschedulePolicy(ctx context.Context, id int64, actor domain.Actor) (*models.PolicyResponse, error) {
	s.logger.Info("ReschedulePolicy: booking id=%d for user=%d (%s)", id, actor.UserID, actor.Role)

	booking, err := s.getBooking(ctx, "ReschedulePolicy", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkViewAccess(ctx, booking, actor); err != nil {
		s.logger.Warn("ReschedulePolicy: access denied for user=%d to booking id=%d", actor.UserID, id)
		return nil, err
	}

	decision := s.evaluate(ctx, booking, actor)
	s.metrics.IncPolicyDecision(string(decision.State))

	return models.FromDecision(booking.ID, decision), nil
}

// Cancel отменяет бронирование.
// До окна отсечки отмена свободная. Внутри окна клиент-владелец может один раз
// воспользоваться льготной отменой (UseGrace), она списывается в CreditService.
// Администратор отменяет без ограничений.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.CancelBookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d (%s)", bookingID, req.Actor.UserID, req.Actor.Role)

	if req.CancellationReason != nil && len(*req.CancellationReason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason must be at most %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	var resp *models.CancelBookingResponse

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Блокируем бронирование до конца транзакции
		booking, err := s.getBooking(txCtx, "Cancel", bookingID)
		if err != nil {
			return err
		}

		// 2. Права: клиент-владелец, практик занятия или администратор
		if !canModify(booking, req.Actor) {
			s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.Actor.UserID, bookingID)
			return ErrAccessDenied
		}

		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
			return ErrCannotCancel
		}

		// 3. Политика окна отсечки
		decision := s.evaluate(txCtx, booking, req.Actor)
		s.metrics.IncPolicyDecision(string(decision.State))

		graceUsed := false
		switch decision.State {
		case domain.StateEligible:
		case domain.StateBlockedStandard:
			if !req.UseGrace {
				s.logger.Warn("Cancel: booking id=%d is inside the cutoff and grace was not requested", bookingID)
				return &PolicyViolationError{Decision: decision}
			}
			// Льготой распоряжается только сам клиент
			if req.Actor.Role != domain.RoleClient || !booking.IsOwnedBy(req.Actor.UserID) {
				s.logger.Warn("Cancel: user=%d (%s) cannot spend the grace of client=%d",
					req.Actor.UserID, req.Actor.Role, booking.ClientID)
				return &PolicyViolationError{Decision: decision}
			}
			graceUsed = true
		default:
			s.logger.Warn("Cancel: booking id=%d blocked (%s)", bookingID, decision.State)
			return &PolicyViolationError{Decision: decision}
		}

		// 4. Отменяем бронирование
		if err := s.bookingRepo.Cancel(txCtx, bookingID, req.CancellationReason); err != nil {
			if errors.Is(err, bookingRepo.ErrCannotCancel) {
				return ErrCannotCancel
			}
			s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		// 5. Льгота списывается последним шагом: ее ошибка откатывает отмену
		if graceUsed {
			if err := s.useGrace(txCtx, booking); err != nil {
				return err
			}
		}

		resp = &models.CancelBookingResponse{
			BookingID: bookingID,
			Status:    string(domain.StatusCancelled),
			GraceUsed: graceUsed,
			Notice:    decision.Notice,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d (graceUsed=%t, reason=%q)",
		bookingID, resp.GraceUsed, ptr.Deref(req.CancellationReason, ""))
	return resp, nil
}

// UpdateStatus обновляет статус бронирования (начало и завершение занятия).
// Доступно практику занятия и администратору.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d",
		bookingID, req.Status, req.Actor.UserID)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	return s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getBooking(txCtx, "UpdateStatus", bookingID)
		if err != nil {
			return err
		}

		if !req.Actor.IsAdmin() && !(req.Actor.Role == domain.RolePractitioner && booking.PractitionerID == req.Actor.UserID) {
			s.logger.Warn("UpdateStatus: user=%d cannot change booking id=%d", req.Actor.UserID, bookingID)
			return ErrAccessDenied
		}

		if !booking.Status.CanTransitionTo(newStatus) {
			s.logger.Warn("UpdateStatus: booking id=%d cannot move from %s to %s", bookingID, booking.Status, newStatus)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, newStatus)
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, bookingID, newStatus); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}

		s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
		return nil
	})
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// evaluate применяет политику; флаг льготы нужен только внутри окна отсечки
func (s *Service) evaluate(ctx context.Context, booking *domain.Booking, actor domain.Actor) domain.RescheduleDecision {
	now := s.timeProvider.Now()
	in := scheduling.PolicyInput{
		ScheduledAt: booking.ScheduledAt,
		Now:         now,
		IsAdmin:     actor.IsAdmin(),
		Cutoff:      s.cutoff,
	}

	if !in.IsAdmin && booking.ScheduledAt.Sub(now) < s.cutoff {
		in.GraceUsed = s.creditClient.GraceCancellationUsedWithGracefulDegradation(ctx, booking.ClientID)
	}

	return scheduling.EvaluateReschedule(in)
}

// useGrace списывает льготную отмену. Если сервис сообщает, что льгота уже использована,
// решение переводится в blocked_grace_used.
func (s *Service) useGrace(ctx context.Context, booking *domain.Booking) error {
	err := s.creditClient.UseGraceCancellation(ctx, booking.ClientID, booking.ID)
	if err == nil {
		return nil
	}

	if errors.Is(err, creditservice.ErrGraceAlreadyUsed) {
		blocked := scheduling.EvaluateReschedule(scheduling.PolicyInput{
			ScheduledAt: booking.ScheduledAt,
			Now:         s.timeProvider.Now(),
			GraceUsed:   true,
			Cutoff:      s.cutoff,
		})
		s.logger.Warn("Cancel: grace already used by client=%d", booking.ClientID)
		return &PolicyViolationError{Decision: blocked}
	}

	s.logger.Error("Cancel: failed to use grace cancellation for client=%d: %v", booking.ClientID, err)
	return fmt.Errorf("%w: failed to use grace cancellation: %v", ErrInternal, err)
}

// checkViewAccess проверяет право просмотра бронирования
func (s *Service) checkViewAccess(ctx context.Context, booking *domain.Booking, actor domain.Actor) error {
	if canModify(booking, actor) {
		return nil
	}

	if actor.Role == domain.RoleClient && booking.IsGroup() {
		joined, err := s.bookingRepo.IsParticipant(ctx, booking.ID, actor.UserID)
		if err != nil {
			s.logger.Error("checkViewAccess: failed to check participant for booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: checkViewAccess - repository error: %v", ErrInternal, err)
		}
		if joined {
			return nil
		}
	}

	return ErrAccessDenied
}

// canModify клиент-владелец, практик занятия или администратор
func canModify(booking *domain.Booking, actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleClient:
		return booking.IsOwnedBy(actor.UserID)
	case domain.RolePractitioner:
		return booking.PractitionerID == actor.UserID
	default:
		return false
	}
}

// parseRecords пропускает битые записи, чтобы одна строка не ломала весь список
func (s *Service) parseRecords(op string, records []domain.BookingRecord) []*domain.Booking {
	bookings, skipped := domain.ParseRecords(records)
	for _, err := range skipped {
		s.logger.Warn("%s: skipping malformed booking record: %v", op, err)
	}
	s.metrics.AddSkippedRecords(len(skipped))
	return bookings
}
