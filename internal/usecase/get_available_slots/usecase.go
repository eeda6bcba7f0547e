package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SessionScheduler/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SessionScheduler/internal/scheduling"
)

// UseCase use case для получения слотов практика на дату
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	metrics          Metrics
	cfg              Config
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
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
		metrics:          metrics,
		cfg:              cfg,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: practitioner=%d, date=%s, flow=%s, type=%s, duration=%d, booking=%d",
		req.PractitionerID, req.Date.Format(domain.DateFormat), req.Flow, req.SessionType, req.DurationMinutes, req.BookingID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Берем календарную дату запроса как есть и ставим полночь в часовом поясе расписаний
	now := uc.timeProvider.Now()
	date := calendarDate(req.Date, uc.cfg.Location)

	if err := validateDate(date, now, uc.cfg.MaxAdvanceDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 3. Параметры сетки зависят от сценария
	opts := scheduling.SlotOptions{
		Step:         uc.cfg.BookingStep,
		Duration:     minutes(req.DurationMinutes),
		AllowOverrun: uc.cfg.AllowOverrun,
	}
	if req.DurationMinutes == 0 {
		opts.Duration = minutes(uc.cfg.DefaultDurationMinutes)
	}
	check := scheduling.CheckOptions{IsGroup: req.SessionType == domain.SessionGroup}

	if req.Flow == domain.FlowReschedule {
		booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("GetAvailableSlots: booking id=%d not found", req.BookingID)
				return nil, ErrBookingNotFound
			}
			uc.logger.Error("GetAvailableSlots: failed to get booking id=%d: %v", req.BookingID, err)
			return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if booking.PractitionerID != req.PractitionerID {
			uc.logger.Warn("GetAvailableSlots: booking id=%d belongs to practitioner=%d", booking.ID, booking.PractitionerID)
			return nil, ErrBookingMismatch
		}

		// Переносится сама бронь: ее длительность, без конфликта с собой
		opts.Step = uc.cfg.RescheduleStep
		opts.Duration = minutes(booking.DurationMinutes)
		check = scheduling.CheckOptions{ExcludeBookingID: booking.ID}
	}

	// 4. Получаем окна доступности практика
	windows, err := uc.availabilityRepo.ListByPractitioner(ctx, req.PractitionerID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get availability for practitioner=%d: %v", req.PractitionerID, err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	// 5. Получаем бронирования на этот день, битые записи пропускаем
	records, err := uc.bookingRepo.ListActiveForDay(ctx, req.PractitionerID, date, date.AddDate(0, 0, 1))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	bookings, skipped := domain.ParseRecords(records)
	for _, skipErr := range skipped {
		uc.logger.Warn("GetAvailableSlots: skipping malformed booking record: %v", skipErr)
	}
	uc.metrics.AddSkippedRecords(len(skipped))

	// 6. Строим слоты
	slots := scheduling.BuildDaySlots(scheduling.DayRequest{
		Date:     date,
		Windows:  windows,
		Bookings: bookings,
		Options:  opts,
		Check:    check,
		Now:      now,
	})

	uc.metrics.ObserveSlots(string(req.Flow), len(slots))
	for _, slot := range slots {
		if !slot.Available {
			uc.metrics.IncSlotUnavailable(string(slot.Reason))
		}
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for practitioner=%d, date=%s",
		len(slots), req.PractitionerID, date.Format(domain.DateFormat))

	return &Response{
		Date:            date,
		PractitionerID:  req.PractitionerID,
		Flow:            req.Flow,
		DurationMinutes: int(opts.Duration / time.Minute),
		Slots:           slots,
	}, nil
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
