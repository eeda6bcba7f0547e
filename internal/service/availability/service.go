package availability

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/internal/service/availability/models"
)

// Service сервис недельного расписания практиков
type Service struct {
	repo        WindowRepository
	reader      WindowReader
	invalidator CacheInvalidator
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса расписаний.
// invalidator может быть nil, если кэш выключен.
func NewService(
	repo WindowRepository,
	reader WindowReader,
	invalidator CacheInvalidator,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		repo:        repo,
		reader:      reader,
		invalidator: invalidator,
		txManager:   txManager,
		logger:      logger,
	}
}

// GetWeekly возвращает недельное расписание практика. Публичный метод.
// day != nil ограничивает ответ одним днем недели.
func (s *Service) GetWeekly(ctx context.Context, practitionerID int64, day *int) (*models.WeeklyResponse, error) {
	s.logger.Info("GetWeekly: fetching availability for practitioner=%d, day=%v", practitionerID, day)

	if practitionerID <= 0 {
		return nil, fmt.Errorf("%w: practitionerID must be positive", ErrInvalidInput)
	}

	var (
		windows []*domain.AvailabilityWindow
		err     error
	)
	if day != nil {
		if *day < 0 || *day > 6 {
			return nil, fmt.Errorf("%w: day must be between 0 and 6", ErrInvalidInput)
		}
		windows, err = s.repo.ListByPractitionerAndDay(ctx, practitionerID, *day)
	} else {
		windows, err = s.reader.ListByPractitioner(ctx, practitionerID)
	}
	if err != nil {
		s.logger.Error("GetWeekly: repository error for practitioner=%d: %v", practitionerID, err)
		return nil, fmt.Errorf("%w: GetWeekly - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetWeekly: successfully fetched %d windows for practitioner=%d", len(windows), practitionerID)
	return models.FromDomainWindows(practitionerID, windows), nil
}

// ReplaceWeekly заменяет расписание практика целиком.
// Доступно самому практику и администратору.
func (s *Service) ReplaceWeekly(ctx context.Context, req *models.ReplaceWeeklyRequest) (*models.WeeklyResponse, error) {
	s.logger.Info("ReplaceWeekly: replacing %d windows for practitioner=%d by user=%d",
		len(req.Windows), req.PractitionerID, req.Actor.UserID)

	// 1. Права доступа
	if !req.Actor.IsAdmin() && !(req.Actor.Role == domain.RolePractitioner && req.Actor.UserID == req.PractitionerID) {
		s.logger.Warn("ReplaceWeekly: user=%d cannot edit practitioner=%d", req.Actor.UserID, req.PractitionerID)
		return nil, ErrAccessDenied
	}

	// 2. Парсинг и валидация окон
	windows, err := req.ToDomainWindows()
	if err != nil {
		s.logger.Warn("ReplaceWeekly: invalid windows: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := validateWindows(windows); err != nil {
		s.logger.Warn("ReplaceWeekly: validation failed for practitioner=%d: %v", req.PractitionerID, err)
		return nil, err
	}

	// 3. Удаление и вставка в одной транзакции
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.repo.ReplaceForPractitioner(txCtx, req.PractitionerID, windows)
	})
	if err != nil {
		s.logger.Error("ReplaceWeekly: repository error for practitioner=%d: %v", req.PractitionerID, err)
		return nil, fmt.Errorf("%w: ReplaceWeekly - repository error: %v", ErrInternal, err)
	}

	// 4. Сбрасываем кэш. Ошибка не критична: запись истечет по TTL.
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, req.PractitionerID); err != nil {
			s.logger.Warn("ReplaceWeekly: failed to invalidate cache for practitioner=%d: %v", req.PractitionerID, err)
		}
	}

	s.logger.Info("ReplaceWeekly: successfully saved %d windows for practitioner=%d", len(windows), req.PractitionerID)
	return models.FromDomainWindows(req.PractitionerID, windows), nil
}

// validateWindows проверяет дни недели, порядок времени, лимит окон на день и пересечения
func validateWindows(windows []*domain.AvailabilityWindow) error {
	perDay := make(map[int][]*domain.AvailabilityWindow)

	for i, w := range windows {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			return fmt.Errorf("%w: windows[%d].dayOfWeek must be between 0 and 6", ErrInvalidInput, i)
		}
		if !w.IsValid() {
			return fmt.Errorf("%w: windows[%d] start must be before end", ErrInvalidInput, i)
		}

		for _, other := range perDay[w.DayOfWeek] {
			if w.Overlaps(other) {
				return fmt.Errorf("%w: day %d, %s-%s and %s-%s", ErrOverlappingWindows, w.DayOfWeek,
					other.StartTime, other.EndTime, w.StartTime, w.EndTime)
			}
		}

		perDay[w.DayOfWeek] = append(perDay[w.DayOfWeek], w)
		if len(perDay[w.DayOfWeek]) > domain.MaxWindowsPerDay {
			return fmt.Errorf("%w: at most %d windows per day", ErrInvalidInput, domain.MaxWindowsPerDay)
		}
	}

	return nil
}
