package availability

import (
	"context"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// CachedRepository читает окна через кэш, при промахе или недоступности redis идет в БД.
// Ошибки redis не пробрасываются: кэш только ускоряет чтение.
type CachedRepository struct {
	repo    WindowRepository
	cache   *Cache
	metrics Metrics
	logger  Logger
}

// NewCachedRepository создает read-through обертку над репозиторием окон
func NewCachedRepository(repo WindowRepository, cache *Cache, metrics Metrics, logger Logger) *CachedRepository {
	return &CachedRepository{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// ListByPractitioner возвращает окна практика
func (r *CachedRepository) ListByPractitioner(ctx context.Context, practitionerID int64) ([]*domain.AvailabilityWindow, error) {
	windows, ok, err := r.cache.Get(ctx, practitionerID)
	switch {
	case err != nil:
		r.metrics.IncAvailabilityCache(resultError)
		r.logger.Warn("AvailabilityCache: get practitioner=%d failed, reading from db: %v", practitionerID, err)
	case ok:
		r.metrics.IncAvailabilityCache(resultHit)
		return windows, nil
	default:
		r.metrics.IncAvailabilityCache(resultMiss)
	}

	windows, err = r.repo.ListByPractitioner(ctx, practitionerID)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, practitionerID, windows); err != nil {
		r.logger.Warn("AvailabilityCache: set practitioner=%d failed: %v", practitionerID, err)
	}

	return windows, nil
}

// Invalidate сбрасывает кэш практика после изменения расписания
func (r *CachedRepository) Invalidate(ctx context.Context, practitionerID int64) error {
	return r.cache.Invalidate(ctx, practitionerID)
}
