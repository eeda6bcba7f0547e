package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SessionScheduler/internal/domain"
	"github.com/m04kA/SMC-SessionScheduler/pkg/types"
)

const keyPrefix = "session-scheduler:availability:"

// cachedWindow форма хранения окна в redis
type cachedWindow struct {
	ID        int64            `json:"id"`
	DayOfWeek int              `json:"day_of_week"`
	StartTime types.TimeString `json:"start_time"`
	EndTime   types.TimeString `json:"end_time"`
}

// Cache кэш еженедельных окон практика в redis
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCache создает кэш. ttl <= 0 означает хранение без срока.
func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func key(practitionerID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, practitionerID)
}

// Get возвращает окна практика. ok == false, если ключа нет.
func (c *Cache) Get(ctx context.Context, practitionerID int64) ([]*domain.AvailabilityWindow, bool, error) {
	raw, err := c.client.Get(ctx, key(practitionerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: Get - %v", ErrCache, err)
	}

	var cached []cachedWindow
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("%w: Get - %v", ErrDecode, err)
	}

	windows := make([]*domain.AvailabilityWindow, 0, len(cached))
	for _, cw := range cached {
		windows = append(windows, &domain.AvailabilityWindow{
			ID:             cw.ID,
			PractitionerID: practitionerID,
			DayOfWeek:      cw.DayOfWeek,
			StartTime:      cw.StartTime,
			EndTime:        cw.EndTime,
		})
	}

	return windows, true, nil
}

// Set сохраняет окна практика. Пустой список тоже кэшируется.
func (c *Cache) Set(ctx context.Context, practitionerID int64, windows []*domain.AvailabilityWindow) error {
	cached := make([]cachedWindow, 0, len(windows))
	for _, w := range windows {
		cached = append(cached, cachedWindow{
			ID:        w.ID,
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("%w: Set - %v", ErrDecode, err)
	}

	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, key(practitionerID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set - %v", ErrCache, err)
	}

	return nil
}

// Invalidate удаляет окна практика из кэша
func (c *Cache) Invalidate(ctx context.Context, practitionerID int64) error {
	if err := c.client.Del(ctx, key(practitionerID)).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate - %v", ErrCache, err)
	}
	return nil
}
