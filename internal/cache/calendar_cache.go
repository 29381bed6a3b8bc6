package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

const calendarKey = "sla:calendar:snapshot"

// CalendarSnapshot is the configuration a calculator is built from.
type CalendarSnapshot struct {
	Hours    domain.OperationalHours `json:"hours"`
	Holidays []domain.Holiday        `json:"holidays"`
	LoadedAt time.Time               `json:"loaded_at"`
}

// CalendarCache stores the current calendar snapshot.
type CalendarCache interface {
	Get(ctx context.Context) (*CalendarSnapshot, bool)
	Set(ctx context.Context, snapshot *CalendarSnapshot)
	Invalidate(ctx context.Context) error
}

// RedisCalendarCache keeps the snapshot as JSON in redis. Cache failures are
// logged and reported as misses so callers fall back to the database.
type RedisCalendarCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCalendarCache builds the cache. A nil client or non-positive ttl disables it.
func NewRedisCalendarCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCalendarCache {
	return &RedisCalendarCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisCalendarCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func (c *RedisCalendarCache) Get(ctx context.Context) (*CalendarSnapshot, bool) {
	if !c.enabled() {
		return nil, false
	}
	val, err := c.client.Get(ctx, calendarKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("calendar cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var snapshot CalendarSnapshot
	if err := json.Unmarshal(val, &snapshot); err != nil {
		c.logger.Warn("calendar cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &snapshot, true
}

func (c *RedisCalendarCache) Set(ctx context.Context, snapshot *CalendarSnapshot) {
	if !c.enabled() || snapshot == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, calendarKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("calendar cache write failed", zap.Error(err))
	}
}

func (c *RedisCalendarCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, calendarKey).Err()
}
