package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCalendarCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCalendarCache(client, ttl, zap.NewNop()), mr
}

func sampleSnapshot() *CalendarSnapshot {
	hours := domain.OperationalHours{
		Mode:           domain.OperatingModeStandard,
		StandardWindow: domain.TimeRange{Start: "08:00", End: "18:00"},
		StandardBreaks: []domain.TimeRange{{Start: "12:00", End: "13:00"}},
	}
	hours.WorkingDays[time.Monday] = domain.WorkingDay{Weekday: time.Monday, Enabled: true, Kind: domain.ScheduleKindStandard}
	return &CalendarSnapshot{
		Hours: hours,
		Holidays: []domain.Holiday{{
			ID: "h1", Name: "New Year", IsRecurring: true, IsActive: true,
			Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
		LoadedAt: time.Date(2025, 1, 15, 3, 0, 0, 0, time.UTC),
	}
}

func TestCalendarCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	c.Set(ctx, sampleSnapshot())
	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "12:00", got.Hours.StandardBreaks[0].Start)
	assert.True(t, got.Hours.Day(time.Monday).Enabled)
	require.Len(t, got.Holidays, 1)
	assert.True(t, got.Holidays[0].Date.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx)
	assert.False(t, ok, "entry should expire with the ttl")
}

func TestCalendarCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Minute)

	c.Set(ctx, sampleSnapshot())
	require.NoError(t, c.Invalidate(ctx))
	_, ok := c.Get(ctx)
	assert.False(t, ok)
}

func TestCalendarCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(calendarKey, "{not json"))

	_, ok := c.Get(ctx)
	assert.False(t, ok)
}

func TestCalendarCacheDisabled(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, 0)

	c.Set(ctx, sampleSnapshot())
	assert.False(t, mr.Exists(calendarKey))
	_, ok := c.Get(ctx)
	assert.False(t, ok)

	var nilCache *RedisCalendarCache
	_, ok = nilCache.Get(ctx)
	assert.False(t, ok)
	assert.NoError(t, nilCache.Invalidate(ctx))
}

func TestCalendarCacheServerDownIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	c.Set(ctx, sampleSnapshot())
	_, ok := c.Get(ctx)
	assert.False(t, ok)
}
