package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intervu-ai/intervu-server/internal/domain"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCacheSetAndGet(t *testing.T) {
	cache := NewCacheRepository(newTestRedis(t))
	ctx := context.Background()

	stats := domain.DashboardStats{
		TotalCandidates:   12,
		CompletedSessions: 7,
		ActiveSessions:    2,
		AverageScore:      64.5,
	}
	require.NoError(t, cache.Set(ctx, "dashboard:stats", stats, time.Minute))

	raw, err := cache.Get(ctx, "dashboard:stats")
	require.NoError(t, err)

	var got domain.DashboardStats
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, stats, got)
}

func TestCacheGetMissingKey(t *testing.T) {
	cache := NewCacheRepository(newTestRedis(t))

	_, err := cache.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestCacheDelete(t *testing.T) {
	cache := NewCacheRepository(newTestRedis(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", 0))
	require.NoError(t, cache.Delete(ctx, "k"))

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestCacheDeleteByPattern(t *testing.T) {
	cache := NewCacheRepository(newTestRedis(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "dashboard:stats", 1, 0))
	require.NoError(t, cache.Set(ctx, "dashboard:candidates:p1", 2, 0))
	require.NoError(t, cache.Set(ctx, "other:key", 3, 0))

	require.NoError(t, cache.DeleteByPattern(ctx, "dashboard:*"))

	_, err := cache.Get(ctx, "dashboard:stats")
	assert.ErrorIs(t, err, redis.Nil)
	_, err = cache.Get(ctx, "dashboard:candidates:p1")
	assert.ErrorIs(t, err, redis.Nil)

	_, err = cache.Get(ctx, "other:key")
	assert.NoError(t, err)
}

func TestSettingsOracleKeyRoundTrip(t *testing.T) {
	settings := NewSettingsRepository(newTestRedis(t))
	ctx := context.Background()

	key, err := settings.GetOracleAPIKey(ctx)
	require.NoError(t, err)
	assert.Empty(t, key, "unset key must read as empty, not error")

	require.NoError(t, settings.SetOracleAPIKey(ctx, "sk-test-123"))

	key, err = settings.GetOracleAPIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", key)
}
