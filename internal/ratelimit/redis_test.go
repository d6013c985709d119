// SPDX-License-Identifier: MIT

package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a store backed by an in-process Redis.
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreWithClient(client, zerolog.Nop())
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestRedisStore_HitCountsAndExpires(t *testing.T) {
	mr, store := setupMiniRedis(t)
	ctx := context.Background()

	e, err := store.Hit(ctx, "/api/contact:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Count)
	assert.WithinDuration(t, time.Now().Add(time.Minute), e.ResetTime, 2*time.Second)
	assert.Equal(t, time.Minute, mr.TTL(defaultKeyPrefix+"/api/contact:1.2.3.4"))

	e, err = store.Hit(ctx, "/api/contact:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Count)

	mr.FastForward(time.Minute + time.Second)

	e, err = store.Hit(ctx, "/api/contact:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Count, "expired key starts a new window")
}

func TestRedisStore_KeysAreIndependent(t *testing.T) {
	_, store := setupMiniRedis(t)
	ctx := context.Background()

	_, _ = store.Hit(ctx, "a", time.Minute)
	_, _ = store.Hit(ctx, "a", time.Minute)
	e, err := store.Hit(ctx, "b", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Count)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, store := setupMiniRedis(t)
	mr.Close()

	_, err := store.Hit(context.Background(), "a", time.Minute)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.Error(t, store.HealthCheck(context.Background()))
}

func TestNewRedisStore_PingFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestLimiter_WithRedisStore(t *testing.T) {
	_, store := setupMiniRedis(t)
	l := New(store)
	cfg := Config{Window: time.Minute, MaxRequests: 2}

	var remaining []int
	for i := 0; i < 3; i++ {
		remaining = append(remaining, l.Check(request("/api/leads/b2b", "10.0.0.1"), cfg).Remaining)
	}
	assert.Equal(t, []int{1, 0, 0}, remaining)
}
