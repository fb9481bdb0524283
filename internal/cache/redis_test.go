// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := newRedisStore(client, zerolog.Nop())
	t.Cleanup(func() { _ = s.Close() })
	return mr, s
}

func TestRedisStore_SetGet(t *testing.T) {
	mr, s := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a.mp4", 12500*time.Millisecond, time.Hour))

	raw, err := mr.Get(redisKeyPrefix + "a.mp4")
	require.NoError(t, err)
	assert.Equal(t, "12500", raw)

	d, ok, err := s.Get(ctx, "a.mp4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12500*time.Millisecond, d)

	st := s.Stats()
	assert.Equal(t, int64(1), st.Sets)
	assert.Equal(t, int64(1), st.Hits)
}

func TestRedisStore_Miss(t *testing.T) {
	_, s := setupMiniRedis(t)

	_, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), s.Stats().Misses)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, s := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", time.Second, 100*time.Millisecond))
	mr.FastForward(200 * time.Millisecond)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_MalformedValueIsMiss(t *testing.T) {
	mr, s := setupMiniRedis(t)
	require.NoError(t, mr.Set(redisKeyPrefix+"k", "garbage"))

	_, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Delete(t *testing.T) {
	mr, s := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", time.Second, time.Hour))
	require.NoError(t, s.Delete(ctx, "k"))
	assert.False(t, mr.Exists(redisKeyPrefix+"k"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr, s := setupMiniRedis(t)
	mr.Close()

	_, ok, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, s.HealthCheck(context.Background()))
}

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.HealthCheck(context.Background()))
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr}, zerolog.Nop())
	require.Error(t, err)
}
