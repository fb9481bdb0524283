// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisKeyPrefix = "vidserve:probe:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore is a Redis-backed Store. Values are stored as integer milliseconds.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to redis probe cache")

	return newRedisStore(client, logger), nil
}

func newRedisStore(client *redis.Client, logger zerolog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (time.Duration, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		s.stats.misses.Add(1)
		return 0, false, nil
	}
	if err != nil {
		s.stats.misses.Add(1)
		return 0, false, fmt.Errorf("redis get: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding malformed probe cache value")
		s.stats.misses.Add(1)
		return 0, false, nil
	}
	s.stats.hits.Add(1)
	return time.Duration(ms) * time.Millisecond, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, d time.Duration, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, strconv.FormatInt(d.Milliseconds(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	s.stats.sets.Add(1)
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Stats implements Store. CurrentSize is not tracked for Redis.
func (s *RedisStore) Stats() Stats {
	return Stats{
		Hits:   s.stats.hits.Load(),
		Misses: s.stats.misses.Load(),
		Sets:   s.stats.sets.Load(),
	}
}

// Close closes the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// HealthCheck pings Redis.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
