// Package cache provides the server-side response cache used by read-heavy
// catalog endpoints. Redis is used when enabled, otherwise an in-process map.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/autocare/platform/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache stores JSON encoded values under string keys
type Cache interface {
	// Get unmarshals the value into dest and reports whether the key was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// RedisCache implements Cache on Redis
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache wraps a Redis client. Every key is namespaced by prefix.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get reads and decodes a key
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get error: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	return true, nil
}

// Set encodes and stores a value
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// Delete removes keys
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// DeletePrefix scans and deletes matching keys in batches
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.prefix+prefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("cache delete error: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan error: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("cache delete error: %w", err)
		}
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)

// Loader implements cache-aside reads. Concurrent misses on the same key
// share a single load.
type Loader struct {
	cache  Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewLoader creates a cache-aside loader
func NewLoader(c Cache, ttl time.Duration, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cache: c, ttl: ttl, logger: logger}
}

// Load fills dest from the cache or from load. A cache failure degrades to a
// direct load; only load errors are returned.
func (l *Loader) Load(ctx context.Context, key string, dest any, load func(ctx context.Context) (any, error)) (hit bool, err error) {
	found, err := l.cache.Get(ctx, key, dest)
	if err != nil {
		l.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return true, nil
	}

	val, err, _ := l.group.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := l.cache.Set(ctx, key, v, l.ttl); err != nil {
			l.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return json.Marshal(v)
	})
	if err != nil {
		return false, err
	}
	return false, json.Unmarshal(val.([]byte), dest)
}

// Invalidate removes keys and every key under the given prefixes
func (l *Loader) Invalidate(ctx context.Context, keys []string, prefixes ...string) {
	if err := l.cache.Delete(ctx, keys...); err != nil {
		l.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
	for _, p := range prefixes {
		if err := l.cache.DeletePrefix(ctx, p); err != nil {
			l.logger.Warn("cache invalidation failed", zap.String("prefix", p), zap.Error(err))
		}
	}
}
