// Package cache stores JSON-encoded read models in Redis.
// Entries live under a namespace whose version counter is bumped to invalidate the whole namespace at once.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"paperapi/internal/config"
)

const keyPrefix = "paperapi"

// Cache is a namespaced JSON cache.
type Cache interface {
	// GetJSON decodes a cached value into dst. It reports false on a miss.
	GetJSON(ctx context.Context, ns, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, ns, key string, v any) error
	// Invalidate drops every entry in the namespace.
	Invalidate(ctx context.Context, ns string) error
}

// RedisCache implements Cache on go-redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var (
	_ Cache = (*RedisCache)(nil)
	_ Cache = Noop{}
)

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	ttl := time.Duration(cfg.TTLSec) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

func versionKey(ns string) string {
	return fmt.Sprintf("%s:%s:version", keyPrefix, ns)
}

func (c *RedisCache) entryKey(ctx context.Context, ns, key string) (string, error) {
	ver, err := c.rdb.Get(ctx, versionKey(ns)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:%s:v%d:%s", keyPrefix, ns, ver, key), nil
}

func (c *RedisCache) GetJSON(ctx context.Context, ns, key string, dst any) (bool, error) {
	k, err := c.entryKey(ctx, ns, key)
	if err != nil {
		return false, err
	}
	raw, err := c.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", k, err)
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, ns, key string, v any) error {
	k, err := c.entryKey(ctx, ns, key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, k, raw, c.ttl).Err()
}

// Invalidate bumps the namespace version; stale entries expire through their TTL.
func (c *RedisCache) Invalidate(ctx context.Context, ns string) error {
	return c.rdb.Incr(ctx, versionKey(ns)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// Noop never stores anything. It stands in when Redis is not configured.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, string, any) (bool, error) { return false, nil }
func (Noop) SetJSON(context.Context, string, string, any) error         { return nil }
func (Noop) Invalidate(context.Context, string) error                   { return nil }
