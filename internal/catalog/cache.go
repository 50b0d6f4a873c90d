package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"llm-playground/internal/models"
)

const catalogKey = "catalog:models"

// Cache stores the raw upstream catalog for a bounded time.
type Cache interface {
	Get(ctx context.Context) ([]models.RawModel, bool, error)
	Set(ctx context.Context, raw []models.RawModel) error
}

// MemoryCache keeps the catalog in process memory.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.RWMutex
	models    []models.RawModel
	expiresAt time.Time
}

// NewMemoryCache creates an in-process cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

// Get returns the cached catalog if it has not expired.
func (c *MemoryCache) Get(_ context.Context) ([]models.RawModel, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.models == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	return c.models, true, nil
}

// Set replaces the cached catalog and restarts the TTL.
func (c *MemoryCache) Set(_ context.Context, raw []models.RawModel) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.models = raw
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// RedisCache shares the catalog between gateway instances through Redis.
type RedisCache struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// NewRedisCache stores the catalog under prefix+"catalog:models".
func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		rdb: rdb,
		key: prefix + catalogKey,
		ttl: ttl,
	}
}

// Get returns the cached catalog; a missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context) ([]models.RawModel, bool, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached catalog: %w", err)
	}

	var raw []models.RawModel
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("decode cached catalog: %w", err)
	}
	return raw, true, nil
}

// Set writes the catalog with the configured expiry.
func (c *RedisCache) Set(ctx context.Context, raw []models.RawModel) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cached catalog: %w", err)
	}
	return nil
}
