package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProductNamesKey is the Redis key holding the cached product filter options
const ProductNamesKey = "gym:report:product-names"

// ProductNameCache caches the distinct product names shown as report filters
type ProductNameCache interface {
	// Get returns the cached names; ok is false on a miss
	Get(ctx context.Context) (names []string, ok bool, err error)
	Set(ctx context.Context, names []string) error
	Invalidate(ctx context.Context) error
}

// RedisProductNameCache stores the names as a JSON array with a TTL
type RedisProductNameCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisProductNameCache creates a Redis-backed product name cache
func NewRedisProductNameCache(client redis.UniversalClient, ttl time.Duration) *RedisProductNameCache {
	return &RedisProductNameCache{client: client, ttl: ttl}
}

var _ ProductNameCache = (*RedisProductNameCache)(nil)

// Get reads the cached names
func (c *RedisProductNameCache) Get(ctx context.Context) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, ProductNamesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read product names: %w", err)
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		// a corrupt entry is treated as a miss and overwritten on the next Set
		return nil, false, nil
	}
	return names, true, nil
}

// Set stores names for the configured TTL
func (c *RedisProductNameCache) Set(ctx context.Context, names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to encode product names: %w", err)
	}
	if err := c.client.Set(ctx, ProductNamesKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product names: %w", err)
	}
	return nil
}

// Invalidate drops the cached names
func (c *RedisProductNameCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, ProductNamesKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate product names: %w", err)
	}
	return nil
}

// InMemoryProductNameCache is the single-instance fallback
type InMemoryProductNameCache struct {
	mu      sync.RWMutex
	names   []string
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryProductNameCache creates an empty in-memory cache
func NewInMemoryProductNameCache(ttl time.Duration) *InMemoryProductNameCache {
	return &InMemoryProductNameCache{ttl: ttl, now: time.Now}
}

var _ ProductNameCache = (*InMemoryProductNameCache)(nil)

// Get returns a copy of the cached names while they are fresh
func (c *InMemoryProductNameCache) Get(_ context.Context) ([]string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.names == nil || !c.now().Before(c.expires) {
		return nil, false, nil
	}
	return slices.Clone(c.names), true, nil
}

// Set stores a copy of names
func (c *InMemoryProductNameCache) Set(_ context.Context, names []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = slices.Clone(names)
	if c.names == nil {
		c.names = []string{}
	}
	c.expires = c.now().Add(c.ttl)
	return nil
}

// Invalidate drops the cached names
func (c *InMemoryProductNameCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = nil
	return nil
}
