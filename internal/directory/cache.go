package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/movementhq/booking-platform/pkg/logging"
	"github.com/redis/go-redis/v9"
)

const cacheKey = "directory:professionals"

// Lister is the slice of Repository the cache needs.
type Lister interface {
	List(ctx context.Context) ([]*Professional, error)
}

// Cache holds the current directory snapshot in redis. It replaces the old
// process-wide mutable list: callers always receive a fresh slice, and Refresh
// returns the new snapshot instead of mutating shared state.
type Cache struct {
	redis  *redis.Client
	source Lister
	ttl    time.Duration
	logger *logging.Logger
}

// NewCache creates a snapshot cache. A zero TTL keeps the snapshot until the
// next explicit Refresh.
func NewCache(redisClient *redis.Client, source Lister, ttl time.Duration, logger *logging.Logger) *Cache {
	if redisClient == nil {
		panic("directory: redis client cannot be nil")
	}
	if source == nil {
		panic("directory: snapshot source cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{redis: redisClient, source: source, ttl: ttl, logger: logger}
}

// Snapshot returns the cached directory, loading from the store on a miss.
func (c *Cache) Snapshot(ctx context.Context) ([]*Professional, error) {
	data, err := c.redis.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		return c.Refresh(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("directory: cache read: %w", err)
	}

	var snapshot []*Professional
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("directory: cache decode: %w", err)
	}
	return snapshot, nil
}

// Refresh reloads the directory from the store, replaces the cached snapshot,
// and returns the new snapshot.
func (c *Cache) Refresh(ctx context.Context) ([]*Professional, error) {
	snapshot, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("directory: cache encode: %w", err)
	}
	if err := c.redis.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		// Serving the fresh snapshot matters more than caching it.
		c.logger.Warn("directory cache write failed", "error", err)
	}

	c.logger.Info("directory snapshot refreshed", "professionals", len(snapshot))
	return snapshot, nil
}

// Lookup finds one professional in the snapshot by slug.
func (c *Cache) Lookup(ctx context.Context, slug string) (*Professional, error) {
	snapshot, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range snapshot {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// Invalidate drops the cached snapshot so the next read reloads from the store.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.redis.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("directory: cache invalidate: %w", err)
	}
	return nil
}
