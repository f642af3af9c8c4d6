package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"eventhub/internal/domain"
)

const (
	keyPrefix  = "eventhub:events:"
	versionKey = keyPrefix + "version"
)

// redisEventListCache stores listing pages under a generation number.
// Invalidate bumps the generation so stale pages are never read again and
// simply expire with their TTL.
type redisEventListCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisEventListCache returns a domain.EventListCache backed by Redis.
func NewRedisEventListCache(client redis.Cmdable, ttl time.Duration) domain.EventListCache {
	return &redisEventListCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and returns a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Get returns the page stored for key under the current generation, or nil
// on a miss, together with that generation.
func (c *redisEventListCache) Get(ctx context.Context, key string) (*domain.EventPage, int64, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, err
	}
	raw, err := c.client.Get(ctx, pageKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, nil
	}
	if err != nil {
		return nil, gen, fmt.Errorf("redis get: %w", err)
	}
	var page domain.EventPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, gen, fmt.Errorf("decode cached page: %w", err)
	}
	return &page, gen, nil
}

// Set stores page under gen, the generation its caller saw on Get. When an
// Invalidate has run since, the page lands under a retired generation that
// is never read again.
func (c *redisEventListCache) Set(ctx context.Context, gen int64, key string, page domain.EventPage) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}
	if err := c.client.Set(ctx, pageKey(gen, key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *redisEventListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	return nil
}

func (c *redisEventListCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

func pageKey(gen int64, key string) string {
	return fmt.Sprintf("%sv%d:%s", keyPrefix, gen, key)
}

// noopEventListCache never stores anything. Used when Redis is not configured.
type noopEventListCache struct{}

// NewNoopEventListCache returns a cache that always misses.
func NewNoopEventListCache() domain.EventListCache {
	return noopEventListCache{}
}

func (noopEventListCache) Get(context.Context, string) (*domain.EventPage, int64, error) {
	return nil, 0, nil
}

func (noopEventListCache) Set(context.Context, int64, string, domain.EventPage) error { return nil }

func (noopEventListCache) Invalidate(context.Context) error { return nil }
