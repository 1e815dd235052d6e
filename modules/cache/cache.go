// Package cache keeps user profiles in Redis for cache-aside lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	domain "github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultPrefix namespaces profile keys.
	DefaultPrefix = "profile:"
	// DefaultTTL bounds how long a profile is served from Redis.
	DefaultTTL = 5 * time.Minute
)

// ProfileCache stores profiles as JSON under prefix+userID.
type ProfileCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits     atomic.Uint64
	misses   atomic.Uint64
	sets     atomic.Uint64
	failures atomic.Uint64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Sets    uint64  `json:"sets"`
	Errors  uint64  `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// New wraps an existing client.
func New(client *redis.Client, prefix string, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProfileCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Connect dials Redis at addr and checks it answers.
func Connect(ctx context.Context, addr string, ttl time.Duration) (*ProfileCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return New(client, DefaultPrefix, ttl), nil
}

// GetProfile returns the cached profile. A miss is ok == false with a nil error.
func (c *ProfileCache) GetProfile(ctx context.Context, userID string) (domain.Profile, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.misses.Add(1)
			return domain.Profile{}, false, nil
		}
		c.failures.Add(1)
		return domain.Profile{}, false, fmt.Errorf("cache get error: %w", err)
	}

	var profile domain.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		c.failures.Add(1)
		return domain.Profile{}, false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.hits.Add(1)
	return profile, true, nil
}

// SetProfile stores profile with the configured TTL.
func (c *ProfileCache) SetProfile(ctx context.Context, profile domain.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		c.failures.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+profile.ID, data, c.ttl).Err(); err != nil {
		c.failures.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}

	c.sets.Add(1)
	return nil
}

// Stats returns the current counters.
func (c *ProfileCache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Errors:  c.failures.Load(),
		HitRate: hitRate,
	}
}

// Ping checks if the Redis connection is healthy.
func (c *ProfileCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Name identifies the cache in health reports.
func (c *ProfileCache) Name() string {
	return "cache"
}

// Health pings Redis and reports the counters.
func (c *ProfileCache) Health(ctx context.Context) mono.HealthStatus {
	stats := c.Stats()
	details := map[string]any{
		"hits":     stats.Hits,
		"misses":   stats.Misses,
		"sets":     stats.Sets,
		"errors":   stats.Errors,
		"hit_rate": stats.HitRate,
	}

	if err := c.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
			Details: details,
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}

// Close closes the Redis client connection.
func (c *ProfileCache) Close() error {
	return c.client.Close()
}
