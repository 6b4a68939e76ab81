package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/restaurant/backend/internal/application/dashboard"
)

const statsPrefix = "dashboard:stats:"

// StatsCache is the dashboard figure cache
type StatsCache = dashboard.StatsCache

func statsKey(restaurantID uuid.UUID) string {
	return statsPrefix + restaurantID.String()
}

// RedisStatsCache stores dashboard figures as JSON in Redis
type RedisStatsCache struct {
	client redis.UniversalClient
}

// NewRedisStatsCache creates a new RedisStatsCache
func NewRedisStatsCache(client redis.UniversalClient) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

// Get returns nil on a miss
func (c *RedisStatsCache) Get(ctx context.Context, restaurantID uuid.UUID) (*dashboard.StatsResponse, error) {
	data, err := c.client.Get(ctx, statsKey(restaurantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard cache: %w", err)
	}
	var stats dashboard.StatsResponse
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard cache: %w", err)
	}
	return &stats, nil
}

// Set stores stats for ttl
func (c *RedisStatsCache) Set(ctx context.Context, restaurantID uuid.UUID, stats *dashboard.StatsResponse, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard cache: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(restaurantID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write dashboard cache: %w", err)
	}
	return nil
}

// Invalidate deletes the cached figures
func (c *RedisStatsCache) Invalidate(ctx context.Context, restaurantID uuid.UUID) error {
	if err := c.client.Del(ctx, statsKey(restaurantID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
	}
	return nil
}

type statsEntry struct {
	stats     dashboard.StatsResponse
	expiresAt time.Time
}

// InMemoryStatsCache keeps dashboard figures in process
type InMemoryStatsCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]statsEntry
	now     func() time.Time
}

// NewInMemoryStatsCache creates an empty cache
func NewInMemoryStatsCache() *InMemoryStatsCache {
	return &InMemoryStatsCache{
		entries: make(map[uuid.UUID]statsEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached figures, or nil on a miss
func (c *InMemoryStatsCache) Get(_ context.Context, restaurantID uuid.UUID) (*dashboard.StatsResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[restaurantID]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, nil
	}
	stats := e.stats
	return &stats, nil
}

// Set stores a copy of stats for ttl
func (c *InMemoryStatsCache) Set(_ context.Context, restaurantID uuid.UUID, stats *dashboard.StatsResponse, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[restaurantID] = statsEntry{stats: *stats, expiresAt: c.now().Add(ttl)}
	return nil
}

// Invalidate drops the cached figures
func (c *InMemoryStatsCache) Invalidate(_ context.Context, restaurantID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, restaurantID)
	return nil
}

var (
	_ dashboard.StatsCache = (*RedisStatsCache)(nil)
	_ dashboard.StatsCache = (*InMemoryStatsCache)(nil)
)
