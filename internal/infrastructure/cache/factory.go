package cache

import (
	"github.com/redis/go-redis/v9"
	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis store when client is set and an
// in-memory store otherwise
func NewIdempotencyStore(client redis.UniversalClient, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client != nil {
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, "")
	}
	logger.Warn("Redis disabled, using in-memory idempotency store. " +
		"Checkout retries are only deduplicated within one instance.")
	return NewInMemoryIdempotencyStore()
}

// NewStatsCache returns a Redis cache when client is set and an in-memory
// cache otherwise
func NewStatsCache(client redis.UniversalClient) StatsCache {
	if client != nil {
		return NewRedisStatsCache(client)
	}
	return NewInMemoryStatsCache()
}
