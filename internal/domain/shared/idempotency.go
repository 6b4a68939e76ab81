package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already handled.
// It serves event redeliveries (key = event ID) and client retries of
// checkout (key = Idempotency-Key header, result = order number).
type IdempotencyStore interface {
	// MarkProcessed claims a key with a TTL.
	// Returns true if the key was newly claimed, false if it already existed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// SetResult attaches a result to a claimed key
	SetResult(ctx context.Context, key, result string, ttl time.Duration) error

	// GetResult returns the result of a key, or "" while the first request is still running
	GetResult(ctx context.Context, key string) (string, error)

	// Release forgets a key so the request can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key is remembered
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
