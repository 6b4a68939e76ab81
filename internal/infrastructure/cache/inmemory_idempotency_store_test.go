package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(now *time.Time) *InMemoryIdempotencyStore {
	store := NewInMemoryIdempotencyStore()
	store.now = func() time.Time { return *now }
	return store
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(&now)
	defer store.Close()
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "checkout:r1:k1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "checkout:r1:k1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew, "second claim loses")

	now = now.Add(2 * time.Hour)
	isNew, err = store.MarkProcessed(ctx, "checkout:r1:k1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "expired keys can be claimed again")
}

func TestInMemoryIdempotencyStore_Results(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(&now)
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "k", time.Hour)
	require.NoError(t, err)

	result, err := store.GetResult(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, result, "claimed but unfinished")

	require.NoError(t, store.SetResult(ctx, "k", "PED-2026-00001", time.Hour))
	result, err = store.GetResult(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "PED-2026-00001", result)

	processed, err := store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.True(t, processed)

	require.NoError(t, store.Release(ctx, "k"))
	processed, err = store.IsProcessed(ctx, "k")
	require.NoError(t, err)
	assert.False(t, processed)

	isNew, err := store.MarkProcessed(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "released keys can be retried")
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newTestStore(&now)
	defer store.Close()
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short", time.Minute)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	now = now.Add(10 * time.Minute)
	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, err := store.MarkProcessed(ctx, "same-key", time.Hour)
			assert.NoError(t, err)
			_, _ = store.IsProcessed(ctx, fmt.Sprintf("other-%d", i))
			if isNew {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
