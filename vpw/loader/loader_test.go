package loader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ZanzyTHEbar/virtual-photowall/vpw/cache"
	"github.com/ZanzyTHEbar/virtual-photowall/vpw/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_FetchLandsInStore(t *testing.T) {
	store := cache.New()
	fetch := func(_ context.Context, bucketID string) ([]layout.PhotoRef, error) {
		return []layout.PhotoRef{{ID: bucketID + "/1", AspectRatio: 1.5, DateLabel: "December 2024"}}, nil
	}

	l := New(context.Background(), store, fetch, 2)
	l.RequestBucketLoad("2024-12")
	require.NoError(t, l.Wait())

	photos, ok := store.Get("2024-12")
	require.True(t, ok, "completed fetch must surface through the store")
	assert.Len(t, photos, 1)
	assert.EqualValues(t, 1, store.Revision())
}

func TestLoader_DeduplicatesRequests(t *testing.T) {
	store := cache.New()
	var fetches atomic.Int64
	release := make(chan struct{})
	fetch := func(_ context.Context, bucketID string) ([]layout.PhotoRef, error) {
		fetches.Add(1)
		<-release
		return nil, nil
	}

	l := New(context.Background(), store, fetch, 4)
	l.RequestBucketLoad("2024-12")
	l.RequestBucketLoad("2024-12")
	l.RequestBucketLoad("2024-12")
	close(release)
	require.NoError(t, l.Wait())

	assert.EqualValues(t, 1, fetches.Load(), "in-flight requests for the same bucket are no-ops")
}

func TestLoader_AlreadyLoadedIsNoop(t *testing.T) {
	store := cache.New()
	store.Put("2024-12", nil)

	var fetches atomic.Int64
	fetch := func(_ context.Context, bucketID string) ([]layout.PhotoRef, error) {
		fetches.Add(1)
		return nil, nil
	}

	l := New(context.Background(), store, fetch, 1)
	l.RequestBucketLoad("2024-12")
	require.NoError(t, l.Wait())
	assert.Zero(t, fetches.Load())
}

func TestLoader_FailedFetchStaysUnloaded(t *testing.T) {
	store := cache.New()
	fetch := func(_ context.Context, bucketID string) ([]layout.PhotoRef, error) {
		return nil, fmt.Errorf("upstream unavailable")
	}

	l := New(context.Background(), store, fetch, 1)
	l.RequestBucketLoad("2024-12")
	require.NoError(t, l.Wait(), "fetch errors are logged, not propagated")

	assert.False(t, store.Has("2024-12"))
	assert.Zero(t, l.InFlight())
}

func TestLoader_ConcurrentDistinctBuckets(t *testing.T) {
	store := cache.New()
	var mu sync.Mutex
	seen := map[string]bool{}
	fetch := func(_ context.Context, bucketID string) ([]layout.PhotoRef, error) {
		mu.Lock()
		seen[bucketID] = true
		mu.Unlock()
		return []layout.PhotoRef{}, nil
	}

	l := New(context.Background(), store, fetch, 3)
	for month := 1; month <= 9; month++ {
		l.RequestBucketLoad(fmt.Sprintf("2024-0%d", month))
	}
	require.NoError(t, l.Wait())

	assert.Len(t, seen, 9)
	assert.Equal(t, 9, store.Len())
}
