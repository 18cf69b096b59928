package loader

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ZanzyTHEbar/virtual-photowall/vpw/cache"
	"github.com/ZanzyTHEbar/virtual-photowall/vpw/layout"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// FetchFunc retrieves the contents of one bucket from wherever they live
// (photo service, local library scan). It is called from worker goroutines.
type FetchFunc func(ctx context.Context, bucketID string) ([]layout.PhotoRef, error)

// Loader fetches bucket contents asynchronously and writes them into the
// shared bucket store, where the engine picks them up on its next tick.
// Requests are fire-and-forget and deduplicated: repeat requests for an id
// that is already loaded or in flight are no-ops. Failed fetches are logged
// and forgotten - retry policy belongs to the caller, not here.
type Loader struct {
	mu       sync.Mutex
	inflight map[string]string // bucket id -> request id
	fetch    FetchFunc
	store    *cache.Store
	pool     *pool.ContextPool
	logger   *slog.Logger
}

// Option allows for customization of the Loader.
type Option func(*Loader)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a loader backed by a bounded worker pool. Workers are shared
// across all bucket requests; ctx cancellation stops in-flight fetches.
func New(ctx context.Context, store *cache.Store, fetch FetchFunc, workers int, opts ...Option) *Loader {
	if workers < 1 {
		workers = 1
	}
	l := &Loader{
		inflight: make(map[string]string),
		fetch:    fetch,
		store:    store,
		pool:     pool.New().WithMaxGoroutines(workers).WithContext(ctx),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RequestBucketLoad schedules a fetch for the given bucket. Safe to call
// multiple times for the same id. A bucket that scrolled out of view before
// its fetch completed is still stored for future use; the engine never
// cancels individual loads.
func (l *Loader) RequestBucketLoad(bucketID string) {
	l.mu.Lock()
	if _, busy := l.inflight[bucketID]; busy || l.store.Has(bucketID) {
		l.mu.Unlock()
		return
	}
	requestID := uuid.NewString()
	l.inflight[bucketID] = requestID
	l.mu.Unlock()

	l.pool.Go(func(ctx context.Context) error {
		defer func() {
			l.mu.Lock()
			delete(l.inflight, bucketID)
			l.mu.Unlock()
		}()

		photos, err := l.fetch(ctx, bucketID)
		if err != nil {
			l.logger.Error("bucket fetch failed",
				"bucket", bucketID,
				"request", requestID,
				"error", err)
			return nil // a failed bucket stays unloaded; not the pool's problem
		}
		l.store.Put(bucketID, photos)
		l.logger.Debug("bucket loaded",
			"bucket", bucketID,
			"request", requestID,
			"photos", len(photos))
		return nil
	})
}

// InFlight returns the number of outstanding fetches.
func (l *Loader) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inflight)
}

// Wait blocks until every scheduled fetch has finished. Mainly for tests and
// shutdown; the engine itself never blocks on loads.
func (l *Loader) Wait() error {
	return l.pool.Wait()
}
