package cache

import (
	"sync"

	"github.com/ZanzyTHEbar/virtual-photowall/vpw/layout"
)

// Store holds loaded bucket contents behind a monotonic revision counter.
// Bucket-load completions land here out of band; the engine observes the
// revision at every tick and rebuilds its virtual map when it changed, so a
// pure builder can key off (manifest, revision, settings) instead of
// reference-diffing nested objects.
type Store struct {
	mu       sync.RWMutex
	buckets  map[string][]layout.PhotoRef
	revision uint64
}

// New creates an empty bucket store at revision 0.
func New() *Store {
	return &Store{buckets: make(map[string][]layout.PhotoRef)}
}

// Put stores the fetched contents of a bucket and bumps the revision.
// Overwriting an existing bucket is allowed (re-fetches are idempotent).
// Photo slices are owned by the caller and observed read-only from here on.
func (s *Store) Put(bucketID string, photos []layout.PhotoRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucketID] = photos
	s.revision++
}

// Get returns the contents of a loaded bucket.
func (s *Store) Get(bucketID string) ([]layout.PhotoRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	photos, ok := s.buckets[bucketID]
	return photos, ok
}

// Has reports whether the bucket has been loaded.
func (s *Store) Has(bucketID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.buckets[bucketID]
	return ok
}

// Len returns the number of loaded buckets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets)
}

// Revision returns the current revision counter.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot returns a consistent view of the loaded buckets plus the revision
// it was taken at. The returned map is a fresh copy; the photo slices are
// shared and must be treated as immutable.
func (s *Store) Snapshot() (map[string][]layout.PhotoRef, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]layout.PhotoRef, len(s.buckets))
	for id, photos := range s.buckets {
		out[id] = photos
	}
	return out, s.revision
}
