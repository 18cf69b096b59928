package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/virtual-photowall/vpw/cache"
	"github.com/ZanzyTHEbar/virtual-photowall/vpw/layout"

	assert "github.com/ZanzyTHEbar/assert-lib"
)

// Engine is the virtualized timeline layout and scroll-anchoring engine. It
// maintains the virtual map from time buckets to vertical offsets, decides
// which buckets are visible and must be fetched, reconciles the scroll
// position when estimated heights are replaced by measured ones, and supports
// direct navigation to a calendar year.
//
// The engine is frame-driven: call Tick once per render frame. Bucket-load
// completions arrive out of band through the shared bucket store; the engine
// observes the store's revision at the next tick and rebuilds, so every tick
// works against a consistent snapshot of (manifest, cache, settings, scroll).
type Engine struct {
	mu sync.Mutex

	logger *slog.Logger
	assert *assert.AssertHandler
	tuning Tuning

	manifest []layout.BucketManifestEntry
	settings layout.Settings
	store    *cache.Store
	loader   BucketLoader
	pages    PageSource

	vm           *layout.VirtualMap
	years        *layout.YearIndex
	anchor       scrollAnchor
	vis          *visibilityTracker
	axis         axisState
	scroll       float64
	lastRevision uint64

	flatMode     bool
	flatPhotos   []layout.PhotoRef
	moreInFlight bool

	metrics metricsCollector
}

// New creates a timeline engine over the given manifest (newest-first,
// immutable for the session) and bucket store, and builds the initial virtual
// map from whatever the store already holds.
func New(manifest []layout.BucketManifestEntry, settings layout.Settings, store *cache.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("engine requires a bucket store")
	}

	e := &Engine{
		logger:   slog.Default(),
		assert:   assert.NewAssertHandler(),
		tuning:   DefaultTuning(),
		manifest: manifest,
		settings: settings,
		store:    store,
		vis:      newVisibilityTracker(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.rebuildLocked()
	e.logger.Info("timeline engine ready",
		"buckets", len(manifest),
		"totalHeight", e.vm.TotalHeight)
	return e, nil
}

// Tick advances the engine by one render frame: it folds any bucket-load
// completions into a fresh virtual map, scans visibility, issues load
// requests for entries that just came into view, updates the scroll anchor,
// and (in flat-list mode) requests more pages near the end. The returned
// entries are resolved to screen space for the renderer.
func (e *Engine) Tick(dt time.Duration) []VisibleEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.metrics.tick()
	e.maybeRebuildLocked()

	visible, newly := e.vis.scan(e.vm, e.scroll, e.tuning.LookBehind, e.tuning.LookAhead)

	if e.loader != nil && !e.flatMode {
		requested := 0
		for _, idx := range newly {
			entry := e.vm.Entries[idx]
			if entry.Loaded {
				continue
			}
			e.loader.RequestBucketLoad(entry.BucketID)
			requested++
		}
		if requested > 0 {
			e.metrics.loadRequests(requested)
			e.logger.Debug("bucket loads requested", "count", requested)
		}
	}

	if len(visible) > 0 {
		e.anchor.observe(visible[0].VirtualMapEntry, e.scroll)
	}

	e.maybeRequestMoreLocked()
	return visible
}

// Wheel applies a discrete wheel event. Positive delta scrolls forward,
// deeper into the timeline.
func (e *Engine) Wheel(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scroll = clampScroll(e.scroll+wheelDelta(delta, e.tuning), e.vm.TotalHeight)
}

// PressKey applies a discrete key press; direction follows the same signed
// convention as Wheel.
func (e *Engine) PressKey(direction int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scroll = clampScroll(e.scroll+keyDelta(direction, e.tuning), e.vm.TotalHeight)
}

// SampleAxis consumes one per-frame controller-axis reading in [-1, 1].
// Motion is smoothed, accelerated, frame-time scaled, and accumulated below
// the commit threshold.
func (e *Engine) SampleAxis(raw float64, dt time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if delta := e.axis.sample(raw, dt, e.tuning); delta != 0 {
		e.scroll = clampScroll(e.scroll+delta, e.vm.TotalHeight)
	}
}

// ScrollToYear jumps to the chronologically earliest bucket of the given
// year, placing it at eye level, and force-sets the anchor so the next
// tracking update does not fight the jump.
func (e *Engine) ScrollToYear(year int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	offset, ok := e.years.Offset(year)
	if !ok {
		return fmt.Errorf("no buckets for year %d", year)
	}
	entryID, _ := e.years.EntryID(year)

	e.scroll = clampScroll(offset+e.tuning.EyeLevel, e.vm.TotalHeight)
	e.anchor.override(entryID, e.tuning.EyeLevel)
	e.axis.reset()

	e.logger.Debug("scrolled to year", "year", year, "bucket", entryID, "scroll", e.scroll)
	return nil
}

// YearOffsets returns the year -> offset mapping for scrubber tick rendering.
func (e *Engine) YearOffsets() map[int]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.years.Offsets()
}

// Years returns all indexed years, newest first.
func (e *Engine) Years() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.years.Years()
}

// SetScrollPosition jumps directly to the given scroll position, clamped into
// [0, totalHeight]. Used for session restore; regular scrolling goes through
// the input paths.
func (e *Engine) SetScrollPosition(pos float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scroll = clampScroll(pos, e.vm.TotalHeight)
}

// ScrollPosition returns the current scroll position.
func (e *Engine) ScrollPosition() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scroll
}

// TotalHeight returns the full scroll-space height of the current map.
func (e *Engine) TotalHeight() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vm.TotalHeight
}

// SetSettings replaces the wall geometry and rebuilds. The anchor correction
// keeps the currently viewed bucket in place across the re-measure.
func (e *Engine) SetSettings(s layout.Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
	e.rebuildLocked()
}

// SetFilteredPhotos switches the engine into flat-list mode, showing a
// filtered, non-bucketed result set as a single synthetic bucket.
func (e *Engine) SetFilteredPhotos(photos []layout.PhotoRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flatMode = true
	e.flatPhotos = photos
	e.moreInFlight = false
	e.scroll = 0
	e.anchor = scrollAnchor{}
	e.vis.reset()
	e.axis.reset()
	e.rebuildLocked()
}

// AppendFilteredPhotos extends the flat-list result set with another fetched
// page, preserving the scroll position.
func (e *Engine) AppendFilteredPhotos(photos []layout.PhotoRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.flatMode {
		return
	}
	e.flatPhotos = append(e.flatPhotos, photos...)
	e.moreInFlight = false
	e.rebuildLocked()
}

// ClearFilter leaves flat-list mode and returns to the bucketed timeline.
func (e *Engine) ClearFilter() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.flatMode {
		return
	}
	e.flatMode = false
	e.flatPhotos = nil
	e.moreInFlight = false
	e.scroll = 0
	e.anchor = scrollAnchor{}
	e.vis.reset()
	e.axis.reset()
	e.rebuildLocked()
}

// Metrics returns a copy of the engine's activity counters.
func (e *Engine) Metrics() EngineMetrics {
	return e.metrics.snapshot()
}

// maybeRebuildLocked rebuilds the virtual map when the bucket store has a new
// revision. Flat-list maps only change through explicit photo updates, which
// rebuild synchronously.
func (e *Engine) maybeRebuildLocked() {
	if e.flatMode {
		return
	}
	if e.store.Revision() == e.lastRevision && e.vm != nil {
		return
	}
	e.rebuildLocked()
}

// rebuildLocked builds a fresh virtual map from a consistent snapshot of the
// current inputs, applies the anchor correction against the previous map, and
// re-clamps the scroll position. This is the only path that mutates the
// scroll position without direct user input, and the correction fires at most
// once per rebuild.
func (e *Engine) rebuildLocked() {
	var vm *layout.VirtualMap
	if e.flatMode {
		vm = layout.BuildFlatMap(e.flatPhotos, e.settings)
	} else {
		snapshot, revision := e.store.Snapshot()
		vm = layout.BuildVirtualMap(e.manifest, snapshot, e.settings)
		e.lastRevision = revision
	}
	e.assert.Assert(context.Background(), vm.TotalHeight >= 0, "virtual map height must be non-negative")

	old := e.vm
	e.vm = vm
	e.years = layout.BuildYearIndex(vm)

	if old != nil {
		if corrected, ok := e.anchor.correct(old, vm, e.scroll, e.tuning.AnchorEpsilon); ok {
			e.metrics.anchorCorrection()
			e.logger.Debug("anchor corrected",
				"bucket", e.anchor.bucketID,
				"delta", corrected-e.scroll)
			e.scroll = corrected
		}
	}
	e.scroll = clampScroll(e.scroll, vm.TotalHeight)
	e.metrics.rebuild()
}

// maybeRequestMoreLocked asks the page source for another page when the
// scroll position nears the end of the flat-list results, more pages exist,
// and no fetch is already in flight.
func (e *Engine) maybeRequestMoreLocked() {
	if !e.flatMode || e.pages == nil || e.moreInFlight {
		return
	}
	if !e.pages.HasMore() {
		return
	}
	if e.vm.TotalHeight-e.scroll >= e.tuning.MoreThreshold {
		return
	}
	e.moreInFlight = true
	e.metrics.moreRequest()
	e.pages.RequestMore()
	e.logger.Debug("requested more results", "scroll", e.scroll, "totalHeight", e.vm.TotalHeight)
}
