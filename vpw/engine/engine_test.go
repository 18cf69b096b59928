package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/virtual-photowall/vpw/cache"
	"github.com/ZanzyTHEbar/virtual-photowall/vpw/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLoader struct {
	mu       sync.Mutex
	requests []string
}

func (r *recordingLoader) RequestBucketLoad(bucketID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, bucketID)
}

func (r *recordingLoader) requested() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests...)
}

type stubPages struct {
	more     bool
	requests int
}

func (p *stubPages) HasMore() bool { return p.more }
func (p *stubPages) RequestMore()  { p.requests++ }

func testSettings() layout.Settings {
	return layout.Settings{GalleryWidth: 5.5, ItemHeight: 0.5, Gap: 0.05}
}

func panoramas(n int, dateLabel string) []layout.PhotoRef {
	photos := make([]layout.PhotoRef, n)
	for i := range photos {
		photos[i] = layout.PhotoRef{ID: dateLabel + "-photo", AspectRatio: 2.5, DateLabel: dateLabel}
	}
	return photos
}

func TestEngine_LoadRequestsOnVisibilityTransition(t *testing.T) {
	store := cache.New()
	ldr := &recordingLoader{}
	manifest := []layout.BucketManifestEntry{
		{ID: "2024-12", Count: 50},
		{ID: "2023-01", Count: 1000},
	}
	e, err := New(manifest, testSettings(), store, WithLoader(ldr))
	require.NoError(t, err)

	// Deep enough that the first bucket is fully outside the window.
	e.SetScrollPosition(30)

	visible := e.Tick(16 * time.Millisecond)
	require.Len(t, visible, 1, "only the second bucket intersects the window")
	assert.Equal(t, "2023-01", visible[0].BucketID)
	assert.Equal(t, []string{"2023-01"}, ldr.requested(),
		"buckets fully outside the window never trigger a load request")

	// Still visible, still unloaded: no re-request on subsequent frames.
	e.Tick(16 * time.Millisecond)
	e.Tick(16 * time.Millisecond)
	assert.Equal(t, []string{"2023-01"}, ldr.requested(),
		"exactly one request per became-visible transition")
}

func TestEngine_AnchorStabilityAcrossRebuild(t *testing.T) {
	store := cache.New()
	manifest := []layout.BucketManifestEntry{
		{ID: "2024-12", Count: 50},
		{ID: "2023-01", Count: 1000},
	}
	e, err := New(manifest, testSettings(), store, WithLoader(&recordingLoader{}))
	require.NoError(t, err)

	e.SetScrollPosition(30)
	e.Tick(16 * time.Millisecond) // anchor pins inside 2023-01

	offsetBefore := entryOffset(t, e, "2023-01")
	within := e.ScrollPosition() - offsetBefore
	require.Positive(t, within)

	// The first bucket's load completes out of band; panoramas measure much
	// taller than the cold estimate, so every later offset shifts down.
	store.Put("2024-12", panoramas(50, "December 2024"))
	e.Tick(16 * time.Millisecond)

	offsetAfter := entryOffset(t, e, "2023-01")
	require.NotEqual(t, offsetBefore, offsetAfter, "measured height must move the anchored bucket")
	assert.InDelta(t, within, e.ScrollPosition()-offsetAfter, 1e-9,
		"anchored content's apparent position is invariant across estimate->measured transitions")
	assert.EqualValues(t, 1, e.Metrics().AnchorCorrections)
}

func TestEngine_ScrollToYear(t *testing.T) {
	store := cache.New()
	manifest := []layout.BucketManifestEntry{
		{ID: "2024-12", Count: 100},
		{ID: "2024-01", Count: 100},
		{ID: "2023-06", Count: 100},
	}
	e, err := New(manifest, testSettings(), store)
	require.NoError(t, err)

	t.Run("lands exactly at year offset plus eye level", func(t *testing.T) {
		require.NoError(t, e.ScrollToYear(2024))
		assert.Equal(t, e.YearOffsets()[2024]+e.tuning.EyeLevel, e.ScrollPosition())
		assert.Equal(t, entryOffset(t, e, "2024-01"), e.YearOffsets()[2024],
			"2024 resolves to its chronologically earliest bucket")
	})

	t.Run("unknown year errors", func(t *testing.T) {
		assert.Error(t, e.ScrollToYear(1999))
	})

	t.Run("jump target stays at eye level across the next rebuild", func(t *testing.T) {
		require.NoError(t, e.ScrollToYear(2023))
		// A load completion changes every offset before the jump target.
		store.Put("2024-12", panoramas(100, "December 2024"))
		e.Tick(16 * time.Millisecond)
		assert.InDelta(t, entryOffset(t, e, "2023-06")+e.tuning.EyeLevel, e.ScrollPosition(), 1e-9,
			"override anchor keeps the year bucket pinned through the rebuild")
	})
}

func TestEngine_InputClamping(t *testing.T) {
	store := cache.New()
	manifest := []layout.BucketManifestEntry{{ID: "2024-12", Count: 100}}
	e, err := New(manifest, testSettings(), store)
	require.NoError(t, err)

	total := e.TotalHeight()
	require.Positive(t, total)

	t.Run("wheel scales and clamps", func(t *testing.T) {
		e.SetScrollPosition(0)
		e.Wheel(100) // 100 * 0.002
		assert.InDelta(t, 0.2, e.ScrollPosition(), 1e-9)

		e.Wheel(-1e9)
		assert.Zero(t, e.ScrollPosition(), "scroll never goes negative")

		e.Wheel(1e9)
		assert.Equal(t, total, e.ScrollPosition(), "scroll never exceeds total height")
	})

	t.Run("key steps are fixed size", func(t *testing.T) {
		e.SetScrollPosition(1.0)
		e.PressKey(1)
		assert.InDelta(t, 1.0+e.tuning.KeyStep, e.ScrollPosition(), 1e-9)
		e.PressKey(-1)
		assert.InDelta(t, 1.0, e.ScrollPosition(), 1e-9)
		e.PressKey(0)
		assert.InDelta(t, 1.0, e.ScrollPosition(), 1e-9, "no direction, no motion")
	})

	t.Run("axis motion integrates over frames", func(t *testing.T) {
		e.SetScrollPosition(0)
		for range 30 {
			e.SampleAxis(1.0, 16*time.Millisecond)
		}
		forward := e.ScrollPosition()
		assert.Positive(t, forward, "sustained deflection must scroll")
		assert.LessOrEqual(t, forward, total)
	})
}

func TestEngine_FlatListMode(t *testing.T) {
	store := cache.New()
	manifest := []layout.BucketManifestEntry{{ID: "2024-12", Count: 10}}
	pages := &stubPages{more: true}
	e, err := New(manifest, testSettings(), store, WithPageSource(pages))
	require.NoError(t, err)

	photos := make([]layout.PhotoRef, 10)
	for i := range photos {
		photos[i] = layout.PhotoRef{ID: "result", AspectRatio: 1.0, DateLabel: "Results"}
	}

	t.Run("filtered results become one synthetic bucket", func(t *testing.T) {
		e.SetFilteredPhotos(photos)
		visible := e.Tick(16 * time.Millisecond)
		require.Len(t, visible, 1)
		assert.Equal(t, layout.FlatResultsID, visible[0].BucketID)
		assert.True(t, visible[0].Loaded)
		assert.Zero(t, e.ScrollPosition(), "entering flat mode resets the scroll position")
	})

	t.Run("requests more near the end, once per outstanding page", func(t *testing.T) {
		// The short result list ends well within the threshold.
		require.Less(t, e.TotalHeight()-e.ScrollPosition(), e.tuning.MoreThreshold)
		assert.Equal(t, 1, pages.requests, "first tick already requested a page")

		e.Tick(16 * time.Millisecond)
		e.Tick(16 * time.Millisecond)
		assert.Equal(t, 1, pages.requests, "no duplicate request while a fetch is in flight")

		e.AppendFilteredPhotos(photos)
		e.Tick(16 * time.Millisecond)
		assert.Equal(t, 2, pages.requests, "delivered page re-arms the trigger")
	})

	t.Run("exhausted source stops requesting", func(t *testing.T) {
		pages.more = false
		e.AppendFilteredPhotos(photos)
		e.Tick(16 * time.Millisecond)
		assert.Equal(t, 2, pages.requests)
	})

	t.Run("clearing the filter restores the bucketed timeline", func(t *testing.T) {
		e.ClearFilter()
		visible := e.Tick(16 * time.Millisecond)
		require.NotEmpty(t, visible)
		assert.Equal(t, "2024-12", visible[0].BucketID)
	})
}

func TestEngine_SettingsChangeKeepsAnchor(t *testing.T) {
	store := cache.New()
	manifest := []layout.BucketManifestEntry{
		{ID: "2024-12", Count: 50},
		{ID: "2023-01", Count: 1000},
	}
	e, err := New(manifest, testSettings(), store)
	require.NoError(t, err)

	e.SetScrollPosition(30)
	e.Tick(16 * time.Millisecond)
	within := e.ScrollPosition() - entryOffset(t, e, "2023-01")

	// Widening the wall shrinks every bucket; the viewed bucket must not jump.
	e.SetSettings(layout.Settings{GalleryWidth: 8.0, ItemHeight: 0.5, Gap: 0.05})
	assert.InDelta(t, within, e.ScrollPosition()-entryOffset(t, e, "2023-01"), 1e-9)
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(nil, testSettings(), nil)
	assert.Error(t, err)
}

func entryOffset(t *testing.T, e *Engine, bucketID string) float64 {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	offset, ok := e.vm.OffsetOf(bucketID)
	require.True(t, ok, "bucket %s must exist in the virtual map", bucketID)
	return offset
}
