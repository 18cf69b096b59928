package engine

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/ZanzyTHEbar/virtual-photowall/vpw/layout"
)

// VisibleEntry is a virtual-map entry resolved to screen space: Top is the
// entry's leading edge relative to the camera (positive = scrolled past),
// Bottom = Top - Height. The renderer consumes these directly.
type VisibleEntry struct {
	layout.VirtualMapEntry
	Top    float64
	Bottom float64
}

// visibilityTracker computes which virtual-map entries intersect the render
// window and detects became-visible transitions. The previously visible set
// is kept as a roaring bitmap of entry indexes (entry order is stable across
// rebuilds because the manifest is immutable), so a bucket that stays in view
// across frames triggers its load request exactly once.
type visibilityTracker struct {
	prev *roaring.Bitmap
}

func newVisibilityTracker() *visibilityTracker {
	return &visibilityTracker{prev: roaring.New()}
}

// reset forgets the previously visible set. Called when the entry index space
// changes meaning (switching between bucketed and flat-list mode).
func (vt *visibilityTracker) reset() {
	vt.prev = roaring.New()
}

// scan returns the entries intersecting the window around the camera, plus
// the indexes of entries that just transitioned into view this frame.
// An entry is visible iff top > -lookBehind && bottom < lookAhead.
func (vt *visibilityTracker) scan(vm *layout.VirtualMap, scroll, lookBehind, lookAhead float64) (visible []VisibleEntry, newly []uint32) {
	current := roaring.New()
	for i, e := range vm.Entries {
		top := scroll - e.Offset
		bottom := top - e.Height
		if top > -lookBehind && bottom < lookAhead {
			visible = append(visible, VisibleEntry{VirtualMapEntry: e, Top: top, Bottom: bottom})
			current.Add(uint32(i))
		}
	}

	entered := roaring.AndNot(current, vt.prev)
	newly = entered.ToArray()
	vt.prev = current
	return visible, newly
}
