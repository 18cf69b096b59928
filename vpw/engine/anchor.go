package engine

import (
	"math"

	"github.com/ZanzyTHEbar/virtual-photowall/vpw/layout"
)

// anchorMode is the reconciler's state: tracking (default) follows the
// topmost visible bucket every tick; overridden is entered by an explicit
// navigation command and lasts for exactly one subsequent rebuild, so the
// automatic tracking update does not fight the jump.
type anchorMode int

const (
	anchorTracking anchorMode = iota
	anchorOverridden
)

// scrollAnchor pins the bucket currently at the top of the viewport and how
// far the user has scrolled into it. When a rebuild moves that bucket
// (estimated height replaced by a measured one, or a settings change), the
// positional delta is applied to the scroll position so the visually
// anchored content does not move.
type scrollAnchor struct {
	mode     anchorMode
	bucketID string
	within   float64
}

// observe updates the anchor from the topmost visible entry. No-op while
// overridden: the navigation command already force-set the anchor this tick.
func (a *scrollAnchor) observe(top layout.VirtualMapEntry, scroll float64) {
	if a.mode != anchorTracking {
		return
	}
	a.bucketID = top.BucketID
	a.within = scroll - top.Offset
}

// override force-sets the anchor for a programmatic jump and suppresses
// tracking until the next rebuild.
func (a *scrollAnchor) override(bucketID string, within float64) {
	a.mode = anchorOverridden
	a.bucketID = bucketID
	a.within = within
}

// correct computes the anchor bucket's positional delta between the previous
// and the new virtual map and returns the corrected scroll position. It fires
// at most once per rebuild and is the only scroll mutation that does not come
// from direct user input.
//
// Fails soft when the anchor bucket is missing from either map (it should
// never leave the manifest mid-session): the correction is skipped for this
// rebuild and the anchor re-attaches on the next tracking tick.
func (a *scrollAnchor) correct(oldMap, newMap *layout.VirtualMap, scroll, epsilon float64) (float64, bool) {
	// Overridden state is spent by the rebuild regardless of the outcome.
	defer func() { a.mode = anchorTracking }()

	if a.bucketID == "" {
		return scroll, false
	}
	oldOffset, okOld := oldMap.OffsetOf(a.bucketID)
	newOffset, okNew := newMap.OffsetOf(a.bucketID)
	if !okOld || !okNew {
		return scroll, false
	}
	delta := newOffset - oldOffset
	if math.Abs(delta) <= epsilon {
		return scroll, false
	}
	return scroll + delta, true
}
