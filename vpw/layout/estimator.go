package layout

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// coldAspectRatio is the assumed aspect ratio before any bucket has loaded
// (most photos are close to 4:3).
const coldAspectRatio = 4.0 / 3.0

// headerAmortization approximates one date header row per this many photos
// when estimating unmeasured buckets.
const headerAmortization = 8.0

// HeightEstimator produces height estimates for buckets whose contents have
// not been fetched yet. Estimates converge toward true values as buckets
// load, because the running average is recomputed from real measurements on
// every rebuild.
type HeightEstimator struct {
	settings Settings

	// Per-loaded-bucket height-per-photo samples, weighted by photo count.
	// The count-weighted mean equals sum(realHeight) / sum(count).
	perPhoto []float64
	weights  []float64
}

// NewHeightEstimator creates an estimator for the given wall geometry.
func NewHeightEstimator(s Settings) *HeightEstimator {
	return &HeightEstimator{settings: s}
}

// Observe records the exact measured height of a loaded bucket. Buckets with
// zero photos carry no signal and are ignored.
func (e *HeightEstimator) Observe(realHeight float64, count int) {
	if count <= 0 {
		return
	}
	e.perPhoto = append(e.perPhoto, realHeight/float64(count))
	e.weights = append(e.weights, float64(count))
}

// Estimate returns the estimated height for an unloaded bucket holding count
// photos. With at least one observation the count-weighted running average is
// used; otherwise a coarse heuristic derived from the settings alone.
func (e *HeightEstimator) Estimate(count int) float64 {
	if count <= 0 {
		return 0
	}
	if len(e.perPhoto) > 0 {
		return float64(count) * stat.Mean(e.perPhoto, e.weights)
	}
	return float64(count) * e.coldHeightPerPhoto()
}

// coldHeightPerPhoto derives a height-per-photo figure from geometry alone:
// assume coldAspectRatio photos, compute how many fit one row, and amortize
// one header row per headerAmortization photos.
func (e *HeightEstimator) coldHeightPerPhoto() float64 {
	itemWidth := e.settings.ItemHeight*coldAspectRatio + e.settings.Gap
	columns := 1.0
	if itemWidth > 0 && e.settings.GalleryWidth > itemWidth {
		columns = math.Floor(e.settings.GalleryWidth / itemWidth)
	}
	rowHeight := e.settings.ItemHeight + e.settings.Gap + HeaderHeight/headerAmortization
	return rowHeight / columns
}
