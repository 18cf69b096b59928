package layout

import "math"

// Aspect ratio bounds applied before any layout math. Extreme panoramas and
// degenerate crops would otherwise produce rows that never fit the wall.
const (
	MinAspectRatio     = 0.5
	MaxAspectRatio     = 2.5
	DefaultAspectRatio = 1.0
)

// BucketManifestEntry is the coarse, authoritative listing of one time bucket.
// The manifest is fetched once at session start, ordered newest-first, and is
// immutable for the session.
type BucketManifestEntry struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// PhotoRef holds the minimal attributes the layout engine needs per photo.
// Everything else (textures, depth maps, URLs) belongs to the renderer and
// the network layer.
type PhotoRef struct {
	ID          string  `json:"id"`
	AspectRatio float64 `json:"aspectRatio"` // width / height
	DateLabel   string  `json:"dateLabel"`   // month+year grouping key, e.g. "December 2024"
}

// LoadedBucket is a bucket whose contents have been fetched. Owned by the
// external cache and observed read-only by the engine.
type LoadedBucket struct {
	ID     string
	Photos []PhotoRef
}

// Settings holds the wall geometry, in scene units. Layout computations are a
// pure function of the current settings and are never cached across settings
// changes.
type Settings struct {
	GalleryWidth float64
	ItemHeight   float64
	Gap          float64
}

// ClampedAspect returns the photo's aspect ratio clamped into
// [MinAspectRatio, MaxAspectRatio]. Missing or malformed ratios default to
// DefaultAspectRatio before clamping.
func (p PhotoRef) ClampedAspect() float64 {
	ar := p.AspectRatio
	if ar <= 0 || math.IsNaN(ar) || math.IsInf(ar, 0) {
		ar = DefaultAspectRatio
	}
	return math.Min(MaxAspectRatio, math.Max(MinAspectRatio, ar))
}
