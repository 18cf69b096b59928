package layout

// Fixed vertical constants, in scene units. The renderer draws date headers
// and group separators with the same values; keep them in sync.
const (
	// HeaderHeight is the vertical space reserved for one date header row.
	HeaderHeight = 0.4
	// InterGroupGap separates consecutive date sub-groups inside a bucket.
	InterGroupGap = 0.2
	// InterBucketGap separates consecutive buckets in the virtual map.
	InterBucketGap = 0.5
)

// ComputeRealHeight deterministically computes the exact vertical height the
// given photos will occupy once rendered: photos are partitioned into
// contiguous sub-groups by DateLabel (input order preserved; callers supply
// photos pre-sorted chronologically within a bucket), each group gets a header
// row plus greedily packed photo rows.
//
// Pure and side-effect free. Must be called with the same Settings the
// renderer uses, or offsets will desynchronize from rendered positions.
func ComputeRealHeight(photos []PhotoRef, s Settings) float64 {
	if len(photos) == 0 {
		return 0
	}

	total := 0.0
	start := 0
	for i := 1; i <= len(photos); i++ {
		if i == len(photos) || photos[i].DateLabel != photos[start].DateLabel {
			total += groupHeight(photos[start:i], s)
			start = i
		}
	}
	return total
}

// groupHeight packs one date sub-group: a header row, then photos packed
// left-to-right into rows that wrap when the running width would exceed the
// gallery width. A row closes only when it already holds at least one item,
// which bounds every row at one photo minimum even for degenerate settings.
func groupHeight(group []PhotoRef, s Settings) float64 {
	rows := 0
	rowWidth := 0.0
	for _, p := range group {
		itemWidth := s.ItemHeight*p.ClampedAspect() + s.Gap
		if rowWidth > 0 && rowWidth+itemWidth > s.GalleryWidth {
			rows++
			rowWidth = itemWidth
			continue
		}
		rowWidth += itemWidth
	}
	if rowWidth > 0 {
		rows++
	}

	return HeaderHeight + float64(rows)*(s.ItemHeight+s.Gap) + InterGroupGap
}
