package layout

// FlatResultsID is the synthetic bucket id used in flat-list mode, where a
// single entry wraps an explicit filtered photo list.
const FlatResultsID = "flat-results"

// VirtualMapEntry places one bucket in scroll space. Entries are ordered
// identically to the manifest; offsets are non-decreasing and
// offset[i+1] = offset[i] + height[i] + InterBucketGap.
type VirtualMapEntry struct {
	BucketID string
	Offset   float64
	Height   float64
	Count    int
	Loaded   bool
}

// VirtualMap is the computed list of bucket offsets and heights used to place
// buckets in scroll space without rendering unloaded ones. It is rebuilt, not
// mutated in place, whenever the manifest, the loaded-bucket cache, or the
// layout settings change. Entry BucketIDs are stable across rebuilds, which
// is what makes diffing (and scroll anchoring) possible.
type VirtualMap struct {
	Entries     []VirtualMapEntry
	TotalHeight float64

	index map[string]int // bucket id -> position in Entries
}

// BuildVirtualMap folds the ordered bucket manifest into a virtual map.
// Loaded buckets get their exact simulated height; unloaded buckets get an
// estimate seeded from every loaded bucket's real measurement. Idempotent and
// re-runnable on every relevant input change.
//
// Entries with Count == 0 still produce a valid zero-height entry rather than
// being skipped, keeping id-based diffing stable.
func BuildVirtualMap(manifest []BucketManifestEntry, loaded map[string][]PhotoRef, s Settings) *VirtualMap {
	estimator := NewHeightEstimator(s)

	// First pass: measure every loaded bucket so estimates for the unloaded
	// ones are seeded from all available real data, not just the buckets that
	// happen to precede them in manifest order.
	heights := make(map[string]float64, len(loaded))
	for _, m := range manifest {
		photos, ok := loaded[m.ID]
		if !ok {
			continue
		}
		h := ComputeRealHeight(photos, s)
		heights[m.ID] = h
		estimator.Observe(h, len(photos))
	}

	vm := &VirtualMap{
		Entries: make([]VirtualMapEntry, 0, len(manifest)),
		index:   make(map[string]int, len(manifest)),
	}

	offset := 0.0
	for _, m := range manifest {
		entry := VirtualMapEntry{
			BucketID: m.ID,
			Offset:   offset,
			Count:    m.Count,
		}
		if h, ok := heights[m.ID]; ok {
			entry.Height = h
			entry.Loaded = true
			entry.Count = len(loaded[m.ID])
		} else {
			entry.Height = estimator.Estimate(m.Count)
		}
		vm.index[entry.BucketID] = len(vm.Entries)
		vm.Entries = append(vm.Entries, entry)
		offset += entry.Height + InterBucketGap
	}

	if n := len(vm.Entries); n > 0 {
		last := vm.Entries[n-1]
		vm.TotalHeight = last.Offset + last.Height
	}
	return vm
}

// BuildFlatMap synthesizes a virtual map holding a single loaded entry that
// wraps an explicit, already-filtered photo list (search results, favorites).
func BuildFlatMap(photos []PhotoRef, s Settings) *VirtualMap {
	entry := VirtualMapEntry{
		BucketID: FlatResultsID,
		Offset:   0,
		Height:   ComputeRealHeight(photos, s),
		Count:    len(photos),
		Loaded:   true,
	}
	return &VirtualMap{
		Entries:     []VirtualMapEntry{entry},
		TotalHeight: entry.Height,
		index:       map[string]int{FlatResultsID: 0},
	}
}

// EntryByID returns the entry for the given bucket id, if present.
func (vm *VirtualMap) EntryByID(id string) (VirtualMapEntry, bool) {
	if vm == nil {
		return VirtualMapEntry{}, false
	}
	i, ok := vm.index[id]
	if !ok {
		return VirtualMapEntry{}, false
	}
	return vm.Entries[i], true
}

// OffsetOf returns the scroll-space offset of the given bucket id.
func (vm *VirtualMap) OffsetOf(id string) (float64, bool) {
	e, ok := vm.EntryByID(id)
	if !ok {
		return 0, false
	}
	return e.Offset, true
}
