package layout

import (
	"sort"
	"strconv"
	"strings"

	"github.com/armon/go-radix"
)

// YearIndex maps calendar years to scroll-space offsets for scrubber
// navigation, and indexes bucket ids in a patricia tree for year-prefix
// lookups.
//
// Offset rule ("earliest bucket of year"): entries are traversed in manifest
// order, which is newest-first, and each entry unconditionally overwrites its
// year's recorded offset. Last write wins, so the recorded offset always
// points at the chronologically earliest bucket within the year - navigating
// to a year lands at its beginning, not its end.
type YearIndex struct {
	tree    *radix.Tree // bucket id -> VirtualMapEntry
	offsets map[int]float64
	entries map[int]string // year -> bucket id of its earliest bucket
}

// BuildYearIndex derives a year index from the virtual map. Entries whose
// bucket id does not start with a parseable year are skipped.
func BuildYearIndex(vm *VirtualMap) *YearIndex {
	yi := &YearIndex{
		tree:    radix.New(),
		offsets: make(map[int]float64),
		entries: make(map[int]string),
	}
	if vm == nil {
		return yi
	}
	for _, e := range vm.Entries {
		yi.tree.Insert(e.BucketID, e)
		year, ok := yearOf(e.BucketID)
		if !ok {
			continue
		}
		yi.offsets[year] = e.Offset
		yi.entries[year] = e.BucketID
	}
	return yi
}

// Offset returns the offset of the given year's earliest bucket.
func (yi *YearIndex) Offset(year int) (float64, bool) {
	off, ok := yi.offsets[year]
	return off, ok
}

// EntryID returns the bucket id of the given year's earliest bucket.
func (yi *YearIndex) EntryID(year int) (string, bool) {
	id, ok := yi.entries[year]
	return id, ok
}

// Offsets returns a copy of the year -> offset mapping, for scrubber tick
// rendering.
func (yi *YearIndex) Offsets() map[int]float64 {
	out := make(map[int]float64, len(yi.offsets))
	for y, off := range yi.offsets {
		out[y] = off
	}
	return out
}

// Years returns all indexed years, newest first.
func (yi *YearIndex) Years() []int {
	years := make([]int, 0, len(yi.offsets))
	for y := range yi.offsets {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// BucketsForYear returns the ids of every bucket belonging to the given year,
// in manifest id order, via an O(k) prefix walk of the patricia tree.
func (yi *YearIndex) BucketsForYear(year int) []string {
	var ids []string
	yi.tree.WalkPrefix(strconv.Itoa(year)+"-", func(key string, _ interface{}) bool {
		ids = append(ids, key)
		return false
	})
	return ids
}

// yearOf extracts the calendar year from a bucket id of the form
// "YYYY-MM" or "YYYY-MM-DD".
func yearOf(bucketID string) (int, bool) {
	head, _, found := strings.Cut(bucketID, "-")
	if !found {
		head = bucketID
	}
	if len(head) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(head)
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}
