package page

import (
	"math/rand/v2"
	"sort"
)

// AddSample feeds one (timestamp, entry index) pair into the reservoir.
// syncCount is the 1-based count of entries published so far (the nth
// sample overall), used as the reservoir sampling denominator. Below
// capacity, the sample is always kept; once full, it replaces a slot
// chosen uniformly at random with probability HistogramCapacity/syncCount
// — standard reservoir sampling (Algorithm R).
func (h *Header) AddSample(ts uint64, index uint32, syncCount uint32) {
	if h.HistogramSize < HistogramCapacity {
		h.Histogram[h.HistogramSize] = HistogramEntry{Timestamp: ts, Index: index}
		h.HistogramSize++

		return
	}

	j := rand.N(int(syncCount))
	if j < HistogramCapacity {
		h.Histogram[j] = HistogramEntry{Timestamp: ts, Index: index}
	}
}

// SortHistogram sorts the populated prefix of the reservoir by timestamp,
// so Bisect can binary-search it. Called once per completed chunk after
// both its descriptor entries are published.
func (h *Header) SortHistogram() {
	entries := h.Histogram[:h.HistogramSize]
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})
}

// Bisect narrows an entry-index search range using the sorted histogram.
// It returns the [beginIndex, endIndex) bounds in entry-index space that
// bracket key, falling back to [0, count) if the histogram is empty.
func (h *Header) Bisect(key uint64, count uint32) (begin, end uint32) {
	entries := h.Histogram[:h.HistogramSize]
	if len(entries) == 0 {
		return 0, count
	}

	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].Timestamp >= key
	})

	if i == 0 {
		return 0, entries[0].Index + 1
	}

	if i == len(entries) {
		return entries[len(entries)-1].Index, count
	}

	return entries[i-1].Index, entries[i].Index + 1
}
