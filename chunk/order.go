package chunk

import "sort"

// index is a stable permutation helper: sort.Stable on a slice of indices,
// then the caller gathers all three parallel arrays through it. This keeps
// the ts/paramid/value triples aligned through the reorder.
type index struct {
	order []int
	less  func(a, b int) bool
}

func (ix *index) Len() int           { return len(ix.order) }
func (ix *index) Less(i, j int) bool { return ix.less(ix.order[i], ix.order[j]) }
func (ix *index) Swap(i, j int)      { ix.order[i], ix.order[j] = ix.order[j], ix.order[i] }

func gather(c *UncompressedChunk, order []int) *UncompressedChunk {
	out := &UncompressedChunk{
		Timestamps: make([]uint64, len(order)),
		ParamIDs:   make([]uint64, len(order)),
		Values:     make([]float64, len(order)),
	}

	for i, src := range order {
		out.Timestamps[i] = c.Timestamps[src]
		out.ParamIDs[i] = c.ParamIDs[src]
		out.Values[i] = c.Values[src]
	}

	return out
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	return order
}

// ToChunkOrder returns a copy of c sorted by (paramid, timestamp), the
// layout persisted to disk for better column compressibility.
func ToChunkOrder(c *UncompressedChunk) *UncompressedChunk {
	order := identityOrder(c.Len())
	ix := &index{order: order, less: func(a, b int) bool {
		if c.ParamIDs[a] != c.ParamIDs[b] {
			return c.ParamIDs[a] < c.ParamIDs[b]
		}

		return c.Timestamps[a] < c.Timestamps[b]
	}}
	sort.Stable(ix)

	return gather(c, order)
}

// ToTimeOrder returns a copy of c sorted by (timestamp, paramid), the
// order the engine ingests in and that range queries return.
func ToTimeOrder(c *UncompressedChunk) *UncompressedChunk {
	order := identityOrder(c.Len())
	ix := &index{order: order, less: func(a, b int) bool {
		if c.Timestamps[a] != c.Timestamps[b] {
			return c.Timestamps[a] < c.Timestamps[b]
		}

		return c.ParamIDs[a] < c.ParamIDs[b]
	}}
	sort.Stable(ix)

	return gather(c, order)
}
