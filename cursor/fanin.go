package cursor

import (
	"container/heap"
	"context"

	"github.com/macneib/Akumuli/page"
)

// faninItem is one heap entry: the current head sample pulled from one
// child cursor.
type faninItem struct {
	sample   page.Sample
	childIdx int
}

func less(backward bool, a, b page.Sample) bool {
	if a.Timestamp != b.Timestamp {
		if backward {
			return a.Timestamp > b.Timestamp
		}

		return a.Timestamp < b.Timestamp
	}

	if backward {
		return a.ParamID > b.ParamID
	}

	return a.ParamID < b.ParamID
}

type faninHeap struct {
	items    []faninItem
	backward bool
}

func (h *faninHeap) Len() int { return len(h.items) }

func (h *faninHeap) Less(i, j int) bool {
	return less(h.backward, h.items[i].sample, h.items[j].sample)
}

func (h *faninHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *faninHeap) Push(x any) { h.items = append(h.items, x.(faninItem)) }

func (h *faninHeap) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]

	return item
}

// FanIn wraps N child cursors (each assumed already time-ordered in
// the requested direction) and returns a single cursor that drains
// them in merged order: a k-way merge over a heap keyed by
// (timestamp, paramid), refilling from whichever child a popped
// sample came from. An error from any child aborts the merge and is
// surfaced through the returned cursor's SetError/IsError.
func FanIn(ctx context.Context, children []ExternalCursor, backward bool) ExternalCursor {
	return Produce(ctx, func(ctx context.Context, ic InternalCursor) error {
		h := &faninHeap{backward: backward}
		heap.Init(h)

		one := make([]page.Sample, 1)

		fill := func(childIdx int) error {
			n, err := children[childIdx].Read(ctx, one)
			if err != nil {
				return err
			}

			if n == 1 {
				heap.Push(h, faninItem{sample: one[0], childIdx: childIdx})
			}

			return nil
		}

		for i := range children {
			if err := fill(i); err != nil {
				return err
			}
		}

		for h.Len() > 0 {
			top := heap.Pop(h).(faninItem)

			if !ic.Put(ctx, top.sample) {
				return nil
			}

			if err := fill(top.childIdx); err != nil {
				return err
			}
		}

		return nil
	})
}
