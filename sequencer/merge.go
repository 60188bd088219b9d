package sequencer

import "container/heap"

// mergeItem is one heap entry: the current head of one run plus enough
// bookkeeping to refill from the same run after it is popped.
type mergeItem struct {
	value    Value
	runIdx   int
	elemIdx  int
	backward bool
}

// mergeHeap orders items by timestamp, ascending for a forward query and
// descending for a backward one.
type mergeHeap struct {
	items    []mergeItem
	backward bool
}

func (h *mergeHeap) Len() int { return len(h.items) }

func (h *mergeHeap) Less(i, j int) bool {
	if h.backward {
		return less(h.items[j].value, h.items[i].value)
	}

	return less(h.items[i].value, h.items[j].value)
}

func (h *mergeHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *mergeHeap) Push(x any) { h.items = append(h.items, x.(mergeItem)) }

func (h *mergeHeap) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]

	return item
}

// kWayMerge drains runs in time order (or reverse, if backward), calling
// emit for every value until emit returns false or the runs are
// exhausted. If emit stops early, the value it refused counts as
// unconsumed: it and the unconsumed suffix of each run (including
// whatever is still parked in the heap) are reassembled into fresh runs
// and returned so the caller can push them back into ready_, making the
// merge restartable.
func kWayMerge(runs []run, backward bool, emit func(Value) bool) []run {
	h := &mergeHeap{backward: backward}
	heap.Init(h)

	for ri, r := range runs {
		if len(r) == 0 {
			continue
		}

		idx := 0
		if backward {
			idx = len(r) - 1
		}

		heap.Push(h, mergeItem{value: r[idx], runIdx: ri, elemIdx: idx, backward: backward})
	}

	for h.Len() > 0 {
		item := heap.Pop(h).(mergeItem)

		if !emit(item.value) {
			heap.Push(h, item)

			return leftoverRuns(runs, h, backward)
		}

		r := runs[item.runIdx]

		var next int

		var ok bool

		if backward {
			next = item.elemIdx - 1
			ok = next >= 0
		} else {
			next = item.elemIdx + 1
			ok = next < len(r)
		}

		if ok {
			heap.Push(h, mergeItem{value: r[next], runIdx: item.runIdx, elemIdx: next, backward: backward})
		}
	}

	return nil
}

// leftoverRuns reconstructs the unconsumed remainder of each input run
// (the heap's surviving items plus whatever was never reached) so an
// early-stopped merge can be restarted later without losing data.
func leftoverRuns(runs []run, h *mergeHeap, backward bool) []run {
	remaining := make(map[int]int, len(runs))
	for _, item := range h.items {
		if prev, ok := remaining[item.runIdx]; !ok || (backward && item.elemIdx > prev) || (!backward && item.elemIdx < prev) {
			remaining[item.runIdx] = item.elemIdx
		}
	}

	var out []run

	for ri, r := range runs {
		idx, ok := remaining[ri]
		if !ok {
			continue
		}

		if backward {
			out = append(out, append(run(nil), r[:idx+1]...))
		} else {
			out = append(out, append(run(nil), r[idx:]...))
		}
	}

	return out
}
