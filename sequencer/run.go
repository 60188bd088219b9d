// Package sequencer reorders out-of-order writes in memory before they
// are folded into a page as chunks. Samples arrive with timestamps that
// can be slightly out of sync across sources; the sequencer buffers them
// in sorted runs, periodically checkpoints the oldest runs into a ready
// buffer, and merges that buffer into time-ordered chunks.
package sequencer

// Value is one buffered sample: the (timestamp, paramid) sort key plus
// its payload. Value itself never unpacks the payload; that is left to
// the chunk codec once a run is merged.
type Value struct {
	Timestamp uint64
	ParamID   uint64
	Value     float64
}

// less orders by (timestamp, paramid), matching the chunk-time-order
// sort key used throughout the storage core.
func less(a, b Value) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}

	return a.ParamID < b.ParamID
}

// run is a sorted slice of Values, append-only except for the
// checkpoint partition that peels its older prefix into ready_.
type run []Value

func (r run) back() Value {
	return r[len(r)-1]
}

// insertSorted inserts v keeping r sorted by (timestamp, paramid). Used
// only for the rare late-arriving sample within a run's existing span;
// the common case is append, since v.Timestamp is usually >= back().
func (r run) insertSorted(v Value) run {
	if len(r) == 0 || !less(v, r.back()) {
		return append(r, v)
	}

	idx := lowerBound(r, v)
	r = append(r, Value{})
	copy(r[idx+1:], r[idx:])
	r[idx] = v

	return r
}

// lowerBound returns the index of the first element not less than v.
func lowerBound(r run, v Value) int {
	lo, hi := 0, len(r)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if less(r[mid], v) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo
}

// upperBound returns the index of the first element greater than v.
func upperBound(r run, v Value) int {
	lo, hi := 0, len(r)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if less(v, r[mid]) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	return lo
}

// partitionAtCheckpoint splits r on a checkpoint boundary timestamp:
// elements with Timestamp <= cut (the just-closed window) move to
// older, the rest (the new window) stay in newer. Both halves remain
// sorted since r was sorted on entry.
func partitionAtCheckpoint(r run, cut uint64) (older, newer run) {
	idx := upperBound(r, Value{Timestamp: cut, ParamID: ^uint64(0)})

	return r[:idx:idx], r[idx:]
}

// runsByDescendingBack finds the insertion point in a run vector kept in
// descending order by back(): the leftmost run whose tail is <= sample,
// i.e. the run with the smallest tail still small enough for sample to
// extend it while keeping the run sorted. Returns len(runs) if every
// run's tail is greater than sample (a new run must be started).
func runsByDescendingBack(runs []run, sample Value) int {
	lo, hi := 0, len(runs)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if less(sample, runs[mid].back()) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo
}
