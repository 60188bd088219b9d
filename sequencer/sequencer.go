package sequencer

import (
	"sync"
	"sync/atomic"

	"github.com/macneib/Akumuli/chunk"
	"github.com/macneib/Akumuli/errs"
	"github.com/macneib/Akumuli/page"
)

// runLockStripes is the number of per-run write locks the resize lock
// hands writers off to, chosen as a power of two so the stripe index is
// a cheap mask (runLockMask) instead of a modulo.
const (
	runLockStripes = 0x10
	runLockMask    = runLockStripes - 1
)

// Config holds the tunables a Sequencer is built from.
type Config struct {
	// WindowSize bounds how far out of order a timestamp may arrive
	// before it is rejected as a late write.
	WindowSize uint64
	// Threshold is the number of samples a ready_ buffer must
	// accumulate before a checkpoint is allowed to trigger a merge.
	Threshold int
}

// Sequencer buffers incoming samples into sorted runs, periodically
// checkpoints the oldest ones into a ready buffer, and merges that
// buffer into chunks written to a page.
type Sequencer struct {
	windowSize uint64
	threshold  int

	resizeMu sync.Mutex
	runs     []run
	ready    []run

	runLocks [runLockStripes]sync.RWMutex

	topTimestamp uint64
	checkpoint   uint64

	// seq is even when no checkpoint is in progress and search is
	// legal; odd while the owning thread drains ready_.
	seq atomic.Int32
}

// New builds an empty Sequencer. WindowSize and Threshold must be
// positive; a zero WindowSize would make every out-of-order write a
// late write.
func New(cfg Config) *Sequencer {
	if cfg.WindowSize == 0 {
		cfg.WindowSize = 1
	}

	if cfg.Threshold <= 0 {
		cfg.Threshold = 1000
	}

	return &Sequencer{windowSize: cfg.WindowSize, threshold: cfg.Threshold}
}

// Window returns the earliest timestamp still inside the current
// window, and the sequence number to pass back into Search.
func (s *Sequencer) Window() (uint64, int32) {
	top := s.topTimestamp
	if top > s.windowSize {
		top -= s.windowSize
	} else {
		top = 0
	}

	return top, s.seq.Load()
}

// checkTimestamp rejects samples that arrive too far behind the
// newest timestamp ever seen, and triggers a checkpoint once ts
// crosses into a new window. It reports whether a checkpoint fired.
func (s *Sequencer) checkTimestamp(ts uint64) (checkpointed bool, err error) {
	if ts < s.topTimestamp {
		delta := s.topTimestamp - ts
		if delta > s.windowSize {
			return false, errs.ErrLateWrite
		}

		return false, nil
	}

	point := ts / s.windowSize
	if point > s.checkpoint {
		checkpointed = s.makeCheckpoint(point)
	}

	s.topTimestamp = ts

	return checkpointed, nil
}

// Add buffers one sample, rejecting it with ErrLateWrite if it falls
// too far behind the newest timestamp seen so far. The returned bool
// reports whether adding this sample closed a checkpoint window; the
// caller owning that checkpoint must follow up with MergeAndCompress.
func (s *Sequencer) Add(v Value) (checkpointed bool, err error) {
	checkpointed, err = s.checkTimestamp(v.Timestamp)
	if err != nil {
		return false, err
	}

	s.resizeMu.Lock()
	idx := runsByDescendingBack(s.runs, v)
	newRunNeeded := idx == len(s.runs)

	if newRunNeeded {
		s.runs = append(s.runs, run{v})
		s.resizeMu.Unlock()

		return checkpointed, nil
	}
	s.resizeMu.Unlock()

	stripe := idx & runLockMask
	s.runLocks[stripe].Lock()
	s.runs[idx] = s.runs[idx].insertSorted(v)
	s.runLocks[stripe].Unlock()

	return checkpointed, nil
}

// makeCheckpoint moves every run's prefix up to the just-closed
// window boundary into ready_, flipping the sequence number odd while
// it does so. If the moved total doesn't reach the compression
// threshold yet, everything is rolled back into runs_ and the
// sequence number flipped back to even: not enough data to compress
// efficiently, so the caller should keep accumulating.
func (s *Sequencer) makeCheckpoint(newCheckpoint uint64) bool {
	s.seq.Add(1)

	oldTop := s.checkpoint * s.windowSize
	s.checkpoint = newCheckpoint

	newRuns := make([]run, 0, len(s.runs))

	for _, r := range s.runs {
		older, newer := partitionAtCheckpoint(r, oldTop)

		if len(older) == 0 {
			newRuns = append(newRuns, r)
			continue
		}

		if len(newer) == 0 {
			s.ready = append(s.ready, older)
			continue
		}

		s.ready = append(s.ready, older)
		newRuns = append(newRuns, newer)
	}

	s.resizeMu.Lock()
	s.runs = newRuns
	s.resizeMu.Unlock()

	readySize := 0
	for _, r := range s.ready {
		readySize += len(r)
	}

	if readySize < s.threshold {
		s.resizeMu.Lock()
		s.runs = append(s.runs, s.ready...)
		s.resizeMu.Unlock()
		s.ready = nil
		s.seq.Add(1)

		return false
	}

	return true
}

// MergeAndCompress drains ready_ in batches of up to Threshold
// samples, merging them in time order and completing a chunk on the
// target page for every full (or, with enforce, partial) batch. The
// caller must be the owner of an in-progress checkpoint (odd seq).
// MergeAndCompress always flips the sequence number back to even
// before returning, even on error.
func (s *Sequencer) MergeAndCompress(target *page.Page, codecImpl chunk.Codec, enforce bool) error {
	if s.seq.Load()%2 == 0 {
		return errs.ErrBusy
	}

	defer s.seq.Add(1)

	if len(s.ready) == 0 {
		return nil
	}

	var err error

	for len(s.ready) > 0 {
		batch := make([]Value, 0, s.threshold)

		leftover := kWayMerge(s.ready, false, func(v Value) bool {
			if len(batch) >= s.threshold {
				return false
			}

			batch = append(batch, v)

			return true
		})

		s.ready = leftover

		if !enforce && len(batch) < s.threshold {
			s.pushBackBatch(batch)

			break
		}

		if len(batch) == 0 {
			break
		}

		c := batchToChunk(batch)
		if werr := target.CompleteChunk(c, codecImpl); werr != nil {
			s.pushBackBatch(batch)

			err = werr

			break
		}
	}

	if len(s.ready) > 0 {
		s.resizeMu.Lock()
		s.runs = append(s.runs, s.ready...)
		s.resizeMu.Unlock()
		s.ready = nil
	}

	return err
}

func (s *Sequencer) pushBackBatch(batch []Value) {
	if len(batch) == 0 {
		return
	}

	r := make(run, len(batch))
	copy(r, batch)
	s.ready = append(s.ready, r)
}

func batchToChunk(batch []Value) *chunk.UncompressedChunk {
	c := &chunk.UncompressedChunk{
		Timestamps: make([]uint64, len(batch)),
		ParamIDs:   make([]uint64, len(batch)),
		Values:     make([]float64, len(batch)),
	}

	for i, v := range batch {
		c.Timestamps[i] = v.Timestamp
		c.ParamIDs[i] = v.ParamID
		c.Values[i] = v.Value
	}

	return c
}

// Close drains every active run into ready_ and forces a final merge,
// used when a volume is being sealed and every buffered sample must
// reach the page.
func (s *Sequencer) Close(target *page.Page, codecImpl chunk.Codec) error {
	for i := range s.runLocks {
		s.runLocks[i].Lock()
	}

	s.ready = append(s.ready, s.runs...)

	for i := range s.runLocks {
		s.runLocks[i].Unlock()
	}

	s.resizeMu.Lock()
	s.runs = nil
	s.resizeMu.Unlock()

	s.seq.Store(1)

	if len(s.ready) == 0 {
		return nil
	}

	return s.MergeAndCompress(target, codecImpl, true)
}

// Reset discards checkpoint bookkeeping after a volume switch: every
// active run moves to ready_ so the caller can hand it to
// MergeAndCompress against the new volume's page, and the sequence
// number is forced odd to match (the caller owns the resulting
// checkpoint).
func (s *Sequencer) Reset() {
	for i := range s.runLocks {
		s.runLocks[i].Lock()
	}

	s.ready = append(s.ready, s.runs...)

	for i := range s.runLocks {
		s.runLocks[i].Unlock()
	}

	s.resizeMu.Lock()
	s.runs = nil
	s.resizeMu.Unlock()

	s.seq.Store(1)
}

// Search filters the active runs by [q.Low, q.High], merges them in
// the query's direction, applies the paramid filter, and emits every
// match through emit. It fails with EBUSY if a checkpoint is in
// progress or expectedSeq is stale, both checked again once the merge
// finishes.
func (s *Sequencer) Search(q *page.Query, expectedSeq int32, emit func(Value)) error {
	seqID := s.seq.Load()
	if seqID%2 != 0 || seqID != expectedSeq {
		return errs.ErrBusy
	}

	s.resizeMu.Lock()
	runsSnapshot := make([]run, len(s.runs))
	copy(runsSnapshot, s.runs)
	s.resizeMu.Unlock()

	filtered := make([]run, 0, len(runsSnapshot))

	for i, r := range runsSnapshot {
		stripe := i & runLockMask
		s.runLocks[stripe].RLock()
		lo := lowerBound(r, Value{Timestamp: q.Low})
		hi := upperBound(r, Value{Timestamp: q.High, ParamID: ^uint64(0)})
		s.runLocks[stripe].RUnlock()

		if lo < hi {
			filtered = append(filtered, r[lo:hi])
		}
	}

	kWayMerge(filtered, q.Backward, func(v Value) bool {
		if q.Filter == nil || q.Filter(v.ParamID) {
			emit(v)
		}

		return true
	})

	seqID = s.seq.Load()
	if seqID%2 != 0 || seqID != expectedSeq {
		return errs.ErrBusy
	}

	return nil
}
