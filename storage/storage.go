package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/macneib/Akumuli/chunk"
	"github.com/macneib/Akumuli/chunkcache"
	"github.com/macneib/Akumuli/config"
	"github.com/macneib/Akumuli/errs"
	"github.com/macneib/Akumuli/logging"
	"github.com/macneib/Akumuli/page"
	"github.com/macneib/Akumuli/sequencer"
	"github.com/macneib/Akumuli/seriesdict"
	"github.com/macneib/Akumuli/volume"
)

// Storage holds an ordered ring of volumes with a monotonically
// increasing active index, plus the series matcher and chunk cache
// shared across the ring.
type Storage struct {
	cfg     config.Config
	meta    *MetadataStorage
	matcher *seriesdict.Matcher
	cache   *chunkcache.Cache
	codec   chunk.Codec
	logger  *slog.Logger

	mu      sync.Mutex
	volumes []*volume.Volume

	activeIndex atomic.Int32
}

func seqConfigFrom(cfg config.Config) sequencer.Config {
	return sequencer.Config{
		WindowSize: cfg.WindowSize,
		Threshold:  int(cfg.CompressionThreshold),
	}
}

// Create initializes a brand-new storage: a fresh metadata database
// and one freshly-created volume file per path in volumePaths.
func Create(metaPath string, volumePaths []string, volumeLength uint64, cfg config.Config) (*Storage, error) {
	if len(volumePaths) == 0 {
		return nil, errs.New(errs.CodeBadArg, errors.New("storage: at least one volume required"))
	}

	meta, err := OpenMetadataStorage(metaPath)
	if err != nil {
		return nil, err
	}

	descs := make([]VolumeDesc, len(volumePaths))
	for i, p := range volumePaths {
		descs[i] = VolumeDesc{Index: i, Path: p}
	}

	if err := meta.InitVolumes(descs); err != nil {
		meta.Close()

		return nil, err
	}

	seqCfg := seqConfigFrom(cfg)
	vols := make([]*volume.Volume, len(volumePaths))

	for i, p := range volumePaths {
		v, err := volume.Create(p, uint32(i), volumeLength, seqCfg)
		if err != nil {
			meta.Close()

			return nil, err
		}

		vols[i] = v
	}

	s := &Storage{
		cfg:     cfg,
		meta:    meta,
		matcher: seriesdict.NewMatcher(1),
		cache:   chunkcache.New(uint64(cfg.MaxCacheSize)),
		logger:  logging.Component("storage"),
		volumes: vols,
	}
	s.activeIndex.Store(0)

	if err := vols[0].OpenForWrite(); err != nil {
		return nil, err
	}

	return s, nil
}

// Open reopens an existing storage from its metadata database,
// restoring whichever volume was active when the process last ran.
func Open(metaPath string, cfg config.Config) (*Storage, error) {
	if _, err := os.Stat(metaPath); err != nil {
		return nil, errs.New(errs.CodeNotFound, err)
	}

	meta, err := OpenMetadataStorage(metaPath)
	if err != nil {
		return nil, err
	}

	descs, err := meta.Volumes()
	if err != nil {
		meta.Close()

		return nil, err
	}

	if len(descs) == 0 {
		meta.Close()

		return nil, errs.New(errs.CodeNotFound, errors.New("storage: no volumes recorded"))
	}

	seqCfg := seqConfigFrom(cfg)
	vols := make([]*volume.Volume, len(descs))

	for _, d := range descs {
		v, err := volume.Open(d.Path, seqCfg)
		if err != nil {
			meta.Close()

			return nil, err
		}

		if err := v.MakeReadonly(); err != nil {
			meta.Close()

			return nil, err
		}

		vols[d.Index] = v
	}

	activeIdx := selectActiveVolume(vols)

	s := &Storage{
		cfg:     cfg,
		meta:    meta,
		cache:   chunkcache.New(uint64(cfg.MaxCacheSize)),
		logger:  logging.Component("storage"),
		volumes: vols,
	}
	s.activeIndex.Store(int32(activeIdx))

	active := vols[activeIdx]
	if err := active.MakeWritable(); err != nil {
		meta.Close()

		return nil, err
	}

	if active.Page.NeedsRestore() {
		active.Page.Restore()
	}

	if err := active.Flush(); err != nil {
		meta.Close()

		return nil, err
	}

	matcher, err := loadMatcher(meta)
	if err != nil {
		meta.Close()

		return nil, err
	}

	s.matcher = matcher

	return s, nil
}

// selectActiveVolume picks the volume with the largest open_count
// (ties broken by the highest index). If that volume's open_count
// equals its close_count, the previous run crashed mid-switch, so the
// next volume in the ring becomes active instead.
func selectActiveVolume(vols []*volume.Volume) int {
	best := 0

	for i, v := range vols {
		h := v.Page.Header()
		bh := vols[best].Page.Header()

		if h.OpenCount > bh.OpenCount || (h.OpenCount == bh.OpenCount && i > best) {
			best = i
		}
	}

	if vols[best].Page.Header().OpenCount == vols[best].Page.Header().CloseCount {
		best = (best + 1) % len(vols)
	}

	return best
}

func loadMatcher(meta *MetadataStorage) (*seriesdict.Matcher, error) {
	rows, err := meta.AllSeries()
	if err != nil {
		return nil, err
	}

	maxID := uint64(0)
	for _, r := range rows {
		if r.StorageID > maxID {
			maxID = r.StorageID
		}
	}

	m := seriesdict.NewMatcher(maxID + 1)
	for _, r := range rows {
		m.AddKnown(r.SeriesID, r.StorageID)
	}

	return m, nil
}

// Close flushes and closes every volume and the metadata database.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error

	for i, v := range s.volumes {
		active := int32(i) == s.activeIndex.Load()
		if active {
			if err := v.Sequencer.Close(v.Page, s.codec); err != nil && firstErr == nil {
				firstErr = err
			}
		}

		if err := v.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if err := s.meta.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

func (s *Storage) volumeAt(idx int32) *volume.Volume {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.volumes[idx]
}

func (s *Storage) ringLen() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int32(len(s.volumes))
}

// resolve maps a series name to its paramid, minting a fresh one via
// the matcher if this is the first time the name has been seen.
func (s *Storage) resolve(name string) uint64 {
	if id := s.matcher.Match(name); id != 0 {
		return id
	}

	return s.matcher.Add(name)
}

// WriteDouble ingests one (series, timestamp, value) sample.
func (s *Storage) WriteDouble(seriesName string, ts uint64, value float64) error {
	id := s.resolve(seriesName)

	return s.writeImpl(sequencer.Value{Timestamp: ts, ParamID: id, Value: value})
}

func (s *Storage) writeImpl(v sequencer.Value) error {
	idx := s.activeIndex.Load()
	vol := s.volumeAt(idx)

	checkpointed, err := vol.Sequencer.Add(v)
	if err != nil {
		return err
	}

	if !checkpointed {
		return nil
	}

	if err := s.persistNewNames(); err != nil {
		return err
	}

	_, lock := vol.Sequencer.Window()

	mergeErr := vol.Sequencer.MergeAndCompress(vol.Page, s.codec, false)
	if mergeErr != nil {
		if errors.Is(mergeErr, errs.ErrOverflow) {
			return s.advanceVolume(idx)
		}

		return mergeErr
	}

	return s.flushForDurability(vol, lock)
}

func (s *Storage) persistNewNames() error {
	names := s.matcher.PullNewNames()
	if len(names) == 0 {
		return nil
	}

	rows := make([]SeriesRow, len(names))
	for i, n := range names {
		rows[i] = SeriesRow{SeriesID: n.Name, StorageID: n.ID}
	}

	return s.meta.PersistSeries(rows)
}

func (s *Storage) flushForDurability(vol *volume.Volume, lock int32) error {
	switch s.cfg.Durability {
	case config.MaxDurability:
		return vol.Flush()
	case config.SpeedTradeoff:
		if lock%8 == 1 {
			return vol.Flush()
		}

		return nil
	case config.MaxWriteSpeed:
		return nil
	default:
		return vol.Flush()
	}
}

// advanceVolume rotates the active slot forward by one, recycling the
// next ring slot's backing file for the fresh page. Exactly one caller
// racing on the same localRev wins; the rest are no-ops (their sample
// remains buffered in the sequencer that followed the winner's swap).
func (s *Storage) advanceVolume(localRev int32) error {
	n := s.ringLen()
	next := (localRev + 1) % n

	if !s.activeIndex.CompareAndSwap(localRev, next) {
		return nil
	}

	s.mu.Lock()
	current := s.volumes[localRev]
	nextSlot := s.volumes[next]
	s.mu.Unlock()

	if err := current.Deactivate(); err != nil {
		return err
	}

	if err := current.MakeReadonly(); err != nil {
		return err
	}

	fresh, err := nextSlot.SafeRealloc()
	if err != nil {
		return err
	}

	fresh.Sequencer = current.Sequencer

	if err := fresh.OpenForWrite(); err != nil {
		return err
	}

	if err := fresh.MakeWritable(); err != nil {
		return err
	}

	if fresh.Page.Header().PageID == current.Page.Header().PageID {
		panic(fmt.Sprintf("storage: volume recycle produced duplicate page id %d", fresh.Page.Header().PageID))
	}

	s.mu.Lock()
	s.volumes[next] = fresh
	s.mu.Unlock()

	return nextSlot.Close()
}

// Search fans a query out across the ring, oldest volume first for a
// forward query or newest first for a backward one, consulting the
// active volume's sequencer after its page (the sequencer holds
// samples not yet folded into a chunk). Bounded ranges only: this
// Query type carries no continuous/subscription mode, so the
// ENOT_IMPLEMENTED continuous-backward-query case the original engine
// rejects explicitly never arises here.
func (s *Storage) Search(q *page.Query, emit func(page.Sample)) error {
	active := s.activeIndex.Load()
	n := s.ringLen()

	for _, idx := range searchOrder(active, n, q.Backward) {
		vol := s.volumeAt(idx)

		if err := vol.Page.Search(q, s.cache, emit); err != nil {
			return err
		}

		if idx == active {
			_, seq := vol.Sequencer.Window()

			err := vol.Sequencer.Search(q, seq, func(v sequencer.Value) {
				emit(page.Sample{ParamID: v.ParamID, Timestamp: v.Timestamp, Value: v.Value})
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// searchOrder lists ring indices from oldest to newest (forward) or
// the reverse (backward): the slot right after active is the oldest
// surviving generation, and active itself is the newest.
func searchOrder(active, n int32, backward bool) []int32 {
	order := make([]int32, n)
	for i := int32(0); i < n; i++ {
		order[i] = (active + 1 + i) % n
	}

	if backward {
		for l, r := 0, len(order)-1; l < r; l, r = l+1, r-1 {
			order[l], order[r] = order[r], order[l]
		}
	}

	return order
}
