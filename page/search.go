package page

import (
	"math"

	"github.com/macneib/Akumuli/chunk"
)

func float64FromBits(raw []byte) float64 {
	if len(raw) < 8 {
		return 0
	}

	bits := littleEndian().Uint64(raw[:8])

	return math.Float64frombits(bits)
}

// EncodeValue packs a raw sample's float64 value into the 8-byte payload
// that raw-entry search decodes back into Sample.Value.
func EncodeValue(v float64) []byte {
	b := make([]byte, 8)
	littleEndian().PutUint64(b, math.Float64bits(v))

	return b
}

// Sample is one emitted datapoint, whether it came from a raw entry or
// was unpacked from a chunk.
type Sample struct {
	ParamID   uint64
	Timestamp uint64
	Value     float64
}

// Query describes a range scan: timestamps in [Low, High], paramids
// accepted by Filter (nil accepts everything), scanned Backward or not.
type Query struct {
	Low, High uint64
	Backward  bool
	Filter    func(paramID uint64) bool
}

func (q *Query) accepts(id uint64) bool {
	return q.Filter == nil || q.Filter(id)
}

// ChunkResolver decodes the chunk referenced by a descriptor, consulting
// a cache keyed by (pageID, chunkOffset) before falling back to decode.
type ChunkResolver interface {
	Resolve(pageID uint32, chunkOffset uint32, decode func() (*chunk.UncompressedChunk, error)) (*chunk.UncompressedChunk, error)
}

// Search scans the page for samples matching q, emitting each through
// emit in timestamp order for the requested direction. Only the
// published prefix [0, sync_count) is visible.
func (p *Page) Search(q *Query, resolver ChunkResolver, emit func(Sample)) error {
	count := p.header.SyncCount
	if count == 0 {
		return nil
	}

	key := q.Low
	if q.Backward {
		key = q.High
	}

	// Fast path: key outside the bounding box.
	if !p.header.BBox.Empty() {
		if q.Backward && key > p.header.BBox.MaxTS {
			return p.scan(count-1, q, resolver, emit)
		}

		if !q.Backward && key < p.header.BBox.MinTS {
			return p.scan(0, q, resolver, emit)
		}

		if q.Backward && key < p.header.BBox.MinTS {
			return nil
		}

		if !q.Backward && key > p.header.BBox.MaxTS {
			return nil
		}
	}

	begin, end := p.header.Bisect(key, count)
	if end > count {
		end = count
	}

	idx := p.interpolationSearch(key, begin, end)
	idx = p.binarySearch(key, begin, end, idx)

	return p.scan(idx, q, resolver, emit)
}

// interpolationSearch narrows [begin, end) toward key using linear
// interpolation on entry timestamps, for up to 4 steps. It terminates
// early once a probe falls outside the open interval, both ends land on
// the same page-sized block, or the bounds collapse.
func (p *Page) interpolationSearch(key uint64, begin, end uint32) uint32 {
	if end <= begin+1 {
		return begin
	}

	const maxSteps = 4

	const osPageSize = 4096

	prevErr := int64(0)

	for step := 0; step < maxSteps; step++ {
		tBegin := int64(p.entryTimestamp(begin))
		tEnd := int64(p.entryTimestamp(end - 1))

		if tEnd == tBegin {
			break
		}

		num := int64(key) - tBegin
		if prevErr != 0 {
			num += prevErr >> uint(step)
		}

		span := int64(end-begin) - 1
		probeOff := num * span / (tEnd - tBegin)
		probe := int64(begin) + probeOff

		if probe <= int64(begin) || probe >= int64(end)-1 {
			break
		}

		probeIdx := uint32(probe)
		probeTS := int64(p.entryTimestamp(probeIdx))
		prevErr = int64(key) - probeTS

		if probeTS < int64(key) {
			begin = probeIdx
		} else {
			end = probeIdx + 1
		}

		if entryIndexSlotOffset(begin)/osPageSize == entryIndexSlotOffset(end)/osPageSize {
			break
		}

		if end <= begin+1 {
			break
		}
	}

	return begin
}

func (p *Page) binarySearch(key uint64, begin, end, hint uint32) uint32 {
	if begin > hint {
		begin = hint
	}

	lo, hi := begin, end
	for lo < hi {
		mid := lo + (hi-lo)/2
		if p.entryTimestamp(mid) < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if lo >= p.header.SyncCount {
		lo = p.header.SyncCount - 1
	}

	return lo
}

func (p *Page) entryTimestamp(i uint32) uint64 {
	offset := p.entryIndexSlot(i)

	return ParseEntry(p.mem[offset:]).Timestamp
}

func (p *Page) scan(start uint32, q *Query, resolver ChunkResolver, emit func(Sample)) error {
	count := p.header.SyncCount
	if count == 0 {
		return nil
	}

	step := func(i uint32) (next uint32, ok bool) {
		if q.Backward {
			if i == 0 {
				return 0, false
			}

			return i - 1, true
		}

		if i+1 >= count {
			return 0, false
		}

		return i + 1, true
	}

	for i := start; ; {
		offset := p.entryIndexSlot(i)
		entry := ParseEntry(p.mem[offset:])

		if err := p.scanEntry(entry, q, resolver, emit); err != nil {
			return err
		}

		if q.Backward {
			if entry.Timestamp < q.Low {
				break
			}
		} else if entry.Timestamp > q.High {
			break
		}

		next, ok := step(i)
		if !ok {
			break
		}

		i = next
	}

	return nil
}

func (p *Page) scanEntry(entry Entry, q *Query, resolver ChunkResolver, emit func(Sample)) error {
	switch {
	case entry.ParamID < ChunkFwdID:
		if q.accepts(entry.ParamID) && entry.Timestamp >= q.Low && entry.Timestamp <= q.High {
			emit(rawSample(entry))
		}

		return nil

	case entry.ParamID == ChunkFwdID && !q.Backward:
		return p.scanChunk(entry, q, resolver, emit)

	case entry.ParamID == ChunkBwdID && q.Backward:
		return p.scanChunk(entry, q, resolver, emit)

	default:
		// Opposite sentinel: mirror duplicate of a chunk already
		// covered by its matching-direction descriptor.
		return nil
	}
}

func rawSample(entry Entry) Sample {
	value := float64FromBits(entry.Value)

	return Sample{ParamID: entry.ParamID, Timestamp: entry.Timestamp, Value: value}
}

func (p *Page) scanChunk(entry Entry, q *Query, resolver ChunkResolver, emit func(Sample)) error {
	desc := ParseChunkDesc(entry.Value)

	decode := func() (*chunk.UncompressedChunk, error) {
		payload := p.mem[desc.BeginOffset:desc.EndOffset]
		cd := chunk.Descriptor{
			NElements: desc.NElements,
			CRC32:     desc.CRC32,
			EndOffset: desc.EndOffset - desc.BeginOffset,
		}

		return chunk.Decode(payload, cd, nil)
	}

	var (
		c   *chunk.UncompressedChunk
		err error
	)

	if resolver != nil {
		c, err = resolver.Resolve(p.header.PageID, desc.BeginOffset, decode)
	} else {
		c, err = decode()
	}

	if err != nil {
		return err
	}

	n := c.Len()

	start := 0
	if q.Backward {
		start = n - 1
	}

	for i := start; i >= 0 && i < n; {
		ts := c.Timestamps[i]
		id := c.ParamIDs[i]

		if ts < q.Low || ts > q.High {
			if q.Backward && ts < q.Low {
				break
			}

			if !q.Backward && ts > q.High {
				break
			}
		} else if q.accepts(id) {
			emit(Sample{ParamID: id, Timestamp: ts, Value: c.Values[i]})
		}

		if q.Backward {
			i--
		} else {
			i++
		}
	}

	return nil
}
