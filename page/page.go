package page

import (
	"os"

	"github.com/macneib/Akumuli/endian"
	"github.com/macneib/Akumuli/errs"
)

func littleEndian() endian.EndianEngine {
	return endian.GetLittleEndianEngine()
}

// Page is a fixed-size memory-mapped region: a Header followed by a
// growing entry index and entries/chunk-descriptor payloads packed from
// the high end downward.
type Page struct {
	file   *os.File
	mem    []byte
	header Header
	path   string
}

// Create mmaps a new zero-filled page file at path sized length bytes
// (header included) and initializes its header.
func Create(path string, pageID uint32, length uint64) (*Page, error) {
	f, mem, err := mmapFile(path, int64(length))
	if err != nil {
		return nil, err
	}

	p := &Page{file: f, mem: mem, path: path}
	p.header = Header{
		Version:    1,
		PageID:     pageID,
		Length:     length,
		LastOffset: length,
	}
	p.flushHeader()

	return p, nil
}

// Open mmaps an existing page file and parses its header. If the
// header's open/close counters disagree, the caller must call Restore
// before serving reads.
func Open(path string) (*Page, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	f, mem, err := mmapFile(path, fi.Size())
	if err != nil {
		return nil, err
	}

	p := &Page{file: f, mem: mem, path: path}
	if err := p.header.Parse(mem[:HeaderSize]); err != nil {
		munmap(mem)
		f.Close()

		return nil, err
	}

	return p, nil
}

// Close unmaps and closes the backing file. It does not flush; callers
// that want durability should call Flush first.
func (p *Page) Close() error {
	if err := munmap(p.mem); err != nil {
		return err
	}

	return p.file.Close()
}

// Header returns a copy of the page's current header.
func (p *Page) Header() Header { return p.header }

// NeedsRestore reports whether the page's open/close counters disagree,
// signaling that a crash left sync_count behind the true entry count.
func (p *Page) NeedsRestore() bool {
	return p.header.OpenCount != p.header.CloseCount
}

func (p *Page) flushHeader() {
	p.header.PutBytes(p.mem[:HeaderSize])
}

// Flush writes the in-memory header back into the mapped region and
// msyncs the page to disk.
func (p *Page) Flush() error {
	p.flushHeader()

	return msync(p.mem)
}

// MakeReadonly revokes write access to the page's mapping, used when
// a volume is rotated out of the active slot but kept around for
// readers.
func (p *Page) MakeReadonly() error {
	return mprotectReadonly(p.mem)
}

// MakeWritable restores write access to the page's mapping, used when
// a volume is recycled back into the active slot.
func (p *Page) MakeWritable() error {
	return mprotectWritable(p.mem)
}

func entryIndexSlotOffset(i uint32) uint32 {
	return uint32(HeaderSize) + i*4
}

func (p *Page) entryIndexSlot(i uint32) uint32 {
	eng := littleEndian()

	return eng.Uint32(p.mem[entryIndexSlotOffset(i) : entryIndexSlotOffset(i)+4])
}

func (p *Page) setEntryIndexSlot(i uint32, offset uint32) {
	eng := littleEndian()
	eng.PutUint32(p.mem[entryIndexSlotOffset(i):entryIndexSlotOffset(i)+4], offset)
}

// freeBytes returns how much room remains between the growing entry
// index and the shrinking entries region.
func (p *Page) freeBytes() uint64 {
	indexHigh := uint64(entryIndexSlotOffset(p.header.Count + 1))

	if p.header.LastOffset < indexHigh {
		return 0
	}

	return p.header.LastOffset - indexHigh
}

// placeEntry copies an entry's bytes into the high end of the free region
// and records its offset in the entry index, without touching the
// bounding box (raw datapoints and chunk descriptors both flow through
// this, but only the former affects the bbox).
func (p *Page) placeEntry(paramID, ts uint64, value []byte) (uint32, error) {
	e := Entry{ParamID: paramID, Timestamp: ts, Value: value}
	size := uint64(e.Size())

	if p.freeBytes() < size {
		return 0, errs.ErrOverflow
	}

	offset := p.header.LastOffset - size
	PutEntry(p.mem[offset:], &e)
	p.setEntryIndexSlot(p.header.Count, uint32(offset))
	p.header.LastOffset = offset
	p.header.Count++

	return uint32(offset), nil
}

// AddEntry appends a raw {param_id, timestamp, value} record at the high
// end and records its offset, updating the bounding box. It does not
// publish the entry: sync_count is unchanged until SyncNextIndex runs.
func (p *Page) AddEntry(paramID, ts uint64, value []byte) error {
	if len(value) == 0 {
		return errs.ErrBadData
	}

	if _, err := p.placeEntry(paramID, ts, value); err != nil {
		return err
	}

	p.header.BBox.Update(paramID, ts)

	return nil
}

// SyncNextIndex advances sync_count by one, publishing the next
// unpublished entry to the readable prefix, and folds its (timestamp,
// index) pair into the reservoir histogram. When sortHistogram is true
// the accumulated histogram is re-sorted by timestamp — done once per
// completed chunk, after both of its descriptor entries are published.
func (p *Page) SyncNextIndex(sortHistogram bool) error {
	if p.header.SyncCount >= p.header.Count {
		return errs.ErrOverflow
	}

	idx := p.header.SyncCount
	offset := p.entryIndexSlot(idx)
	entry := ParseEntry(p.mem[offset:])

	p.header.SyncCount++
	p.header.AddSample(entry.Timestamp, idx, p.header.SyncCount)

	if sortHistogram {
		p.header.SortHistogram()
	}

	return nil
}

// Reuse resets the page's logical contents (count, sync_count,
// last_offset, bounding box, histogram) for a new writer generation,
// incrementing open_count. The underlying bytes are not zeroed; entries
// are simply considered absent until re-added.
func (p *Page) Reuse() {
	p.header.Count = 0
	p.header.SyncCount = 0
	p.header.LastOffset = p.header.Length
	p.header.BBox.Reset()
	p.header.HistogramSize = 0
	p.header.OpenCount++
}

// MarkClosed increments close_count, ending the page's current writer
// generation so that open_count == close_count. A page whose counters
// disagree on the next Open (including the active page after a normal
// shutdown, which does not call MarkClosed) reports NeedsRestore.
func (p *Page) MarkClosed() {
	p.header.CloseCount++
}

// Restore rescans the entry index to bring sync_count up to count after
// a crash left them disagreeing, replaying SyncNextIndex for every
// unpublished entry and re-sorting the histogram once at the end.
func (p *Page) Restore() {
	for p.header.SyncCount < p.header.Count {
		_ = p.SyncNextIndex(false)
	}

	p.header.SortHistogram()
}
