// Package page implements the fixed-size memory-mapped page: a header,
// a growing entry index, raw entries and chunk descriptors packed from
// the high end of the region, a bounding box, and a sampled timestamp
// histogram used to narrow range-query search.
package page

import "github.com/macneib/Akumuli/endian"

// Sentinel paramids marking a chunk-descriptor entry rather than a raw
// datapoint (§6). CHUNK_FWD_ID's payload covers the chunk in time order
// starting from the chunk's first timestamp; CHUNK_BWD_ID mirrors it for
// backward scans starting from the last.
const (
	ChunkFwdID uint64 = 0xFFFFFFFFFFFFFFFE
	ChunkBwdID uint64 = 0xFFFFFFFFFFFFFFFF
)

// HistogramCapacity bounds the reservoir-sampled timestamp histogram
// (§6's HISTOGRAM_SIZE limit).
const HistogramCapacity = 65536

const histogramEntrySize = 12 // timestamp:u64 + index:u32

// fixedHeaderSize is every header field up to (not including) the
// reserved histogram entry array.
const fixedHeaderSize = 4 + 4 + 8 + 4 + // version, count, last_offset, sync_count
	4 + 4 + 4 + // checkpoint, open_count, close_count
	4 + 8 + // page_id, length
	32 + // bbox
	4 // histogram.size

// HeaderSize is the total fixed on-disk header size, including the
// reserved (but not necessarily fully populated) histogram array.
const HeaderSize = fixedHeaderSize + HistogramCapacity*histogramEntrySize

// BBox is the page's running bounding box over paramid and timestamp.
type BBox struct {
	MinID, MaxID uint64
	MinTS, MaxTS uint64
}

// Reset clears the bounding box back to its empty state.
func (b *BBox) Reset() {
	*b = BBox{}
}

// Empty reports whether the bounding box has never been updated.
func (b *BBox) Empty() bool {
	return *b == BBox{}
}

// Update widens the bounding box to include (id, ts).
func (b *BBox) Update(id, ts uint64) {
	if b.Empty() {
		b.MinID, b.MaxID = id, id
		b.MinTS, b.MaxTS = ts, ts

		return
	}

	if id < b.MinID {
		b.MinID = id
	}

	if id > b.MaxID {
		b.MaxID = id
	}

	if ts < b.MinTS {
		b.MinTS = ts
	}

	if ts > b.MaxTS {
		b.MaxTS = ts
	}
}

// HistogramEntry is one reservoir-sampled (timestamp, entry index) pair.
type HistogramEntry struct {
	Timestamp uint64
	Index     uint32
}

// Header is the page's fixed-size on-disk header.
type Header struct {
	Version       uint32
	Count         uint32 // byte offset 4-7
	LastOffset    uint64 // byte offset 8-15
	SyncCount     uint32 // byte offset 16-19
	Checkpoint    uint32 // byte offset 20-23
	OpenCount     uint32 // byte offset 24-27
	CloseCount    uint32 // byte offset 28-31
	PageID        uint32 // byte offset 32-35
	Length        uint64 // byte offset 36-43
	BBox          BBox   // byte offset 44-75
	HistogramSize uint32 // byte offset 76-79
	Histogram     [HistogramCapacity]HistogramEntry
}

// Parse decodes a Header from exactly HeaderSize bytes.
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return ErrInvalidHeaderSize
	}

	e := endian.GetLittleEndianEngine()

	h.Version = e.Uint32(data[0:4])
	h.Count = e.Uint32(data[4:8])
	h.LastOffset = e.Uint64(data[8:16])
	h.SyncCount = e.Uint32(data[16:20])
	h.Checkpoint = e.Uint32(data[20:24])
	h.OpenCount = e.Uint32(data[24:28])
	h.CloseCount = e.Uint32(data[28:32])
	h.PageID = e.Uint32(data[32:36])
	h.Length = e.Uint64(data[36:44])
	h.BBox.MinID = e.Uint64(data[44:52])
	h.BBox.MaxID = e.Uint64(data[52:60])
	h.BBox.MinTS = e.Uint64(data[60:68])
	h.BBox.MaxTS = e.Uint64(data[68:76])
	h.HistogramSize = e.Uint32(data[76:80])

	off := fixedHeaderSize
	for i := 0; i < HistogramCapacity; i++ {
		h.Histogram[i].Timestamp = e.Uint64(data[off : off+8])
		h.Histogram[i].Index = e.Uint32(data[off+8 : off+12])
		off += histogramEntrySize
	}

	return nil
}

// Bytes serializes the Header into a freshly allocated HeaderSize buffer.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.PutBytes(b)

	return b
}

// PutBytes serializes the Header into dst, which must be exactly
// HeaderSize bytes. Used to write the header back into a page's mmap'd
// region in place.
func (h *Header) PutBytes(dst []byte) {
	e := endian.GetLittleEndianEngine()

	e.PutUint32(dst[0:4], h.Version)
	e.PutUint32(dst[4:8], h.Count)
	e.PutUint64(dst[8:16], h.LastOffset)
	e.PutUint32(dst[16:20], h.SyncCount)
	e.PutUint32(dst[20:24], h.Checkpoint)
	e.PutUint32(dst[24:28], h.OpenCount)
	e.PutUint32(dst[28:32], h.CloseCount)
	e.PutUint32(dst[32:36], h.PageID)
	e.PutUint64(dst[36:44], h.Length)
	e.PutUint64(dst[44:52], h.BBox.MinID)
	e.PutUint64(dst[52:60], h.BBox.MaxID)
	e.PutUint64(dst[60:68], h.BBox.MinTS)
	e.PutUint64(dst[68:76], h.BBox.MaxTS)
	e.PutUint32(dst[76:80], h.HistogramSize)

	off := fixedHeaderSize
	for i := 0; i < HistogramCapacity; i++ {
		e.PutUint64(dst[off:off+8], h.Histogram[i].Timestamp)
		e.PutUint32(dst[off+8:off+12], h.Histogram[i].Index)
		off += histogramEntrySize
	}
}
