package page

import "github.com/macneib/Akumuli/endian"

// entryFixedSize is the {param_id, timestamp, length} prefix every entry
// carries ahead of its variable-length value.
const entryFixedSize = 8 + 8 + 4

// Entry is one page record: either a raw datapoint (param_id is an
// ordinary series id) or a chunk descriptor (param_id is ChunkFwdID or
// ChunkBwdID and Value holds an encoded ChunkDesc).
type Entry struct {
	ParamID   uint64
	Timestamp uint64
	Value     []byte
}

// Size returns the total on-disk size of the entry.
func (e *Entry) Size() int { return entryFixedSize + len(e.Value) }

// IsChunkDescriptor reports whether this entry is a chunk descriptor
// rather than a raw datapoint.
func (e *Entry) IsChunkDescriptor() bool {
	return e.ParamID == ChunkFwdID || e.ParamID == ChunkBwdID
}

// PutEntry serializes e into dst (which must be at least e.Size() bytes)
// and returns the number of bytes written.
func PutEntry(dst []byte, e *Entry) int {
	eng := endian.GetLittleEndianEngine()

	eng.PutUint64(dst[0:8], e.ParamID)
	eng.PutUint64(dst[8:16], e.Timestamp)
	eng.PutUint32(dst[16:20], uint32(len(e.Value)))
	copy(dst[20:20+len(e.Value)], e.Value)

	return entryFixedSize + len(e.Value)
}

// ParseEntry reads one entry out of src starting at offset 0. src must
// extend at least entryFixedSize+length bytes.
func ParseEntry(src []byte) Entry {
	eng := endian.GetLittleEndianEngine()

	paramID := eng.Uint64(src[0:8])
	ts := eng.Uint64(src[8:16])
	length := eng.Uint32(src[16:20])

	return Entry{
		ParamID:   paramID,
		Timestamp: ts,
		Value:     src[20 : 20+int(length)],
	}
}

// ChunkDescSize is the fixed on-disk size of a ChunkDesc payload.
const ChunkDescSize = 4 + 4 + 4 + 4

// ChunkDesc is the payload of a chunk-descriptor entry: the exact byte
// span of the encoded chunk region plus its CRC-32.
type ChunkDesc struct {
	NElements   uint32
	BeginOffset uint32
	EndOffset   uint32
	CRC32       uint32
}

// Bytes serializes the descriptor.
func (d *ChunkDesc) Bytes() []byte {
	b := make([]byte, ChunkDescSize)
	eng := endian.GetLittleEndianEngine()

	eng.PutUint32(b[0:4], d.NElements)
	eng.PutUint32(b[4:8], d.BeginOffset)
	eng.PutUint32(b[8:12], d.EndOffset)
	eng.PutUint32(b[12:16], d.CRC32)

	return b
}

// ParseChunkDesc reverses Bytes.
func ParseChunkDesc(data []byte) ChunkDesc {
	eng := endian.GetLittleEndianEngine()

	return ChunkDesc{
		NElements:   eng.Uint32(data[0:4]),
		BeginOffset: eng.Uint32(data[4:8]),
		EndOffset:   eng.Uint32(data[8:12]),
		CRC32:       eng.Uint32(data[12:16]),
	}
}
