package chunk

import (
	"fmt"
	"hash/crc32"

	"github.com/macneib/Akumuli/codec"
)

// CorruptionError is raised when a chunk's CRC-32 does not match its
// recorded descriptor. Per the storage core's contract this is fatal: the
// caller is expected to let it propagate as a panic rather than attempt
// recovery, since a corrupt chunk means the backing page itself is no
// longer trustworthy.
type CorruptionError struct {
	Want, Got uint32
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("chunk: CRC-32 mismatch: want %08x, got %08x", e.Want, e.Got)
}

// Decode reverses Encode: it verifies the descriptor's CRC-32 over
// payload, optionally reverses a secondary whole-chunk compressor, then
// replays the three stream pipelines to rebuild the chunk-order parallel
// arrays and converts back to time order.
//
// Decode panics with a *CorruptionError on a CRC mismatch; this mirrors
// the storage core's "CRC mismatch on a chunk is fatal" contract rather
// than returning a recoverable error.
func Decode(payload []byte, desc Descriptor, codecImpl Codec) (*UncompressedChunk, error) {
	if got := crc32.ChecksumIEEE(payload); got != desc.CRC32 {
		panic(&CorruptionError{Want: desc.CRC32, Got: got})
	}

	raw := payload
	if codecImpl != nil {
		decompressed, err := codecImpl.Decompress(payload)
		if err != nil {
			return nil, err
		}

		raw = decompressed
	}

	n := int(desc.NElements)
	c := codec.NewCursor(raw)

	timestamps, err := codec.DecodeTimestamps(c, n)
	if err != nil {
		return nil, err
	}

	paramIDs, err := codec.DecodeParamIDs(c, n)
	if err != nil {
		return nil, err
	}

	valueDeltas, err := codec.DecodeOffsets(c, n)
	if err != nil {
		return nil, err
	}

	bits := make([]uint64, n)
	for i, d := range valueDeltas {
		bits[i] = uint64(d)
	}

	ordered := &UncompressedChunk{
		Timestamps: timestamps,
		ParamIDs:   paramIDs,
		Values:     bitsToValues(bits),
	}

	return ToTimeOrder(ordered), nil
}
