package chunk

import (
	"hash/crc32"

	"github.com/macneib/Akumuli/codec"
)

// Descriptor is the per-chunk index entry recorded by the page: the exact
// byte span of the encoded region plus its CRC-32, and the element count
// needed to size the decode.
type Descriptor struct {
	NElements   uint32
	BeginOffset uint32
	EndOffset   uint32
	CRC32       uint32
}

// Encode sorts c into chunk order and emits its three streams
// (timestamps, paramids, values) back to back into one contiguous region,
// optionally passing the result through a secondary whole-chunk
// compressor (see compress.go). It returns the encoded bytes and the
// descriptor fields a caller should record (offsets are relative to the
// returned slice; a page adds its own base offset).
func Encode(c *UncompressedChunk, codecImpl Codec) ([]byte, Descriptor, error) {
	ordered := ToChunkOrder(c)
	n := ordered.Len()

	bound := n*binaryEnvelopeBound() + 64
	w := codec.NewBoundedWriter(bound)

	if err := codec.EncodeTimestamps(ordered.Timestamps, w); err != nil {
		return nil, Descriptor{}, err
	}

	if err := codec.EncodeParamIDs(ordered.ParamIDs, w); err != nil {
		return nil, Descriptor{}, err
	}

	valueDeltas := make([]int64, n)
	for i, v := range valueBits(ordered.Values) {
		valueDeltas[i] = int64(v)
	}

	if err := codec.EncodeOffsets(valueDeltas, w); err != nil {
		return nil, Descriptor{}, err
	}

	raw := w.Bytes()

	payload := raw
	if codecImpl != nil {
		compressed, err := codecImpl.Compress(raw)
		if err != nil {
			return nil, Descriptor{}, err
		}

		payload = compressed
	}

	desc := Descriptor{
		NElements: uint32(n),
		CRC32:     crc32.ChecksumIEEE(payload),
		EndOffset: uint32(len(payload)),
	}

	return payload, desc, nil
}

// binaryEnvelopeBound is a conservative per-element upper bound (worst
// case varint width for a timestamp delta, a paramid, and a value bit
// pattern, each up to 10 bytes, plus a 1-byte RLE run count for each of
// the two RLE-coded streams) used to size the scratch writer before the
// true encoded length is known.
func binaryEnvelopeBound() int { return 32 }
