// Package chunk implements the columnar chunk codec: an UncompressedChunk
// (parallel timestamp/paramid/value arrays) is sorted into chunk order and
// run through three of the codec package's byte-stream pipelines into one
// contiguous, CRC-32-checked byte region, and back.
package chunk

import "math"

// UncompressedChunk holds the parallel arrays backing a batch of samples
// before encoding, or after decoding. Index i across all three slices
// refers to one sample.
type UncompressedChunk struct {
	Timestamps []uint64
	ParamIDs   []uint64
	Values     []float64
}

// Len returns the number of samples in the chunk.
func (c *UncompressedChunk) Len() int { return len(c.Timestamps) }

// valueBits reinterprets the IEEE-754 float64 values as uint64 so they can
// flow through the same varint-based pipeline used for offsets; the chunk
// codec does not attempt floating-point-specific compression beyond the
// optional whole-region secondary pass (see compress.go).
func valueBits(values []float64) []uint64 {
	bits := make([]uint64, len(values))
	for i, v := range values {
		bits[i] = math.Float64bits(v)
	}

	return bits
}

func bitsToValues(bits []uint64) []float64 {
	values := make([]float64, len(bits))
	for i, b := range bits {
		values[i] = math.Float64frombits(b)
	}

	return values
}
