package chunk_test

import (
	"testing"

	"github.com/macneib/Akumuli/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChunk() *chunk.UncompressedChunk {
	return &chunk.UncompressedChunk{
		Timestamps: []uint64{100, 100, 101, 103, 103},
		ParamIDs:   []uint64{5, 2, 2, 5, 2},
		Values:     []float64{1.5, 2.5, 2.6, 1.6, 2.7},
	}
}

func TestToChunkOrderSortsByParamThenTime(t *testing.T) {
	c := sampleChunk()
	ordered := chunk.ToChunkOrder(c)

	assert.Equal(t, []uint64{2, 2, 2, 5, 5}, ordered.ParamIDs)
	assert.Equal(t, []uint64{100, 101, 103, 100, 103}, ordered.Timestamps)
}

func TestToTimeOrderSortsByTimeThenParam(t *testing.T) {
	c := chunk.ToChunkOrder(sampleChunk())
	ordered := chunk.ToTimeOrder(c)

	assert.Equal(t, []uint64{100, 100, 101, 103, 103}, ordered.Timestamps)
	assert.Equal(t, []uint64{2, 5, 2, 2, 5}, ordered.ParamIDs)
}

func TestOrderConversionsPreserveMultiset(t *testing.T) {
	c := sampleChunk()
	roundTrip := chunk.ToTimeOrder(chunk.ToChunkOrder(c))

	assert.ElementsMatch(t, c.Timestamps, roundTrip.Timestamps)
	assert.ElementsMatch(t, c.ParamIDs, roundTrip.ParamIDs)
	assert.ElementsMatch(t, c.Values, roundTrip.Values)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codecs := map[string]chunk.Codec{
		"none": chunk.NoOpCodec{},
		"lz4":  chunk.LZ4Codec{},
	}

	for name, codecImpl := range codecs {
		t.Run(name, func(t *testing.T) {
			c := sampleChunk()

			payload, desc, err := chunk.Encode(c, codecImpl)
			require.NoError(t, err)
			assert.EqualValues(t, c.Len(), desc.NElements)

			got, err := chunk.Decode(payload, desc, codecImpl)
			require.NoError(t, err)

			assert.Equal(t, c.Timestamps, got.Timestamps)
			assert.Equal(t, c.ParamIDs, got.ParamIDs)
			assert.Equal(t, c.Values, got.Values)
		})
	}
}

func TestDecodeDetectsCorruption(t *testing.T) {
	c := sampleChunk()
	payload, desc, err := chunk.Encode(c, nil)
	require.NoError(t, err)

	desc.CRC32 ^= 0xFFFFFFFF

	assert.Panics(t, func() {
		_, _ = chunk.Decode(payload, desc, nil)
	})
}

func TestEmptyChunkRoundTrips(t *testing.T) {
	c := &chunk.UncompressedChunk{}

	payload, desc, err := chunk.Encode(c, nil)
	require.NoError(t, err)

	got, err := chunk.Decode(payload, desc, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}
