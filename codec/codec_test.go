package codec_test

import (
	"testing"

	"github.com/macneib/Akumuli/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZigZagRoundTrip(t *testing.T) {
	vals := []int64{0, 1, -1, 2, -2, 1<<62 - 1, -(1 << 62)}

	for _, v := range vals {
		got := codec.ZigZagDecode(codec.ZigZagEncode(v))
		assert.Equal(t, v, got)
	}
}

func TestVarintRoundTrip(t *testing.T) {
	w := codec.NewBoundedWriter(64)
	vals := []uint64{0, 1, 127, 128, 300, 1 << 40}

	for _, v := range vals {
		require.NoError(t, codec.PutUvarint(w, v))
	}

	c := codec.NewCursor(w.Bytes())

	for _, want := range vals {
		got, err := codec.ReadUvarint(c)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestVarintOverrun(t *testing.T) {
	c := codec.NewCursor(nil)
	_, err := codec.ReadUvarint(c)
	assert.ErrorIs(t, err, codec.ErrStreamOutOfBounds)
}

func TestBoundedWriterRejectsOverflow(t *testing.T) {
	w := codec.NewBoundedWriter(1)
	require.NoError(t, w.WriteByte(1))
	assert.ErrorIs(t, w.WriteByte(2), codec.ErrStreamOutOfBounds)
}

func TestEncodeDecodeTimestamps(t *testing.T) {
	tests := []struct {
		name string
		ts   []uint64
	}{
		{"empty", nil},
		{"single", []uint64{1000}},
		{"monotonic", []uint64{1000, 1010, 1020, 1030, 1040}},
		{"constant_run", []uint64{5, 5, 5, 5, 5}},
		{"late_write", []uint64{1000, 1010, 1005, 1020}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := codec.NewBoundedWriter(4096)
			require.NoError(t, codec.EncodeTimestamps(tt.ts, w))

			c := codec.NewCursor(w.Bytes())
			got, err := codec.DecodeTimestamps(c, len(tt.ts))
			require.NoError(t, err)
			assert.Equal(t, tt.ts, got)
		})
	}
}

func TestEncodeDecodeParamIDs(t *testing.T) {
	ids := []uint64{42, 42, 7, 1 << 50, 0}

	w := codec.NewBoundedWriter(4096)
	require.NoError(t, codec.EncodeParamIDs(ids, w))

	c := codec.NewCursor(w.Bytes())
	got, err := codec.DecodeParamIDs(c, len(ids))
	require.NoError(t, err)
	assert.Equal(t, ids, got)
}

func TestEncodeDecodeLengths(t *testing.T) {
	lens := []uint64{8, 8, 8, 8, 16, 16, 4}

	w := codec.NewBoundedWriter(4096)
	require.NoError(t, codec.EncodeLengths(lens, w))

	c := codec.NewCursor(w.Bytes())
	got, err := codec.DecodeLengths(c, len(lens))
	require.NoError(t, err)
	assert.Equal(t, lens, got)
}

func TestEncodeDecodeOffsets(t *testing.T) {
	offsets := []int64{0, 8, 16, 24, 24, 20}

	w := codec.NewBoundedWriter(4096)
	require.NoError(t, codec.EncodeOffsets(offsets, w))

	c := codec.NewCursor(w.Bytes())
	got, err := codec.DecodeOffsets(c, len(offsets))
	require.NoError(t, err)
	assert.Equal(t, offsets, got)
}

func TestDecodeTruncatedStreamFails(t *testing.T) {
	w := codec.NewBoundedWriter(4096)
	require.NoError(t, codec.EncodeTimestamps([]uint64{1, 2, 3}, w))

	truncated := w.Bytes()[:len(w.Bytes())-1]
	c := codec.NewCursor(truncated)

	_, err := codec.DecodeTimestamps(c, 3)
	assert.Error(t, err)
}
