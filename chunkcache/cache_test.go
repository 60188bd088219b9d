package chunkcache

import (
	"errors"
	"testing"

	"github.com/macneib/Akumuli/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChunk(n int) *chunk.UncompressedChunk {
	c := &chunk.UncompressedChunk{}
	for i := 0; i < n; i++ {
		c.Timestamps = append(c.Timestamps, uint64(i))
		c.ParamIDs = append(c.ParamIDs, 1)
		c.Values = append(c.Values, float64(i))
	}

	return c
}

func TestPutAndGet(t *testing.T) {
	c := New(1 << 20)
	key := Key{PageID: 1, ChunkOffset: 100}

	assert.False(t, c.Contains(key))

	c.Put(key, sampleChunk(4))

	assert.True(t, c.Contains(key))
	got := c.Get(key)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.Len())
}

func TestGetMissReturnsNil(t *testing.T) {
	c := New(1 << 20)
	assert.Nil(t, c.Get(Key{PageID: 1, ChunkOffset: 1}))
}

func TestEvictsOldestOnOverflow(t *testing.T) {
	chunkBytes := chunkSize(sampleChunk(10))
	c := New(chunkBytes + 1)

	k1 := Key{PageID: 1, ChunkOffset: 0}
	k2 := Key{PageID: 1, ChunkOffset: 1}

	c.Put(k1, sampleChunk(10))
	c.Put(k2, sampleChunk(10))

	assert.False(t, c.Contains(k1))
	assert.True(t, c.Contains(k2))
}

func TestPutIgnoresDuplicateKey(t *testing.T) {
	c := New(1 << 20)
	key := Key{PageID: 1, ChunkOffset: 0}

	c.Put(key, sampleChunk(4))
	c.Put(key, sampleChunk(999))

	assert.Equal(t, 4, c.Get(key).Len())
}

func TestResolveCachesDecodeResult(t *testing.T) {
	c := New(1 << 20)
	calls := 0

	decode := func() (*chunk.UncompressedChunk, error) {
		calls++
		return sampleChunk(2), nil
	}

	got, err := c.Resolve(1, 5, decode)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())

	got2, err := c.Resolve(1, 5, decode)
	require.NoError(t, err)
	assert.Equal(t, 2, got2.Len())
	assert.Equal(t, 1, calls)
}

func TestResolvePropagatesDecodeError(t *testing.T) {
	c := New(1 << 20)
	wantErr := errors.New("corrupt")

	_, err := c.Resolve(1, 5, func() (*chunk.UncompressedChunk, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, c.Contains(Key{PageID: 1, ChunkOffset: 5}))
}
