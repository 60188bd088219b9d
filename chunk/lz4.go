package chunk

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; the type carries
// internal match-finding state that is expensive to reallocate per chunk.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec applies LZ4 block compression as the secondary whole-chunk
// pass. It favors low latency over ratio.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// Compress lz4-compresses data.
func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress reverses Compress, growing its scratch buffer on
// ErrInvalidSourceShortBuffer up to a 128MiB ceiling.
func (LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	const maxSize = 128 * 1024 * 1024

	for bufSize := len(data) * 4; bufSize <= maxSize; bufSize *= 2 {
		buf := make([]byte, bufSize)

		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}

		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, err
		}
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
