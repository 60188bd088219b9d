//go:build !cgo

package chunk

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("chunk: failed to create zstd decoder: %v", err))
		}

		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		)
		if err != nil {
			panic(fmt.Sprintf("chunk: failed to create zstd encoder: %v", err))
		}

		return encoder
	},
}

// ZstdCodec applies Zstandard compression as the secondary whole-chunk
// pass, trading latency for ratio. Intended for volumes rotated out of the
// active slot, where writes have stopped but reads (and their CRC checks)
// continue.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

// Compress zstd-compresses data using a pooled encoder.
func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	return encoder.EncodeAll(data, nil), nil
}

// Decompress reverses Compress using a pooled decoder.
func (ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("chunk: zstd decompression failed: %w", err)
	}

	return decompressed, nil
}
