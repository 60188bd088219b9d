//go:build nobuild

package chunk

import "github.com/valyala/gozstd"

// ZstdCodec, cgo variant: not wired into any build (see DESIGN.md) but
// kept as the grounded alternative to the pure-Go implementation in
// zstd_pure.go, matching the teacher's own disabled cgo path.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

func (ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
