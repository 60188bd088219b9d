package chunk

// Codec is the optional secondary whole-chunk compressor applied to the
// already varint/delta/RLE-encoded byte region. Unlike the per-stream
// pipelines in package codec, a Codec operates on the finished region as
// an opaque blob, trading a second compression pass for extra density on
// top of what the column codecs already achieved.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// NoOpCodec bypasses secondary compression entirely. It is the default:
// the four-stream column codec already does most of the compression work,
// and a page's free-region accounting assumes the Encode output size is
// known without invoking a compressor.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

// Compress returns data unchanged.
func (NoOpCodec) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress returns data unchanged.
func (NoOpCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
