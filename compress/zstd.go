package compress

// ZstdCompressor is the Zstandard codec. The implementation is selected at build
// time: pure Go (klauspost/compress/zstd) by default, or cgo (valyala/gozstd)
// when built with cgo and the gozstd tag.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor returns a Zstandard codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
