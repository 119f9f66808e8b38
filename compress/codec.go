package compress

import (
	"fmt"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
)

// Compressor compresses one payload at a time.
//
// The returned slice is owned by the caller. The input is never modified, but a
// codec may return it unchanged (see NoOpCompressor).
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm.
//
// Decompress returns an error when data is corrupted or was produced by another
// algorithm. Implementations in this package are safe for concurrent use.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of one algorithm.
type Codec interface {
	Compressor
	Decompressor
}

// Stats accumulates payload sizes for one algorithm.
type Stats struct {
	// Algorithm identifies the codec the sizes were measured with.
	Algorithm format.CompressionType
	// OriginalSize is the total size of the payloads before compression.
	OriginalSize int64
	// CompressedSize is the total size of the payloads after compression.
	CompressedSize int64
}

// Add records one payload.
func (s *Stats) Add(original, compressed int) {
	s.OriginalSize += int64(original)
	s.CompressedSize += int64(compressed)
}

// Ratio returns compressed size over original size, 0 when nothing was recorded.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the saved space as a percentage of the original size.
func (s Stats) SpaceSavings() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return (1.0 - s.Ratio()) * 100.0
}

// CreateCodec returns a new codec for compressionType.
//
// Parameters:
//   - compressionType: One of format.CompressionNone, Zstd, S2 or LZ4
//   - target: What the codec is for, used in the error message
//
// Returns:
//   - Codec: The codec
//   - error: ErrUnsupportedEncoding for unknown types
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s compression %s", errs.ErrUnsupportedEncoding, target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared built-in codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: compression %s", errs.ErrUnsupportedEncoding, compressionType)
}
