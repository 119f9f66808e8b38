// Package compress provides the payload codecs used by the code store.
//
// Four algorithms are available, selected by format.CompressionType:
//
//   - None: payloads are stored as they are
//   - Zstd: best ratio; pure Go by default, cgo gozstd with -tags gozstd
//   - S2: fast with a good ratio
//   - LZ4: fastest decompression
//
// Method bodies are small and repetitive, so Zstd usually wins on size while S2
// and LZ4 keep archive reads cheap.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//	...
//	payload, err = codec.Decompress(packed)
//
// GetCodec returns shared instances; every codec in this package is safe for
// concurrent use. Unknown types fail with errs.ErrUnsupportedEncoding.
package compress
