package compress

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

// codePayload mimics a run of method bodies: a code item header followed by
// repetitive 16-bit instructions.
func codePayload(methods int) []byte {
	var buf bytes.Buffer
	for i := range methods {
		buf.Write([]byte{0x02, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00})
		buf.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00})
		buf.Write([]byte{0x70, 0x10, byte(i), 0x00, 0x01, 0x00, 0x0e, 0x00})
	}

	return buf.Bytes()
}

func randomPayload(size int) []byte {
	r := rand.New(rand.NewPCG(1, 2)) //nolint:gosec
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(r.UintN(256))
	}

	return out
}

func TestCodecRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"single byte": {0x0e},
		"code items":  codePayload(200),
		"random":      randomPayload(4096),
		"zeros":       make([]byte, 64*1024),
	}

	for _, typ := range allTypes {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		for name, data := range payloads {
			t.Run(typ.String()+"/"+name, func(t *testing.T) {
				packed, err := codec.Compress(data)
				require.NoError(t, err)

				got, err := codec.Decompress(packed)
				require.NoError(t, err)
				require.Equal(t, data, got)
			})
		}
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, typ := range []format.CompressionType{format.CompressionS2, format.CompressionLZ4} {
		codec, err := CreateCodec(typ, "test")
		require.NoError(t, err)

		packed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Nil(t, packed)

		got, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Nil(t, got, typ.String())
	}

	got, err := NewZstdCompressor().Decompress(nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCodecCompressesCode(t *testing.T) {
	data := codePayload(500)
	for _, typ := range allTypes[1:] {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		packed, err := codec.Compress(data)
		require.NoError(t, err)
		require.Less(t, len(packed), len(data)/2, typ.String())
	}
}

func TestCodecCorruptInput(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03}
	// LZ4 blocks carry no framing, so garbage is only detected as a short buffer
	for _, typ := range []format.CompressionType{format.CompressionZstd, format.CompressionS2} {
		codec, err := GetCodec(typ)
		require.NoError(t, err)

		_, err = codec.Decompress(garbage)
		require.Error(t, err, typ.String())
	}
}

func TestNoOpSharesInput(t *testing.T) {
	data := []byte{1, 2, 3}
	packed, err := NewNoOpCompressor().Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &packed[0])
}

func TestCreateCodecUnknown(t *testing.T) {
	_, err := CreateCodec(format.CompressionType(0x7f), "payload")
	require.ErrorIs(t, err, errs.ErrUnsupportedEncoding)
	require.Contains(t, err.Error(), "payload")

	_, err = GetCodec(0)
	require.ErrorIs(t, err, errs.ErrUnsupportedEncoding)
}

func TestStats(t *testing.T) {
	var s Stats
	require.Zero(t, s.Ratio())
	require.Zero(t, s.SpaceSavings())

	s.Add(1000, 200)
	s.Add(1000, 300)
	require.InDelta(t, 0.25, s.Ratio(), 1e-9)
	require.InDelta(t, 75.0, s.SpaceSavings(), 1e-9)
}
