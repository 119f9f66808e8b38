package encoding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/internal/cursor"
)

func TestAppendUleb128Vectors(t *testing.T) {
	tests := []struct {
		value uint32
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16256, []byte{0x80, 0x7f}},
		{math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}

	for _, tt := range tests {
		got := AppendUleb128(nil, tt.value)
		require.Equal(t, tt.want, got, "value %d", tt.value)
		require.Equal(t, len(tt.want), Uleb128Size(tt.value))

		c := cursor.New(0, 1)
		v, err := ReadUleb128(got, c)
		require.NoError(t, err)
		require.Equal(t, tt.value, v)
		require.Equal(t, len(got), c.Pos())
	}
}

func TestSleb128Vectors(t *testing.T) {
	tests := []struct {
		value int32
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{-1, []byte{0x7f}},
		{-128, []byte{0x80, 0x7f}},
		{63, []byte{0x3f}},
		{64, []byte{0xc0, 0x00}},
		{-64, []byte{0x40}},
		{-65, []byte{0xbf, 0x7f}},
	}

	for _, tt := range tests {
		got := AppendSleb128(nil, tt.value)
		require.Equal(t, tt.want, got, "value %d", tt.value)

		c := cursor.New(0, 1)
		v, err := ReadSleb128(got, c)
		require.NoError(t, err)
		require.Equal(t, tt.value, v)
		require.Equal(t, len(got), c.Pos())
	}
}

func TestLeb128RoundTrip(t *testing.T) {
	unsigned := []uint32{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 0x1fffff, 0x200000, 0xfffffff, 0x10000000, math.MaxUint32}
	for _, v := range unsigned {
		buf := AppendUleb128([]byte{0xee}, v)
		c := cursor.New(1, 1)
		got, err := ReadUleb128(buf, c)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	signed := []int32{0, 1, -1, 63, -64, 64, -65, 8191, -8192, math.MaxInt32, math.MinInt32}
	for _, v := range signed {
		buf := AppendSleb128(nil, v)
		got, err := ReadSleb128(buf, cursor.New(0, 1))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestUleb128p1(t *testing.T) {
	buf := AppendUleb128p1(nil, -1)
	require.Equal(t, []byte{0x00}, buf)

	v, err := ReadUleb128p1(buf, cursor.New(0, 1))
	require.NoError(t, err)
	require.Equal(t, int32(-1), v)

	buf = AppendUleb128p1(nil, 299)
	require.Equal(t, []byte{0xac, 0x02}, buf)
	v, err = ReadUleb128p1(buf, cursor.New(0, 1))
	require.NoError(t, err)
	require.Equal(t, int32(299), v)
}

func TestReadUleb128Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "truncated", data: []byte{0x80}},
		{name: "truncated long", data: []byte{0xff, 0xff, 0xff}},
		{name: "six groups", data: []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}},
		{name: "fifth group overflows", data: []byte{0xff, 0xff, 0xff, 0xff, 0x1f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadUleb128(tt.data, cursor.New(0, 1))
			require.ErrorIs(t, err, errs.ErrMalformedVarint)
		})
	}
}

func TestReadSleb128Malformed(t *testing.T) {
	_, err := ReadSleb128([]byte{0x80, 0x80}, cursor.New(0, 1))
	require.ErrorIs(t, err, errs.ErrMalformedVarint)

	_, err = ReadSleb128([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, cursor.New(0, 1))
	require.ErrorIs(t, err, errs.ErrMalformedVarint)
}

func TestSkipLeb128(t *testing.T) {
	var buf []byte
	buf = AppendUleb128(buf, 300)
	buf = AppendSleb128(buf, -1)
	buf = AppendUleb128(buf, math.MaxUint32)

	c := cursor.New(0, 1)
	require.NoError(t, SkipLeb128(buf, c, 3))
	require.Equal(t, len(buf), c.Pos())

	require.ErrorIs(t, SkipLeb128(buf, cursor.New(0, 1), 4), errs.ErrMalformedVarint)
}
