package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
	"github.com/arloliu/dexkit/internal/cursor"
)

func valueHeader(t format.EncodedValueType, arg uint8) byte {
	return arg<<5 | byte(t)
}

func TestSkipEncodedValue(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "byte", data: []byte{valueHeader(format.ValueByte, 0), 0x7f}},
		{name: "int 3 bytes", data: []byte{valueHeader(format.ValueInt, 2), 1, 2, 3}},
		{name: "long 8 bytes", data: []byte{valueHeader(format.ValueLong, 7), 1, 2, 3, 4, 5, 6, 7, 8}},
		{name: "string", data: []byte{valueHeader(format.ValueString, 1), 0x10, 0x00}},
		{name: "method handle", data: []byte{valueHeader(format.ValueMethodHandle, 0), 0x01}},
		{name: "null", data: []byte{valueHeader(format.ValueNull, 0)}},
		{name: "boolean true", data: []byte{valueHeader(format.ValueBoolean, 1)}},
		{
			name: "array of two",
			data: []byte{
				valueHeader(format.ValueArray, 0), 0x02,
				valueHeader(format.ValueInt, 0), 0x05,
				valueHeader(format.ValueNull, 0),
			},
		},
		{
			name: "nested annotation",
			data: []byte{
				valueHeader(format.ValueAnnotation, 0), 0x03, 0x01,
				0x04, valueHeader(format.ValueBoolean, 0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append(append([]byte{}, tt.data...), 0xaa)
			c := cursor.New(0, 1)
			require.NoError(t, SkipEncodedValue(data, c))
			require.Equal(t, len(tt.data), c.Pos())
		})
	}
}

func TestSkipEncodedValueErrors(t *testing.T) {
	err := SkipEncodedValue([]byte{0x05}, cursor.New(0, 1))
	require.ErrorIs(t, err, errs.ErrUnsupportedEncoding)

	err = SkipEncodedValue([]byte{valueHeader(format.ValueLong, 7), 1, 2}, cursor.New(0, 1))
	require.ErrorIs(t, err, errs.ErrTruncatedItem)

	err = SkipEncodedValue(nil, cursor.New(0, 1))
	require.ErrorIs(t, err, errs.ErrTruncatedItem)
}

func TestSkipAnnotationItem(t *testing.T) {
	data := []byte{
		0x01,       // visibility
		0x02, 0x02, // type, size
		0x00, valueHeader(format.ValueByte, 0), 0x01,
		0x01, valueHeader(format.ValueArray, 0), 0x00,
	}
	c := cursor.New(0, 1)
	require.NoError(t, SkipAnnotationItem(data, c))
	require.Equal(t, len(data), c.Pos())

	require.ErrorIs(t, SkipAnnotationItem(nil, cursor.New(0, 1)), errs.ErrTruncatedItem)
}

func TestSkipEncodedArray(t *testing.T) {
	data := []byte{0x03, valueHeader(format.ValueShort, 1), 0x01, 0x02, valueHeader(format.ValueNull, 0), valueHeader(format.ValueType, 0), 0x09}
	c := cursor.New(0, 1)
	require.NoError(t, SkipEncodedArray(data, c))
	require.Equal(t, len(data), c.Pos())
}

func TestSkipDebugInfo(t *testing.T) {
	data := []byte{
		0x0a,       // line_start
		0x02,       // parameters_size
		0x00, 0x05, // parameter names (uleb128p1)
		format.DbgAdvancePC, 0x02,
		format.DbgAdvanceLine, 0x7f,
		format.DbgStartLocal, 0x01, 0x02, 0x03,
		format.DbgStartLocalExt, 0x01, 0x02, 0x03, 0x04,
		format.DbgSetPrologueEnd,
		format.DbgSetFile, 0x00,
		0x1f, // special
		format.DbgEndSequence,
	}
	c := cursor.New(0, 1)
	require.NoError(t, SkipDebugInfo(append(data, 0xff), c))
	require.Equal(t, len(data), c.Pos())

	require.ErrorIs(t, SkipDebugInfo(data[:len(data)-1], cursor.New(0, 1)), errs.ErrTruncatedItem)
}

func TestSkipCatchHandlerList(t *testing.T) {
	var data []byte
	data = AppendUleb128(data, 2)
	// typed handler with one pair
	data = AppendSleb128(data, 1)
	data = AppendUleb128(data, 7)
	data = AppendUleb128(data, 0x20)
	// one pair plus catch-all
	data = AppendSleb128(data, -1)
	data = AppendUleb128(data, 3)
	data = AppendUleb128(data, 0x30)
	data = AppendUleb128(data, 0x40)

	c := cursor.New(0, 1)
	require.NoError(t, SkipCatchHandlerList(data, c))
	require.Equal(t, len(data), c.Pos())

	require.ErrorIs(t, SkipCatchHandlerList(data[:len(data)-1], cursor.New(0, 1)), errs.ErrMalformedVarint)
}
