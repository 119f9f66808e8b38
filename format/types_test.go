package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/dexkit/errs"
)

func TestSectionClassification(t *testing.T) {
	for _, tag := range IndexSections {
		assert.True(t, tag.IsIndex(), tag.String())
		assert.False(t, tag.IsData(), tag.String())
		assert.NotZero(t, tag.EntrySize(), tag.String())
	}
	for _, tag := range DataSections {
		assert.True(t, tag.IsData(), tag.String())
		assert.False(t, tag.IsIndex(), tag.String())
		assert.Zero(t, tag.EntrySize(), tag.String())
	}

	assert.True(t, TypeHeaderItem.IsKnown())
	assert.True(t, TypeMapList.IsKnown())
	assert.False(t, TypeMapList.IsData())
	assert.False(t, SectionType(0x7777).IsKnown())
}

func TestSectionEntrySizes(t *testing.T) {
	tests := []struct {
		tag  SectionType
		want int
	}{
		{TypeStringIDItem, 4},
		{TypeTypeIDItem, 4},
		{TypeProtoIDItem, 12},
		{TypeFieldIDItem, 8},
		{TypeMethodIDItem, 8},
		{TypeClassDefItem, 32},
	}

	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			require.Equal(t, tt.want, tt.tag.EntrySize())
		})
	}
}

func TestSectionItemAlignment(t *testing.T) {
	aligned := []SectionType{
		TypeTypeList, TypeAnnotationSetItem, TypeAnnotationSetRefList,
		TypeAnnotationsDirectoryItem, TypeCodeItem, TypeMapList,
	}
	for _, tag := range aligned {
		assert.Equal(t, 4, tag.ItemAlignment(), tag.String())
	}

	packed := []SectionType{
		TypeStringDataItem, TypeAnnotationItem, TypeEncodedArrayItem,
		TypeDebugInfoItem, TypeClassDataItem,
	}
	for _, tag := range packed {
		assert.Equal(t, 1, tag.ItemAlignment(), tag.String())
	}
}

func TestPayloadSize(t *testing.T) {
	n, ok := ValueInt.PayloadSize(3)
	require.True(t, ok)
	require.Equal(t, 4, n)

	n, ok = ValueByte.PayloadSize(0)
	require.True(t, ok)
	require.Equal(t, 1, n)

	for _, v := range []EncodedValueType{ValueArray, ValueAnnotation, ValueNull, ValueBoolean, 0x05} {
		_, ok := v.PayloadSize(0)
		assert.False(t, ok)
	}
}

func TestAccessFlagsHas(t *testing.T) {
	flags := AccPublic | AccStatic | AccNative
	require.True(t, flags.Has(AccStatic))
	require.True(t, flags.Has(AccPublic|AccNative))
	require.False(t, flags.Has(AccAbstract))
	require.False(t, flags.Has(AccStatic|AccFinal))
}

func TestParseCompressionType(t *testing.T) {
	tests := []struct {
		name string
		want CompressionType
	}{
		{"none", CompressionNone},
		{"", CompressionNone},
		{"ZSTD", CompressionZstd},
		{"s2", CompressionS2},
		{"Lz4", CompressionLZ4},
	}

	for _, tt := range tests {
		got, err := ParseCompressionType(tt.name)
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.want, got, tt.name)
		if tt.name != "" {
			require.Equal(t, tt.want, mustParse(t, got.String()))
		}
	}

	_, err := ParseCompressionType("brotli")
	require.ErrorIs(t, err, errs.ErrUnsupportedEncoding)
	require.Equal(t, "Unknown", CompressionType(0).String())
}

func mustParse(t *testing.T, name string) CompressionType {
	t.Helper()
	c, err := ParseCompressionType(name)
	require.NoError(t, err)

	return c
}
