package dex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dexkit/endian"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
)

func TestMemberDeltas(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    []uint32
		wantErr bool
	}{
		{name: "empty", indices: nil, want: []uint32{}},
		{name: "first is absolute", indices: []uint32{3}, want: []uint32{3}},
		{name: "gaps", indices: []uint32{3, 7, 8}, want: []uint32{3, 4, 1}},
		{name: "zero first", indices: []uint32{0, 1}, want: []uint32{0, 1}},
		{name: "duplicate", indices: []uint32{2, 2}, wantErr: true},
		{name: "descending", indices: []uint32{5, 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := memberDeltas(tt.indices)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrStructuralInconsistency)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCodeItemValidate(t *testing.T) {
	tests := []struct {
		name string
		code CodeItem
		ok   bool
	}{
		{name: "plain", code: CodeItem{Insns: []byte{0x0e, 0x00}}, ok: true},
		{name: "empty body", code: CodeItem{}, ok: true},
		{name: "odd byte count", code: CodeItem{Insns: []byte{0x0e}}},
		{name: "tries without span", code: CodeItem{TriesSize: 1, Insns: []byte{0x0e, 0x00}}},
		{name: "span without tries", code: CodeItem{Insns: []byte{0x0e, 0x00}, Tries: runTries}},
		{name: "span too short", code: CodeItem{TriesSize: 2, Insns: []byte{0x0e, 0x00}, Tries: runTries}},
		{name: "with tries", code: CodeItem{TriesSize: 1, Insns: []byte{0x0e, 0x00}, Tries: runTries}, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.code.validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, errs.ErrStructuralInconsistency)
			}
		})
	}
}

func TestStringDataValue(t *testing.T) {
	sd := NewStringData("hé\U0001F600")
	require.Equal(t, uint32(4), sd.UTF16Size)

	s, err := sd.Value()
	require.NoError(t, err)
	require.Equal(t, "hé\U0001F600", s)
}

func TestAnnotationVisibility(t *testing.T) {
	require.Equal(t, uint8(1), (&AnnotationItem{Raw: []byte{0x01, 0x00, 0x00}}).Visibility())
	require.Zero(t, (&AnnotationItem{}).Visibility())
}

func TestAnnotationsRoundTrip(t *testing.T) {
	s := buildSample(t)

	param := &AnnotationSetRefList{Lists: []*AnnotationSet{nil, s.def.Annotations.ClassAnnotations}}
	mustAppend(t, s.c, param)
	s.def.Annotations.Methods = []MethodAnnotation{{MethodIdx: 1, Annotations: s.def.Annotations.ClassAnnotations}}
	s.def.Annotations.Parameters = []ParameterAnnotation{{MethodIdx: 1, Annotations: param}}

	first, parsed := roundTrip(t, s.c)
	dir := parsed.ClassDefs()[0].Annotations
	require.NotNil(t, dir)
	require.Len(t, dir.ClassAnnotations.Entries, 1)
	require.Equal(t, []byte{0x01, 0x00, 0x00}, dir.ClassAnnotations.Entries[0].Raw)
	require.Same(t, dir.ClassAnnotations, dir.Methods[0].Annotations)
	require.Nil(t, dir.Parameters[0].Annotations.Lists[0])
	require.Same(t, dir.ClassAnnotations, dir.Parameters[0].Annotations.Lists[1])

	second, err := parsed.Write()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAnnotationSetRejectsNilEntry(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	mustAppend(t, c, &AnnotationSet{Entries: []*AnnotationItem{nil}})

	_, err = c.Write()
	require.ErrorIs(t, err, errs.ErrStructuralInconsistency)
}

func TestRefFieldTarget(t *testing.T) {
	require.Equal(t, format.TypeStringDataItem, RefStringData.Target())
	require.Equal(t, format.TypeTypeList, RefInterfaces.Target())
	require.Equal(t, format.TypeAnnotationSetItem, RefClassAnnotations.Target())
	require.Equal(t, format.TypeCodeItem, RefCode.Target())
	require.Equal(t, "debug_info", RefDebugInfo.String())
	require.Equal(t, "unknown", RefField(0).String())
}

func TestCodeItemBytes(t *testing.T) {
	s := buildSample(t)
	out, err := s.c.Write()
	require.NoError(t, err)

	le := endian.GetLittleEndianEngine()
	detached, err := s.run.Code.Bytes(le)
	require.NoError(t, err)
	require.Len(t, detached, codeItemHeaderSize+6+2+len(runTries))

	// identical to the written item except for the debug info offset
	off := int(s.run.Code.Offset())
	written := out[off : off+len(detached)]
	require.NotZero(t, le.Uint32(written[8:]))
	require.Zero(t, le.Uint32(detached[8:]))
	require.Equal(t, written[:8], detached[:8])
	require.Equal(t, written[12:], detached[12:])

	_, err = (&CodeItem{Insns: []byte{0x0e}}).Bytes(le)
	require.ErrorIs(t, err, errs.ErrStructuralInconsistency)
}
