package dexkit

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dexkit/codestore"
	"github.com/arloliu/dexkit/dex"
	"github.com/arloliu/dexkit/endian"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
)

// buildContainer returns a container with one class LMain; defining
// add(I)I and add()I (both with code) and an abstract method run()V.
func buildContainer(t *testing.T) *dex.Container {
	t.Helper()
	c, err := New()
	require.NoError(t, err)

	add := func(item dex.Item) {
		_, err := c.AppendItem(item)
		require.NoError(t, err)
	}

	// sorted string table: I, II, LMain;, V, add, run
	for _, s := range []string{"I", "II", "LMain;", "V", "add", "run"} {
		data := dex.NewStringData(s)
		add(data)
		add(&dex.StringID{Data: data})
	}
	add(&dex.TypeID{DescriptorIdx: 0}) // I
	add(&dex.TypeID{DescriptorIdx: 2}) // LMain;
	add(&dex.TypeID{DescriptorIdx: 3}) // V

	params := &dex.TypeList{Types: []uint16{0}}
	add(params)
	add(&dex.ProtoID{ShortyIdx: 0, ReturnTypeIdx: 0})
	add(&dex.ProtoID{ShortyIdx: 1, ReturnTypeIdx: 0, Parameters: params})
	add(&dex.ProtoID{ShortyIdx: 3, ReturnTypeIdx: 2})

	add(&dex.MethodID{ClassIdx: 1, ProtoIdx: 0, NameIdx: 4}) // add()I
	add(&dex.MethodID{ClassIdx: 1, ProtoIdx: 1, NameIdx: 4}) // add(I)I
	add(&dex.MethodID{ClassIdx: 1, ProtoIdx: 2, NameIdx: 5}) // run()V

	noArgs := &dex.CodeItem{RegistersSize: 1, Insns: []byte{0x12, 0x00, 0x0f, 0x00}}
	oneArg := &dex.CodeItem{RegistersSize: 2, InsSize: 1, Insns: []byte{0x0f, 0x01}}
	add(noArgs)
	add(oneArg)

	classData := &dex.ClassData{VirtualMethods: []*dex.EncodedMethod{
		{MethodIdx: 0, AccessFlags: format.AccPublic, Code: noArgs},
		{MethodIdx: 1, AccessFlags: format.AccPublic, Code: oneArg},
		{MethodIdx: 2, AccessFlags: format.AccPublic | format.AccAbstract},
	}}
	add(classData)
	add(&dex.ClassDef{
		ClassIdx:      1,
		AccessFlags:   format.AccPublic | format.AccAbstract,
		SuperclassIdx: format.NoIndex,
		SourceFileIdx: format.NoIndex,
		ClassData:     classData,
	})

	return c
}

func TestNativizeArchivesCode(t *testing.T) {
	c := buildContainer(t)
	store, err := codestore.NewWriter(codestore.WithCompression(format.CompressionS2))
	require.NoError(t, err)

	m, _, ok := c.MethodDefinition(1)
	require.True(t, ok)
	want, err := m.Code.Bytes(endian.GetLittleEndianEngine())
	require.NoError(t, err)

	report, err := Nativize(c, []string{"LMain;->add(I)I"}, store)
	require.NoError(t, err)
	require.Equal(t, []string{"LMain;->add(I)I"}, report.Methods)
	require.Empty(t, report.Skipped)
	require.Equal(t, len(want), report.CodeBytes)

	data, err := store.Bytes()
	require.NoError(t, err)
	archive, err := codestore.Read(data)
	require.NoError(t, err)
	got, err := archive.File("LMain;->add(I)I")
	require.NoError(t, err)
	require.Equal(t, want, got)

	out, err := c.Write()
	require.NoError(t, err)
	parsed, err := Parse(out, dex.WithVerifyChecksum(true))
	require.NoError(t, err)
	require.Equal(t, 1, parsed.Registry().Codes.Len())

	stripped, _, ok := parsed.MethodDefinition(1)
	require.True(t, ok)
	require.Nil(t, stripped.Code)
	require.True(t, stripped.AccessFlags.Has(format.AccNative))

	kept, _, ok := parsed.MethodDefinition(0)
	require.True(t, ok)
	require.NotNil(t, kept.Code)
}

func TestNativizeOverloadsAndSkips(t *testing.T) {
	c := buildContainer(t)

	report, err := Nativize(c, []string{"LMain;->add", "LMain;->add()I", "LMain;->run"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"LMain;->add()I", "LMain;->add(I)I"}, report.Methods)
	require.Equal(t, []string{"LMain;->run()V"}, report.Skipped)

	_, err = c.Write()
	require.NoError(t, err)
	require.Zero(t, c.Registry().Codes.Len())
}

func TestNativizeUnknownMethod(t *testing.T) {
	c := buildContainer(t)

	_, err := Nativize(c, []string{"LMain;->missing"}, nil)
	require.ErrorIs(t, err, errs.ErrUnknownItem)

	_, err = Nativize(c, []string{"not a method"}, nil)
	require.ErrorIs(t, err, errs.ErrUnknownItem)
}

func TestOpenWrapsIO(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.dex"))
	require.ErrorIs(t, err, errs.ErrIO)
}

func TestParseDoesNotRetainInput(t *testing.T) {
	data, err := buildContainer(t).Write()
	require.NoError(t, err)
	want := slices.Clone(data)

	c, err := Parse(data, dex.WithVerifyChecksum(true))
	require.NoError(t, err)
	clear(data)

	out, err := c.Write()
	require.NoError(t, err)
	require.Equal(t, want, out)

	sig, err := c.MethodSignature(0)
	require.NoError(t, err)
	require.Equal(t, "LMain;->add()I", sig)
}
