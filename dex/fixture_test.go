package dex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dexkit/format"
)

// sample is a small container built in memory:
//
//	class LMain; extends Ljava/lang/Object;
//	    public static void run()    three code units with one try block
//	    public void stop()          return-void, shares debug info with run
type sample struct {
	c      *Container
	def    *ClassDef
	run    *EncodedMethod
	stop   *EncodedMethod
	debug  *DebugInfo
	params *TypeList
}

var sampleStrings = []string{"LMain;", "Ljava/lang/Object;", "V", "run", "stop", "Main.java", "I"}

const (
	strMain = iota
	strObject
	strVoid
	strRun
	strStop
	strSourceFile
	strInt
)

// runTries is one try item covering three code units with a catch-all handler at
// address 2, followed by its handler list.
var runTries = []byte{
	0x00, 0x00, 0x00, 0x00, // start_addr
	0x03, 0x00, // insn_count
	0x01, 0x00, // handler_off
	0x01,       // handler list size
	0x00, 0x02, // catch-all handler at address 2
}

func mustAppend(t *testing.T, c *Container, item Item) uint32 {
	t.Helper()
	key, err := c.AppendItem(item)
	require.NoError(t, err)

	return key
}

func appendString(t *testing.T, c *Container, s string) uint32 {
	t.Helper()
	data := NewStringData(s)
	mustAppend(t, c, data)

	return mustAppend(t, c, &StringID{Data: data})
}

func buildSample(t *testing.T, opts ...Option) *sample {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)

	for _, s := range sampleStrings {
		appendString(t, c, s)
	}
	mustAppend(t, c, &TypeID{DescriptorIdx: strMain})
	mustAppend(t, c, &TypeID{DescriptorIdx: strObject})
	mustAppend(t, c, &TypeID{DescriptorIdx: strVoid})
	mustAppend(t, c, &TypeID{DescriptorIdx: strInt})

	params := &TypeList{Types: []uint16{3}}
	mustAppend(t, c, params)
	mustAppend(t, c, &ProtoID{ShortyIdx: strVoid, ReturnTypeIdx: 2})
	mustAppend(t, c, &ProtoID{ShortyIdx: strVoid, ReturnTypeIdx: 2, Parameters: params})
	mustAppend(t, c, &MethodID{ClassIdx: 0, ProtoIdx: 0, NameIdx: strRun})
	mustAppend(t, c, &MethodID{ClassIdx: 0, ProtoIdx: 1, NameIdx: strStop})

	debug := &DebugInfo{Raw: []byte{0x01, 0x00, format.DbgEndSequence}}
	mustAppend(t, c, debug)

	runCode := &CodeItem{
		RegistersSize: 1,
		TriesSize:     1,
		DebugInfo:     debug,
		Insns:         []byte{0x00, 0x00, 0x00, 0x00, 0x0e, 0x00},
		Tries:         runTries,
	}
	stopCode := &CodeItem{RegistersSize: 2, InsSize: 2, DebugInfo: debug, Insns: []byte{0x0e, 0x00}}
	mustAppend(t, c, runCode)
	mustAppend(t, c, stopCode)

	run := &EncodedMethod{MethodIdx: 0, AccessFlags: format.AccPublic | format.AccStatic, Code: runCode}
	stop := &EncodedMethod{MethodIdx: 1, AccessFlags: format.AccPublic, Code: stopCode}
	classData := &ClassData{DirectMethods: []*EncodedMethod{run}, VirtualMethods: []*EncodedMethod{stop}}
	mustAppend(t, c, classData)

	staticValues := &EncodedArray{Raw: []byte{0x00}}
	mustAppend(t, c, staticValues)

	annotation := &AnnotationItem{Raw: []byte{0x01, 0x00, 0x00}}
	mustAppend(t, c, annotation)
	set := &AnnotationSet{Entries: []*AnnotationItem{annotation}}
	mustAppend(t, c, set)
	dir := &AnnotationsDirectory{ClassAnnotations: set}
	mustAppend(t, c, dir)

	def := &ClassDef{
		ClassIdx:      0,
		AccessFlags:   format.AccPublic,
		SuperclassIdx: 1,
		Interfaces:    params,
		SourceFileIdx: strSourceFile,
		Annotations:   dir,
		ClassData:     classData,
		StaticValues:  staticValues,
	}
	mustAppend(t, c, def)

	return &sample{c: c, def: def, run: run, stop: stop, debug: debug, params: params}
}

// roundTrip writes c, parses the output and returns both.
func roundTrip(t *testing.T, c *Container, opts ...Option) ([]byte, *Container) {
	t.Helper()
	out, err := c.Write()
	require.NoError(t, err)

	parsed, err := Parse(out, opts...)
	require.NoError(t, err)

	return out, parsed
}
