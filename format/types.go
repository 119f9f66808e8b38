package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/dexkit/errs"
)

type (
	// SectionType is the 16-bit type code used by map list entries.
	SectionType uint16
	// EncodedValueType is the low five bits of an encoded_value header byte.
	EncodedValueType uint8
	// AccessFlags holds class, field and method access bits.
	AccessFlags uint32
	// CompressionType selects a codec for code store payloads.
	CompressionType uint8
)

// NoIndex marks an absent index in 32-bit index fields (e.g. superclass_idx).
const NoIndex uint32 = 0xffffffff

const (
	TypeHeaderItem               SectionType = 0x0000
	TypeStringIDItem             SectionType = 0x0001
	TypeTypeIDItem               SectionType = 0x0002
	TypeProtoIDItem              SectionType = 0x0003
	TypeFieldIDItem              SectionType = 0x0004
	TypeMethodIDItem             SectionType = 0x0005
	TypeClassDefItem             SectionType = 0x0006
	TypeMapList                  SectionType = 0x1000
	TypeTypeList                 SectionType = 0x1001
	TypeAnnotationSetRefList     SectionType = 0x1002
	TypeAnnotationSetItem        SectionType = 0x1003
	TypeClassDataItem            SectionType = 0x2000
	TypeCodeItem                 SectionType = 0x2001
	TypeStringDataItem           SectionType = 0x2002
	TypeDebugInfoItem            SectionType = 0x2003
	TypeAnnotationItem           SectionType = 0x2004
	TypeEncodedArrayItem         SectionType = 0x2005
	TypeAnnotationsDirectoryItem SectionType = 0x2006
)

// IndexSections lists the identifier tables in file order.
var IndexSections = []SectionType{
	TypeStringIDItem,
	TypeTypeIDItem,
	TypeProtoIDItem,
	TypeFieldIDItem,
	TypeMethodIDItem,
	TypeClassDefItem,
}

// DataSections lists the offset-addressed sections in the order they are laid out
// in the data region. The map list is always written last and is not included.
var DataSections = []SectionType{
	TypeStringDataItem,
	TypeTypeList,
	TypeAnnotationItem,
	TypeAnnotationSetItem,
	TypeAnnotationSetRefList,
	TypeAnnotationsDirectoryItem,
	TypeEncodedArrayItem,
	TypeDebugInfoItem,
	TypeCodeItem,
	TypeClassDataItem,
}

// IsIndex reports whether the section is an identifier table keyed by index.
func (t SectionType) IsIndex() bool {
	return t >= TypeStringIDItem && t <= TypeClassDefItem
}

// IsData reports whether the section lives in the data region and is keyed by offset.
func (t SectionType) IsData() bool {
	switch t {
	case TypeTypeList, TypeAnnotationSetRefList, TypeAnnotationSetItem,
		TypeClassDataItem, TypeCodeItem, TypeStringDataItem, TypeDebugInfoItem,
		TypeAnnotationItem, TypeEncodedArrayItem, TypeAnnotationsDirectoryItem:
		return true
	default:
		return false
	}
}

// IsKnown reports whether t is one of the section types this package models.
func (t SectionType) IsKnown() bool {
	return t == TypeHeaderItem || t == TypeMapList || t.IsIndex() || t.IsData()
}

// EntrySize returns the fixed on-disk width of one entry of an identifier table,
// or 0 for sections whose items are variable width.
func (t SectionType) EntrySize() int {
	switch t {
	case TypeStringIDItem, TypeTypeIDItem:
		return 0x04
	case TypeProtoIDItem:
		return 0x0c
	case TypeFieldIDItem, TypeMethodIDItem:
		return 0x08
	case TypeClassDefItem:
		return 0x20
	default:
		return 0
	}
}

// ItemAlignment returns the byte alignment required before each item of the section.
func (t SectionType) ItemAlignment() int {
	switch t {
	case TypeTypeList, TypeAnnotationSetItem, TypeAnnotationSetRefList,
		TypeAnnotationsDirectoryItem, TypeCodeItem, TypeMapList:
		return 4
	default:
		return 1
	}
}

func (t SectionType) String() string {
	switch t {
	case TypeHeaderItem:
		return "header_item"
	case TypeStringIDItem:
		return "string_id_item"
	case TypeTypeIDItem:
		return "type_id_item"
	case TypeProtoIDItem:
		return "proto_id_item"
	case TypeFieldIDItem:
		return "field_id_item"
	case TypeMethodIDItem:
		return "method_id_item"
	case TypeClassDefItem:
		return "class_def_item"
	case TypeMapList:
		return "map_list"
	case TypeTypeList:
		return "type_list"
	case TypeAnnotationSetRefList:
		return "annotation_set_ref_list"
	case TypeAnnotationSetItem:
		return "annotation_set_item"
	case TypeClassDataItem:
		return "class_data_item"
	case TypeCodeItem:
		return "code_item"
	case TypeStringDataItem:
		return "string_data_item"
	case TypeDebugInfoItem:
		return "debug_info_item"
	case TypeAnnotationItem:
		return "annotation_item"
	case TypeEncodedArrayItem:
		return "encoded_array_item"
	case TypeAnnotationsDirectoryItem:
		return "annotations_directory_item"
	default:
		return fmt.Sprintf("unknown(0x%04x)", uint16(t))
	}
}

const (
	ValueByte         EncodedValueType = 0x00
	ValueShort        EncodedValueType = 0x02
	ValueChar         EncodedValueType = 0x03
	ValueInt          EncodedValueType = 0x04
	ValueLong         EncodedValueType = 0x06
	ValueFloat        EncodedValueType = 0x10
	ValueDouble       EncodedValueType = 0x11
	ValueMethodType   EncodedValueType = 0x15
	ValueMethodHandle EncodedValueType = 0x16
	ValueString       EncodedValueType = 0x17
	ValueType         EncodedValueType = 0x18
	ValueField        EncodedValueType = 0x19
	ValueMethod       EncodedValueType = 0x1a
	ValueEnum         EncodedValueType = 0x1b
	ValueArray        EncodedValueType = 0x1c
	ValueAnnotation   EncodedValueType = 0x1d
	ValueNull         EncodedValueType = 0x1e
	ValueBoolean      EncodedValueType = 0x1f
)

// PayloadSize returns the number of trailing payload bytes for fixed-size value
// types given the header's value_arg, and false for types that carry no fixed
// payload (array, annotation, null, boolean) or are unknown.
func (v EncodedValueType) PayloadSize(arg uint8) (int, bool) {
	switch v {
	case ValueByte, ValueShort, ValueChar, ValueInt, ValueLong, ValueFloat,
		ValueDouble, ValueMethodType, ValueMethodHandle, ValueString, ValueType,
		ValueField, ValueMethod, ValueEnum:
		return int(arg) + 1, true
	default:
		return 0, false
	}
}

// Access flags.
const (
	AccPublic               AccessFlags = 0x00000001
	AccPrivate              AccessFlags = 0x00000002
	AccProtected            AccessFlags = 0x00000004
	AccStatic               AccessFlags = 0x00000008
	AccFinal                AccessFlags = 0x00000010
	AccSynchronized         AccessFlags = 0x00000020
	AccVolatile             AccessFlags = 0x00000040
	AccBridge               AccessFlags = 0x00000040
	AccTransient            AccessFlags = 0x00000080
	AccVarargs              AccessFlags = 0x00000080
	AccNative               AccessFlags = 0x00000100
	AccInterface            AccessFlags = 0x00000200
	AccAbstract             AccessFlags = 0x00000400
	AccStrict               AccessFlags = 0x00000800
	AccSynthetic            AccessFlags = 0x00001000
	AccAnnotation           AccessFlags = 0x00002000
	AccEnum                 AccessFlags = 0x00004000
	AccConstructor          AccessFlags = 0x00010000
	AccDeclaredSynchronized AccessFlags = 0x00020000
)

// Has reports whether all bits of flag are set.
func (a AccessFlags) Has(flag AccessFlags) bool {
	return a&flag == flag
}

// Debug info opcodes.
const (
	DbgEndSequence      uint8 = 0x00
	DbgAdvancePC        uint8 = 0x01
	DbgAdvanceLine      uint8 = 0x02
	DbgStartLocal       uint8 = 0x03
	DbgStartLocalExt    uint8 = 0x04
	DbgEndLocal         uint8 = 0x05
	DbgRestartLocal     uint8 = 0x06
	DbgSetPrologueEnd   uint8 = 0x07
	DbgSetEpilogueBegin uint8 = 0x08
	DbgSetFile          uint8 = 0x09
	DbgFirstSpecial     uint8 = 0x0a
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType maps a case-insensitive codec name to its CompressionType.
func ParseCompressionType(name string) (CompressionType, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: compression %q", errs.ErrUnsupportedEncoding, name)
	}
}
