package dex

import (
	"github.com/arloliu/dexkit/format"
)

// ProvisionalKeyBase is the first key handed out to items appended to an
// offset-keyed pool after parsing. Parsed offsets never reach this range because
// every container is far smaller than 2 GiB.
const ProvisionalKeyBase uint32 = 0x8000_0000

// Item is implemented by every structural element stored in a Pool. The set of
// implementations is closed: StringID, TypeID, ProtoID, FieldID, MethodID,
// ClassDef, StringData, TypeList, AnnotationItem, AnnotationSet,
// AnnotationSetRefList, AnnotationsDirectory, EncodedArray, DebugInfo, CodeItem and
// ClassData.
type Item interface {
	// Type returns the section the item belongs to.
	Type() format.SectionType
	// Key returns the pool key: the table index for identifier items, the parse
	// offset or a provisional key for data items.
	Key() uint32
	// Offset returns the file offset assigned by the most recent write, or the
	// offset the item was parsed from.
	Offset() uint32

	base() *itemBase
}

type itemBase struct {
	key uint32
	off uint32
}

func (b *itemBase) Key() uint32 {
	return b.key
}

func (b *itemBase) Offset() uint32 {
	return b.off
}

func (b *itemBase) base() *itemBase {
	return b
}

// RefField names an offset reference that SetReference can rewrite.
type RefField uint8

const (
	RefStringData       RefField = iota + 1 // StringID.Data
	RefParameters                           // ProtoID.Parameters
	RefInterfaces                           // ClassDef.Interfaces
	RefAnnotations                          // ClassDef.Annotations
	RefClassData                            // ClassDef.ClassData
	RefStaticValues                         // ClassDef.StaticValues
	RefDebugInfo                            // CodeItem.DebugInfo
	RefCode                                 // EncodedMethod.Code
	RefClassAnnotations                     // AnnotationsDirectory.ClassAnnotations
)

// Target returns the section a reference field points into.
func (f RefField) Target() format.SectionType {
	switch f {
	case RefStringData:
		return format.TypeStringDataItem
	case RefParameters, RefInterfaces:
		return format.TypeTypeList
	case RefAnnotations:
		return format.TypeAnnotationsDirectoryItem
	case RefClassData:
		return format.TypeClassDataItem
	case RefStaticValues:
		return format.TypeEncodedArrayItem
	case RefDebugInfo:
		return format.TypeDebugInfoItem
	case RefCode:
		return format.TypeCodeItem
	case RefClassAnnotations:
		return format.TypeAnnotationSetItem
	default:
		return format.TypeHeaderItem
	}
}

func (f RefField) String() string {
	switch f {
	case RefStringData:
		return "string_data"
	case RefParameters:
		return "parameters"
	case RefInterfaces:
		return "interfaces"
	case RefAnnotations:
		return "annotations"
	case RefClassData:
		return "class_data"
	case RefStaticValues:
		return "static_values"
	case RefDebugInfo:
		return "debug_info"
	case RefCode:
		return "code"
	case RefClassAnnotations:
		return "class_annotations"
	default:
		return "unknown"
	}
}

// Referrer is implemented by items and class members that hold offset references
// rewritable through Container.SetReference.
type Referrer interface {
	// setRef points field at target, or clears it when target is nil.
	setRef(field RefField, target Item) bool
}
