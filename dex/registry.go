package dex

import (
	"fmt"
	"slices"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
)

// Section describes one entry of the map list. Count and Offset are taken from the
// map list at parse time and recomputed from the live pools on every write.
type Section struct {
	Type   format.SectionType
	Count  uint32
	Offset uint32
}

// Registry owns one pool per section type and the section descriptors of a single
// container. Nothing in it is shared between containers.
type Registry struct {
	StringIDs  *Pool[*StringID]
	TypeIDs    *Pool[*TypeID]
	ProtoIDs   *Pool[*ProtoID]
	FieldIDs   *Pool[*FieldID]
	MethodIDs  *Pool[*MethodID]
	ClassDefs  *Pool[*ClassDef]
	StringData *Pool[*StringData]
	TypeLists  *Pool[*TypeList]

	Annotations            *Pool[*AnnotationItem]
	AnnotationSets         *Pool[*AnnotationSet]
	AnnotationSetRefLists  *Pool[*AnnotationSetRefList]
	AnnotationsDirectories *Pool[*AnnotationsDirectory]
	EncodedArrays          *Pool[*EncodedArray]
	DebugInfos             *Pool[*DebugInfo]
	Codes                  *Pool[*CodeItem]
	ClassData              *Pool[*ClassData]

	sections    map[format.SectionType]*Section
	provisional uint32
}

// NewRegistry creates a registry with empty pools and no declared sections.
func NewRegistry() *Registry {
	return &Registry{
		StringIDs:  NewPool[*StringID](KeyIndex),
		TypeIDs:    NewPool[*TypeID](KeyIndex),
		ProtoIDs:   NewPool[*ProtoID](KeyIndex),
		FieldIDs:   NewPool[*FieldID](KeyIndex),
		MethodIDs:  NewPool[*MethodID](KeyIndex),
		ClassDefs:  NewPool[*ClassDef](KeyIndex),
		StringData: NewPool[*StringData](KeyOffset),
		TypeLists:  NewPool[*TypeList](KeyOffset),

		Annotations:            NewPool[*AnnotationItem](KeyOffset),
		AnnotationSets:         NewPool[*AnnotationSet](KeyOffset),
		AnnotationSetRefLists:  NewPool[*AnnotationSetRefList](KeyOffset),
		AnnotationsDirectories: NewPool[*AnnotationsDirectory](KeyOffset),
		EncodedArrays:          NewPool[*EncodedArray](KeyOffset),
		DebugInfos:             NewPool[*DebugInfo](KeyOffset),
		Codes:                  NewPool[*CodeItem](KeyOffset),
		ClassData:              NewPool[*ClassData](KeyOffset),

		sections:    make(map[format.SectionType]*Section),
		provisional: ProvisionalKeyBase,
	}
}

// Section returns the descriptor for tag, or nil when the section is not present.
func (r *Registry) Section(tag format.SectionType) *Section {
	return r.sections[tag]
}

// Types returns the tags of all present sections in ascending order.
func (r *Registry) Types() []format.SectionType {
	out := make([]format.SectionType, 0, len(r.sections))
	for tag := range r.sections {
		out = append(out, tag)
	}
	slices.Sort(out)

	return out
}

// Sections returns copies of all present descriptors in ascending tag order.
func (r *Registry) Sections() []Section {
	types := r.Types()
	out := make([]Section, len(types))
	for i, tag := range types {
		out[i] = *r.sections[tag]
	}

	return out
}

func (r *Registry) declare(tag format.SectionType, count, offset uint32) {
	r.sections[tag] = &Section{Type: tag, Count: count, Offset: offset}
}

// ensure returns the descriptor for tag, creating an empty one for sections that
// gain their first item after parsing.
func (r *Registry) ensure(tag format.SectionType) *Section {
	if sec, ok := r.sections[tag]; ok {
		return sec
	}
	r.declare(tag, 0, 0)

	return r.sections[tag]
}

// nextProvisionalKey hands out keys for items appended to offset-keyed pools.
func (r *Registry) nextProvisionalKey() uint32 {
	key := r.provisional
	r.provisional++

	return key
}

// pool returns the type-erased pool for tag.
func (r *Registry) pool(tag format.SectionType) (poolView, error) {
	switch tag {
	case format.TypeStringIDItem:
		return r.StringIDs, nil
	case format.TypeTypeIDItem:
		return r.TypeIDs, nil
	case format.TypeProtoIDItem:
		return r.ProtoIDs, nil
	case format.TypeFieldIDItem:
		return r.FieldIDs, nil
	case format.TypeMethodIDItem:
		return r.MethodIDs, nil
	case format.TypeClassDefItem:
		return r.ClassDefs, nil
	case format.TypeStringDataItem:
		return r.StringData, nil
	case format.TypeTypeList:
		return r.TypeLists, nil
	case format.TypeAnnotationItem:
		return r.Annotations, nil
	case format.TypeAnnotationSetItem:
		return r.AnnotationSets, nil
	case format.TypeAnnotationSetRefList:
		return r.AnnotationSetRefLists, nil
	case format.TypeAnnotationsDirectoryItem:
		return r.AnnotationsDirectories, nil
	case format.TypeEncodedArrayItem:
		return r.EncodedArrays, nil
	case format.TypeDebugInfoItem:
		return r.DebugInfos, nil
	case format.TypeCodeItem:
		return r.Codes, nil
	case format.TypeClassDataItem:
		return r.ClassData, nil
	default:
		return nil, fmt.Errorf("%w: %s has no item pool", errs.ErrUnsupportedEncoding, tag)
	}
}

// rebuild replaces the descriptors with the layout of the write in progress.
// offsets maps every non-empty section to the position of its first item.
func (r *Registry) rebuild(offsets map[format.SectionType]uint32) {
	clear(r.sections)
	for tag, off := range offsets {
		count := uint32(1)
		if tag != format.TypeHeaderItem && tag != format.TypeMapList {
			p, err := r.pool(tag)
			if err != nil {
				continue
			}
			count = uint32(p.Len()) //nolint:gosec
		}
		r.declare(tag, count, off)
	}
}
