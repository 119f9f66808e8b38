package dex

import (
	"fmt"

	"github.com/arloliu/dexkit/encoding"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
	"github.com/arloliu/dexkit/internal/cursor"
)

// StringData holds one string in modified UTF-8 together with its declared length
// in UTF-16 code units. Data excludes the trailing NUL.
type StringData struct {
	itemBase
	UTF16Size uint32
	Data      []byte
}

// NewStringData encodes s as a new, unpooled string data item.
func NewStringData(s string) *StringData {
	data, size := encoding.EncodeMUTF8(s)
	return &StringData{UTF16Size: size, Data: data}
}

func (*StringData) Type() format.SectionType { return format.TypeStringDataItem }

// Value decodes the string.
func (s *StringData) Value() (string, error) {
	return encoding.DecodeMUTF8(s.Data)
}

func (p *parser) parseStringData(off uint32) (*StringData, error) {
	c := cursor.New(int(off), 1)
	size, err := encoding.ReadUleb128(p.buf, c)
	if err != nil {
		return nil, err
	}

	start := c.Pos()
	end := start
	for end < len(p.buf) && p.buf[end] != 0 {
		end++
	}
	if end >= len(p.buf) {
		return nil, fmt.Errorf("%w: unterminated string data at 0x%x", errs.ErrTruncatedItem, off)
	}

	return &StringData{UTF16Size: size, Data: p.span(start, end)}, nil
}

func (s *StringData) encode(_ *writer, dst []byte) ([]byte, error) {
	dst = encoding.AppendUleb128(dst, s.UTF16Size)
	dst = append(dst, s.Data...)

	return append(dst, 0), nil
}

// TypeList is a list of type_ids indices.
type TypeList struct {
	itemBase
	Types []uint16
}

func (*TypeList) Type() format.SectionType { return format.TypeTypeList }

func (p *parser) parseTypeList(off uint32) (*TypeList, error) {
	pos := int(off)
	if err := p.need(pos, 4, format.TypeTypeList); err != nil {
		return nil, err
	}
	size := int(p.u32(pos))
	pos += 4
	if err := p.need(pos, size*2, format.TypeTypeList); err != nil {
		return nil, err
	}

	types := make([]uint16, size)
	for i := range types {
		types[i] = p.u16(pos + 2*i)
	}

	return &TypeList{Types: types}, nil
}

func (t *TypeList) encode(w *writer, dst []byte) ([]byte, error) {
	dst = w.engine.AppendUint32(dst, uint32(len(t.Types))) //nolint:gosec
	for _, idx := range t.Types {
		dst = w.engine.AppendUint16(dst, idx)
	}

	return dst, nil
}

// AnnotationItem is an annotation_item kept as an opaque span: the visibility byte
// followed by the encoded annotation.
type AnnotationItem struct {
	itemBase
	Raw []byte
}

func (*AnnotationItem) Type() format.SectionType { return format.TypeAnnotationItem }

// Visibility returns the visibility byte (0 build, 1 runtime, 2 system).
func (a *AnnotationItem) Visibility() uint8 {
	if len(a.Raw) == 0 {
		return 0
	}

	return a.Raw[0]
}

func (p *parser) parseAnnotationItem(off uint32) (*AnnotationItem, error) {
	c := cursor.New(int(off), 1)
	if err := encoding.SkipAnnotationItem(p.buf, c); err != nil {
		return nil, err
	}

	return &AnnotationItem{Raw: p.span(int(off), c.Pos())}, nil
}

func (a *AnnotationItem) encode(_ *writer, dst []byte) ([]byte, error) {
	return append(dst, a.Raw...), nil
}

// AnnotationSet is an annotation_set_item: offsets of annotation items.
type AnnotationSet struct {
	itemBase
	Entries []*AnnotationItem
}

func (*AnnotationSet) Type() format.SectionType { return format.TypeAnnotationSetItem }

func (p *parser) parseAnnotationSet(off uint32) (*AnnotationSet, error) {
	pos := int(off)
	if err := p.need(pos, 4, format.TypeAnnotationSetItem); err != nil {
		return nil, err
	}
	size := int(p.u32(pos))
	pos += 4
	if err := p.need(pos, size*4, format.TypeAnnotationSetItem); err != nil {
		return nil, err
	}

	set := &AnnotationSet{Entries: make([]*AnnotationItem, size)}
	for i := range set.Entries {
		entryOff := p.u32(pos + 4*i)
		if entryOff == 0 {
			return nil, fmt.Errorf("%w: annotation set at 0x%x has a zero entry", errs.ErrDanglingReference, off)
		}
		item, err := resolve(p, p.reg.Annotations, format.TypeAnnotationItem, entryOff, (*parser).parseAnnotationItem)
		if err != nil {
			return nil, err
		}
		set.Entries[i] = item
	}

	return set, nil
}

func (s *AnnotationSet) encode(w *writer, dst []byte) ([]byte, error) {
	dst = w.engine.AppendUint32(dst, uint32(len(s.Entries))) //nolint:gosec
	for _, entry := range s.Entries {
		if entry == nil {
			return nil, fmt.Errorf("%w: nil entry in annotation set", errs.ErrStructuralInconsistency)
		}
		off, err := offsetOf(w.reg.Annotations, entry)
		if err != nil {
			return nil, err
		}
		dst = w.engine.AppendUint32(dst, off)
	}

	return dst, nil
}

// AnnotationSetRefList is an annotation_set_ref_list: one annotation set per
// method parameter, nil for parameters without annotations.
type AnnotationSetRefList struct {
	itemBase
	Lists []*AnnotationSet
}

func (*AnnotationSetRefList) Type() format.SectionType { return format.TypeAnnotationSetRefList }

func (p *parser) parseAnnotationSetRefList(off uint32) (*AnnotationSetRefList, error) {
	pos := int(off)
	if err := p.need(pos, 4, format.TypeAnnotationSetRefList); err != nil {
		return nil, err
	}
	size := int(p.u32(pos))
	pos += 4
	if err := p.need(pos, size*4, format.TypeAnnotationSetRefList); err != nil {
		return nil, err
	}

	list := &AnnotationSetRefList{Lists: make([]*AnnotationSet, size)}
	for i := range list.Lists {
		set, err := resolve(p, p.reg.AnnotationSets, format.TypeAnnotationSetItem, p.u32(pos+4*i), (*parser).parseAnnotationSet)
		if err != nil {
			return nil, err
		}
		list.Lists[i] = set
	}

	return list, nil
}

func (l *AnnotationSetRefList) encode(w *writer, dst []byte) ([]byte, error) {
	dst = w.engine.AppendUint32(dst, uint32(len(l.Lists))) //nolint:gosec
	for _, set := range l.Lists {
		off, err := offsetOf(w.reg.AnnotationSets, set)
		if err != nil {
			return nil, err
		}
		dst = w.engine.AppendUint32(dst, off)
	}

	return dst, nil
}

// FieldAnnotation attaches an annotation set to a field_ids index.
type FieldAnnotation struct {
	FieldIdx    uint32
	Annotations *AnnotationSet
}

// MethodAnnotation attaches an annotation set to a method_ids index.
type MethodAnnotation struct {
	MethodIdx   uint32
	Annotations *AnnotationSet
}

// ParameterAnnotation attaches per-parameter annotation sets to a method_ids index.
type ParameterAnnotation struct {
	MethodIdx   uint32
	Annotations *AnnotationSetRefList
}

// AnnotationsDirectory is an annotations_directory_item.
type AnnotationsDirectory struct {
	itemBase
	ClassAnnotations *AnnotationSet
	Fields           []FieldAnnotation
	Methods          []MethodAnnotation
	Parameters       []ParameterAnnotation
}

func (*AnnotationsDirectory) Type() format.SectionType {
	return format.TypeAnnotationsDirectoryItem
}

func (d *AnnotationsDirectory) setRef(field RefField, target Item) bool {
	if field != RefClassAnnotations {
		return false
	}

	return assignRef(&d.ClassAnnotations, target)
}

func (p *parser) parseAnnotationsDirectory(off uint32) (*AnnotationsDirectory, error) {
	pos := int(off)
	if err := p.need(pos, 16, format.TypeAnnotationsDirectoryItem); err != nil {
		return nil, err
	}
	classOff := p.u32(pos)
	fields := int(p.u32(pos + 4))
	methods := int(p.u32(pos + 8))
	params := int(p.u32(pos + 12))
	pos += 16
	if err := p.need(pos, 8*(fields+methods+params), format.TypeAnnotationsDirectoryItem); err != nil {
		return nil, err
	}

	d := &AnnotationsDirectory{
		Fields:     make([]FieldAnnotation, fields),
		Methods:    make([]MethodAnnotation, methods),
		Parameters: make([]ParameterAnnotation, params),
	}

	var err error
	for i := range d.Fields {
		d.Fields[i].FieldIdx = p.u32(pos)
		d.Fields[i].Annotations, err = resolve(p, p.reg.AnnotationSets, format.TypeAnnotationSetItem, p.u32(pos+4), (*parser).parseAnnotationSet)
		if err != nil {
			return nil, err
		}
		pos += 8
	}
	for i := range d.Methods {
		d.Methods[i].MethodIdx = p.u32(pos)
		d.Methods[i].Annotations, err = resolve(p, p.reg.AnnotationSets, format.TypeAnnotationSetItem, p.u32(pos+4), (*parser).parseAnnotationSet)
		if err != nil {
			return nil, err
		}
		pos += 8
	}
	for i := range d.Parameters {
		d.Parameters[i].MethodIdx = p.u32(pos)
		d.Parameters[i].Annotations, err = resolve(p, p.reg.AnnotationSetRefLists, format.TypeAnnotationSetRefList, p.u32(pos+4), (*parser).parseAnnotationSetRefList)
		if err != nil {
			return nil, err
		}
		pos += 8
	}

	d.ClassAnnotations, err = resolve(p, p.reg.AnnotationSets, format.TypeAnnotationSetItem, classOff, (*parser).parseAnnotationSet)
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (d *AnnotationsDirectory) encode(w *writer, dst []byte) ([]byte, error) {
	classOff, err := offsetOf(w.reg.AnnotationSets, d.ClassAnnotations)
	if err != nil {
		return nil, err
	}
	dst = w.engine.AppendUint32(dst, classOff)
	dst = w.engine.AppendUint32(dst, uint32(len(d.Fields)))     //nolint:gosec
	dst = w.engine.AppendUint32(dst, uint32(len(d.Methods)))    //nolint:gosec
	dst = w.engine.AppendUint32(dst, uint32(len(d.Parameters))) //nolint:gosec

	for _, f := range d.Fields {
		off, err := offsetOf(w.reg.AnnotationSets, f.Annotations)
		if err != nil {
			return nil, err
		}
		dst = w.engine.AppendUint32(dst, f.FieldIdx)
		dst = w.engine.AppendUint32(dst, off)
	}
	for _, m := range d.Methods {
		off, err := offsetOf(w.reg.AnnotationSets, m.Annotations)
		if err != nil {
			return nil, err
		}
		dst = w.engine.AppendUint32(dst, m.MethodIdx)
		dst = w.engine.AppendUint32(dst, off)
	}
	for _, pa := range d.Parameters {
		off, err := offsetOf(w.reg.AnnotationSetRefLists, pa.Annotations)
		if err != nil {
			return nil, err
		}
		dst = w.engine.AppendUint32(dst, pa.MethodIdx)
		dst = w.engine.AppendUint32(dst, off)
	}

	return dst, nil
}

// EncodedArray is an encoded_array_item kept as an opaque span.
type EncodedArray struct {
	itemBase
	Raw []byte
}

func (*EncodedArray) Type() format.SectionType { return format.TypeEncodedArrayItem }

func (p *parser) parseEncodedArray(off uint32) (*EncodedArray, error) {
	c := cursor.New(int(off), 1)
	if err := encoding.SkipEncodedArray(p.buf, c); err != nil {
		return nil, err
	}

	return &EncodedArray{Raw: p.span(int(off), c.Pos())}, nil
}

func (a *EncodedArray) encode(_ *writer, dst []byte) ([]byte, error) {
	return append(dst, a.Raw...), nil
}

// DebugInfo is a debug_info_item kept as an opaque span.
type DebugInfo struct {
	itemBase
	Raw []byte
}

func (*DebugInfo) Type() format.SectionType { return format.TypeDebugInfoItem }

func (p *parser) parseDebugInfo(off uint32) (*DebugInfo, error) {
	c := cursor.New(int(off), 1)
	if err := encoding.SkipDebugInfo(p.buf, c); err != nil {
		return nil, err
	}

	return &DebugInfo{Raw: p.span(int(off), c.Pos())}, nil
}

func (d *DebugInfo) encode(_ *writer, dst []byte) ([]byte, error) {
	return append(dst, d.Raw...), nil
}
