package dex

import (
	"github.com/arloliu/dexkit/format"
)

// StringID is an entry of the string_ids table.
type StringID struct {
	itemBase
	Data *StringData
}

func (*StringID) Type() format.SectionType { return format.TypeStringIDItem }

func (s *StringID) setRef(field RefField, target Item) bool {
	if field != RefStringData {
		return false
	}

	return assignRef(&s.Data, target)
}

func (p *parser) parseStringID(pos int) (*StringID, error) {
	data, err := resolve(p, p.reg.StringData, format.TypeStringDataItem, p.u32(pos), (*parser).parseStringData)
	if err != nil {
		return nil, err
	}

	return &StringID{Data: data}, nil
}

func (s *StringID) writeEntry(w *writer, b []byte) error {
	off, err := offsetOf(w.reg.StringData, s.Data)
	if err != nil {
		return err
	}
	w.engine.PutUint32(b, off)

	return nil
}

// TypeID is an entry of the type_ids table; DescriptorIdx indexes string_ids.
type TypeID struct {
	itemBase
	DescriptorIdx uint32
}

func (*TypeID) Type() format.SectionType { return format.TypeTypeIDItem }

func (p *parser) parseTypeID(pos int) (*TypeID, error) {
	return &TypeID{DescriptorIdx: p.u32(pos)}, nil
}

func (t *TypeID) writeEntry(w *writer, b []byte) error {
	w.engine.PutUint32(b, t.DescriptorIdx)
	return nil
}

// ProtoID is an entry of the proto_ids table.
type ProtoID struct {
	itemBase
	ShortyIdx     uint32 // string_ids index
	ReturnTypeIdx uint32 // type_ids index
	Parameters    *TypeList
}

func (*ProtoID) Type() format.SectionType { return format.TypeProtoIDItem }

func (pr *ProtoID) setRef(field RefField, target Item) bool {
	if field != RefParameters {
		return false
	}

	return assignRef(&pr.Parameters, target)
}

func (p *parser) parseProtoID(pos int) (*ProtoID, error) {
	params, err := resolve(p, p.reg.TypeLists, format.TypeTypeList, p.u32(pos+8), (*parser).parseTypeList)
	if err != nil {
		return nil, err
	}

	return &ProtoID{
		ShortyIdx:     p.u32(pos),
		ReturnTypeIdx: p.u32(pos + 4),
		Parameters:    params,
	}, nil
}

func (pr *ProtoID) writeEntry(w *writer, b []byte) error {
	off, err := offsetOf(w.reg.TypeLists, pr.Parameters)
	if err != nil {
		return err
	}
	w.engine.PutUint32(b[0:], pr.ShortyIdx)
	w.engine.PutUint32(b[4:], pr.ReturnTypeIdx)
	w.engine.PutUint32(b[8:], off)

	return nil
}

// FieldID is an entry of the field_ids table.
type FieldID struct {
	itemBase
	ClassIdx uint16 // type_ids index of the defining class
	TypeIdx  uint16 // type_ids index of the field type
	NameIdx  uint32 // string_ids index
}

func (*FieldID) Type() format.SectionType { return format.TypeFieldIDItem }

func (p *parser) parseFieldID(pos int) (*FieldID, error) {
	return &FieldID{
		ClassIdx: p.u16(pos),
		TypeIdx:  p.u16(pos + 2),
		NameIdx:  p.u32(pos + 4),
	}, nil
}

func (f *FieldID) writeEntry(w *writer, b []byte) error {
	w.engine.PutUint16(b[0:], f.ClassIdx)
	w.engine.PutUint16(b[2:], f.TypeIdx)
	w.engine.PutUint32(b[4:], f.NameIdx)

	return nil
}

// MethodID is an entry of the method_ids table.
type MethodID struct {
	itemBase
	ClassIdx uint16 // type_ids index of the defining class
	ProtoIdx uint16 // proto_ids index
	NameIdx  uint32 // string_ids index
}

func (*MethodID) Type() format.SectionType { return format.TypeMethodIDItem }

func (p *parser) parseMethodID(pos int) (*MethodID, error) {
	return &MethodID{
		ClassIdx: p.u16(pos),
		ProtoIdx: p.u16(pos + 2),
		NameIdx:  p.u32(pos + 4),
	}, nil
}

func (m *MethodID) writeEntry(w *writer, b []byte) error {
	w.engine.PutUint16(b[0:], m.ClassIdx)
	w.engine.PutUint16(b[2:], m.ProtoIdx)
	w.engine.PutUint32(b[4:], m.NameIdx)

	return nil
}

// ClassDef is an entry of the class_defs table. SuperclassIdx and SourceFileIdx
// hold format.NoIndex when absent.
type ClassDef struct {
	itemBase
	ClassIdx      uint32
	AccessFlags   format.AccessFlags
	SuperclassIdx uint32
	Interfaces    *TypeList
	SourceFileIdx uint32
	Annotations   *AnnotationsDirectory
	ClassData     *ClassData
	StaticValues  *EncodedArray
}

func (*ClassDef) Type() format.SectionType { return format.TypeClassDefItem }

func (c *ClassDef) setRef(field RefField, target Item) bool {
	switch field {
	case RefInterfaces:
		return assignRef(&c.Interfaces, target)
	case RefAnnotations:
		return assignRef(&c.Annotations, target)
	case RefClassData:
		return assignRef(&c.ClassData, target)
	case RefStaticValues:
		return assignRef(&c.StaticValues, target)
	default:
		return false
	}
}

func (p *parser) parseClassDef(pos int) (*ClassDef, error) {
	c := &ClassDef{
		ClassIdx:      p.u32(pos),
		AccessFlags:   format.AccessFlags(p.u32(pos + 4)),
		SuperclassIdx: p.u32(pos + 8),
		SourceFileIdx: p.u32(pos + 16),
	}

	var err error
	if c.Interfaces, err = resolve(p, p.reg.TypeLists, format.TypeTypeList, p.u32(pos+12), (*parser).parseTypeList); err != nil {
		return nil, err
	}
	if c.Annotations, err = resolve(p, p.reg.AnnotationsDirectories, format.TypeAnnotationsDirectoryItem, p.u32(pos+20), (*parser).parseAnnotationsDirectory); err != nil {
		return nil, err
	}
	if c.ClassData, err = resolve(p, p.reg.ClassData, format.TypeClassDataItem, p.u32(pos+24), (*parser).parseClassData); err != nil {
		return nil, err
	}
	if c.StaticValues, err = resolve(p, p.reg.EncodedArrays, format.TypeEncodedArrayItem, p.u32(pos+28), (*parser).parseEncodedArray); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *ClassDef) writeEntry(w *writer, b []byte) error {
	interfaces, err := offsetOf(w.reg.TypeLists, c.Interfaces)
	if err != nil {
		return err
	}
	annotations, err := offsetOf(w.reg.AnnotationsDirectories, c.Annotations)
	if err != nil {
		return err
	}
	classData, err := offsetOf(w.reg.ClassData, c.ClassData)
	if err != nil {
		return err
	}
	staticValues, err := offsetOf(w.reg.EncodedArrays, c.StaticValues)
	if err != nil {
		return err
	}

	w.engine.PutUint32(b[0:], c.ClassIdx)
	w.engine.PutUint32(b[4:], uint32(c.AccessFlags))
	w.engine.PutUint32(b[8:], c.SuperclassIdx)
	w.engine.PutUint32(b[12:], interfaces)
	w.engine.PutUint32(b[16:], c.SourceFileIdx)
	w.engine.PutUint32(b[20:], annotations)
	w.engine.PutUint32(b[24:], classData)
	w.engine.PutUint32(b[28:], staticValues)

	return nil
}

// assignRef stores target in *dst when it has the referenced type, or clears *dst
// when target is nil.
func assignRef[V Item](dst *V, target Item) bool {
	if target == nil {
		var zero V
		*dst = zero

		return true
	}
	v, ok := target.(V)
	if ok {
		*dst = v
	}

	return ok
}
