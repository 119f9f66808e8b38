package dex

import (
	"fmt"
	"iter"

	"github.com/arloliu/dexkit/encoding"
	"github.com/arloliu/dexkit/endian"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
	"github.com/arloliu/dexkit/internal/cursor"
)

const (
	codeItemHeaderSize = 16
	tryItemSize        = 8
)

// CodeItem is a method body. Insns is the instruction stream as raw bytes (two per
// code unit). Tries is the opaque span of try_items followed by the encoded catch
// handler list; the alignment padding that precedes it on disk is not included
// and is regenerated on write.
type CodeItem struct {
	itemBase
	RegistersSize uint16
	InsSize       uint16
	OutsSize      uint16
	TriesSize     uint16
	DebugInfo     *DebugInfo
	Insns         []byte
	Tries         []byte
}

func (*CodeItem) Type() format.SectionType { return format.TypeCodeItem }

func (ci *CodeItem) setRef(field RefField, target Item) bool {
	if field != RefDebugInfo {
		return false
	}

	return assignRef(&ci.DebugInfo, target)
}

// InsnsSize returns the instruction count in 16-bit code units.
func (ci *CodeItem) InsnsSize() uint32 {
	return uint32(len(ci.Insns) / 2) //nolint:gosec
}

func (p *parser) parseCodeItem(off uint32) (*CodeItem, error) {
	pos := int(off)
	if err := p.need(pos, codeItemHeaderSize, format.TypeCodeItem); err != nil {
		return nil, err
	}

	ci := &CodeItem{
		RegistersSize: p.u16(pos),
		InsSize:       p.u16(pos + 2),
		OutsSize:      p.u16(pos + 4),
		TriesSize:     p.u16(pos + 6),
	}
	debugOff := p.u32(pos + 8)
	insnsLen := int(p.u32(pos+12)) * 2
	pos += codeItemHeaderSize

	if err := p.need(pos, insnsLen, format.TypeCodeItem); err != nil {
		return nil, err
	}
	ci.Insns = p.span(pos, pos+insnsLen)

	if ci.TriesSize > 0 {
		c := cursor.New(pos+insnsLen, 1)
		c.AlignTo(4)
		start := c.Pos()
		if err := p.need(start, int(ci.TriesSize)*tryItemSize, format.TypeCodeItem); err != nil {
			return nil, err
		}
		c.AdvanceBy(int(ci.TriesSize) * tryItemSize)
		if err := encoding.SkipCatchHandlerList(p.buf, c); err != nil {
			return nil, fmt.Errorf("code item at 0x%x: %w", off, err)
		}
		ci.Tries = p.span(start, c.Pos())
	}

	var err error
	ci.DebugInfo, err = resolve(p, p.reg.DebugInfos, format.TypeDebugInfoItem, debugOff, (*parser).parseDebugInfo)
	if err != nil {
		return nil, err
	}

	return ci, nil
}

func (ci *CodeItem) validate() error {
	if len(ci.Insns)%2 != 0 {
		return fmt.Errorf("%w: code item 0x%x has %d instruction bytes, not a whole number of code units",
			errs.ErrStructuralInconsistency, ci.key, len(ci.Insns))
	}
	if (ci.TriesSize == 0) != (len(ci.Tries) == 0) || len(ci.Tries) < int(ci.TriesSize)*tryItemSize {
		return fmt.Errorf("%w: code item 0x%x declares %d tries with a %d byte span",
			errs.ErrStructuralInconsistency, ci.key, ci.TriesSize, len(ci.Tries))
	}

	return nil
}

func (ci *CodeItem) encode(w *writer, dst []byte) ([]byte, error) {
	if err := ci.validate(); err != nil {
		return nil, err
	}
	debugOff, err := offsetOf(w.reg.DebugInfos, ci.DebugInfo)
	if err != nil {
		return nil, err
	}

	return ci.appendBody(dst, w.engine, debugOff), nil
}

// Bytes returns the code item in its on-disk form, detached from any container.
// The debug_info_off field is written as zero since the item no longer belongs
// to a layout.
//
// Parameters:
//   - engine: Byte order for the header fields
//
// Returns:
//   - []byte: The encoded code item
//   - error: ErrStructuralInconsistency if the instruction or try spans are malformed
func (ci *CodeItem) Bytes(engine endian.EndianEngine) ([]byte, error) {
	if err := ci.validate(); err != nil {
		return nil, err
	}
	size := codeItemHeaderSize + len(ci.Insns) + 2 + len(ci.Tries)

	return ci.appendBody(make([]byte, 0, size), engine, 0), nil
}

func (ci *CodeItem) appendBody(dst []byte, engine endian.EndianEngine, debugOff uint32) []byte {
	dst = engine.AppendUint16(dst, ci.RegistersSize)
	dst = engine.AppendUint16(dst, ci.InsSize)
	dst = engine.AppendUint16(dst, ci.OutsSize)
	dst = engine.AppendUint16(dst, ci.TriesSize)
	dst = engine.AppendUint32(dst, debugOff)
	dst = engine.AppendUint32(dst, ci.InsnsSize())
	dst = append(dst, ci.Insns...)
	if ci.TriesSize > 0 {
		// code items start 4-aligned, so an odd code unit count leaves two bytes to pad
		if ci.InsnsSize()%2 != 0 {
			dst = append(dst, 0, 0)
		}
		dst = append(dst, ci.Tries...)
	}

	return dst
}

// EncodedField is a field of a class body. FieldIdx is the absolute field_ids index.
type EncodedField struct {
	FieldIdx    uint32
	AccessFlags format.AccessFlags
}

// EncodedMethod is a method of a class body. MethodIdx is the absolute method_ids
// index; Code is nil for abstract and native methods.
type EncodedMethod struct {
	MethodIdx   uint32
	AccessFlags format.AccessFlags
	Code        *CodeItem
}

func (m *EncodedMethod) setRef(field RefField, target Item) bool {
	if field != RefCode {
		return false
	}

	return assignRef(&m.Code, target)
}

// ClassData is a class_data_item. Member lists hold absolute indices in ascending
// order; the on-disk deltas are derived on every write.
type ClassData struct {
	itemBase
	StaticFields   []EncodedField
	InstanceFields []EncodedField
	DirectMethods  []*EncodedMethod
	VirtualMethods []*EncodedMethod
}

func (*ClassData) Type() format.SectionType { return format.TypeClassDataItem }

// Methods iterates direct then virtual methods.
func (cd *ClassData) Methods() iter.Seq[*EncodedMethod] {
	return func(yield func(*EncodedMethod) bool) {
		for _, m := range cd.DirectMethods {
			if !yield(m) {
				return
			}
		}
		for _, m := range cd.VirtualMethods {
			if !yield(m) {
				return
			}
		}
	}
}

func (p *parser) parseClassData(off uint32) (*ClassData, error) {
	c := cursor.New(int(off), 1)
	var sizes [4]uint32
	for i := range sizes {
		v, err := encoding.ReadUleb128(p.buf, c)
		if err != nil {
			return nil, err
		}
		sizes[i] = v
	}
	// each member takes at least two bytes; reject counts the buffer cannot hold
	if remaining := len(p.buf) - c.Pos(); int(sizes[0])+int(sizes[1])+int(sizes[2])+int(sizes[3]) > remaining/2 {
		return nil, fmt.Errorf("%w: class data at 0x%x declares more members than fit", errs.ErrTruncatedItem, off)
	}

	cd := &ClassData{}
	var err error
	if cd.StaticFields, err = p.parseEncodedFields(c, sizes[0]); err != nil {
		return nil, err
	}
	if cd.InstanceFields, err = p.parseEncodedFields(c, sizes[1]); err != nil {
		return nil, err
	}
	if cd.DirectMethods, err = p.parseEncodedMethods(c, sizes[2]); err != nil {
		return nil, err
	}
	if cd.VirtualMethods, err = p.parseEncodedMethods(c, sizes[3]); err != nil {
		return nil, err
	}

	return cd, nil
}

func (p *parser) parseEncodedFields(c *cursor.Cursor, n uint32) ([]EncodedField, error) {
	fields := make([]EncodedField, n)
	var idx uint32
	for i := range fields {
		diff, err := encoding.ReadUleb128(p.buf, c)
		if err != nil {
			return nil, err
		}
		access, err := encoding.ReadUleb128(p.buf, c)
		if err != nil {
			return nil, err
		}
		idx += diff
		fields[i] = EncodedField{FieldIdx: idx, AccessFlags: format.AccessFlags(access)}
	}

	return fields, nil
}

func (p *parser) parseEncodedMethods(c *cursor.Cursor, n uint32) ([]*EncodedMethod, error) {
	methods := make([]*EncodedMethod, n)
	var idx uint32
	for i := range methods {
		diff, err := encoding.ReadUleb128(p.buf, c)
		if err != nil {
			return nil, err
		}
		access, err := encoding.ReadUleb128(p.buf, c)
		if err != nil {
			return nil, err
		}
		codeOff, err := encoding.ReadUleb128(p.buf, c)
		if err != nil {
			return nil, err
		}
		code, err := resolve(p, p.reg.Codes, format.TypeCodeItem, codeOff, (*parser).parseCodeItem)
		if err != nil {
			return nil, err
		}
		idx += diff
		methods[i] = &EncodedMethod{MethodIdx: idx, AccessFlags: format.AccessFlags(access), Code: code}
	}

	return methods, nil
}

// memberDeltas converts ascending absolute indices to on-disk deltas. The first
// delta is the absolute index itself.
func memberDeltas(indices []uint32) ([]uint32, error) {
	deltas := make([]uint32, len(indices))
	var prev uint32
	for i, idx := range indices {
		if i > 0 && idx <= prev {
			return nil, fmt.Errorf("%w: member index %d follows %d", errs.ErrStructuralInconsistency, idx, prev)
		}
		deltas[i] = idx - prev
		prev = idx
	}

	return deltas, nil
}

func fieldIndices(fields []EncodedField) []uint32 {
	out := make([]uint32, len(fields))
	for i, f := range fields {
		out[i] = f.FieldIdx
	}

	return out
}

func methodIndices(methods []*EncodedMethod) ([]uint32, error) {
	out := make([]uint32, len(methods))
	for i, m := range methods {
		if m == nil {
			return nil, fmt.Errorf("%w: nil method in class data", errs.ErrStructuralInconsistency)
		}
		out[i] = m.MethodIdx
	}

	return out, nil
}

func (cd *ClassData) encode(w *writer, dst []byte) ([]byte, error) {
	dst = encoding.AppendUleb128(dst, uint32(len(cd.StaticFields)))   //nolint:gosec
	dst = encoding.AppendUleb128(dst, uint32(len(cd.InstanceFields))) //nolint:gosec
	dst = encoding.AppendUleb128(dst, uint32(len(cd.DirectMethods)))  //nolint:gosec
	dst = encoding.AppendUleb128(dst, uint32(len(cd.VirtualMethods))) //nolint:gosec

	for _, fields := range [][]EncodedField{cd.StaticFields, cd.InstanceFields} {
		deltas, err := memberDeltas(fieldIndices(fields))
		if err != nil {
			return nil, err
		}
		for i, f := range fields {
			dst = encoding.AppendUleb128(dst, deltas[i])
			dst = encoding.AppendUleb128(dst, uint32(f.AccessFlags))
		}
	}

	for _, methods := range [][]*EncodedMethod{cd.DirectMethods, cd.VirtualMethods} {
		indices, err := methodIndices(methods)
		if err != nil {
			return nil, err
		}
		deltas, err := memberDeltas(indices)
		if err != nil {
			return nil, err
		}
		for i, m := range methods {
			codeOff, err := offsetOf(w.reg.Codes, m.Code)
			if err != nil {
				return nil, err
			}
			dst = encoding.AppendUleb128(dst, deltas[i])
			dst = encoding.AppendUleb128(dst, uint32(m.AccessFlags))
			dst = encoding.AppendUleb128(dst, codeOff)
		}
	}

	return dst, nil
}
