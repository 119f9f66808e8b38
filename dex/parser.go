package dex

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arloliu/dexkit/endian"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
	"github.com/arloliu/dexkit/section"
)

// parser carries everything item parsers need: the source bytes, the byte order
// and the registry that memoizes resolved items.
type parser struct {
	buf    []byte
	engine endian.EndianEngine
	reg    *Registry
	log    zerolog.Logger
}

func (p *parser) need(pos int, n int, what format.SectionType) error {
	if pos < 0 || n < 0 || pos+n > len(p.buf) {
		return fmt.Errorf("%w: %s at 0x%x needs %d bytes", errs.ErrTruncatedItem, what, pos, n)
	}

	return nil
}

func (p *parser) u16(pos int) uint16 {
	return p.engine.Uint16(p.buf[pos:])
}

func (p *parser) u32(pos int) uint32 {
	return p.engine.Uint32(p.buf[pos:])
}

// span copies buf[start:end] so parsed items never alias the caller's input.
func (p *parser) span(start, end int) []byte {
	return bytes.Clone(p.buf[start:end])
}

// resolve returns the item of section tag at off, parsing and caching it on first
// use. A zero offset is the absent reference and yields the zero value.
func resolve[T any, V interface {
	*T
	Item
}](p *parser, pool *Pool[V], tag format.SectionType, off uint32, parse func(*parser, uint32) (V, error)) (V, error) {
	if off == 0 {
		return nil, nil
	}

	sec := p.reg.Section(tag)
	if sec == nil {
		return nil, fmt.Errorf("%w: %s at 0x%x but the section is not declared", errs.ErrDanglingReference, tag, off)
	}
	if off < section.HeaderSize || int(off) >= len(p.buf) {
		return nil, fmt.Errorf("%w: %s at 0x%x outside the container", errs.ErrDanglingReference, tag, off)
	}

	return pool.GetOrParse(off, func(key uint32) (V, error) {
		v, err := parse(p, key)
		if err != nil {
			return nil, err
		}
		v.base().off = key

		return v, nil
	})
}

// parseContainer runs the whole parse: header, map list, then the six identifier
// tables in order. Data items are reached only through references.
func parseContainer(data []byte, cfg *Config) (*Container, error) {
	header, err := section.ParseHeader(data)
	if err != nil {
		return nil, err
	}
	log := cfg.logger
	log.Debug().Str("magic", string(bytes.TrimRight(header.Magic[:], "\x00\n"))).
		Uint32("file_size", header.FileSize).Msg("parse header")

	if header.FileSize != uint32(len(data)) { //nolint:gosec
		log.Warn().Uint32("declared", header.FileSize).Int("actual", len(data)).Msg("file size mismatch")
	}
	if cfg.verifyChecksum {
		if err := VerifyChecksums(data); err != nil {
			return nil, err
		}
	}
	if header.LinkSize != 0 {
		log.Warn().Uint32("link_size", header.LinkSize).Uint32("link_off", header.LinkOff).
			Msg("link section is not preserved")
	}

	engine := header.Engine()
	items, err := section.ParseMapList(data, header.MapOff, engine)
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	for _, mi := range items {
		if !mi.Type.IsKnown() {
			return nil, fmt.Errorf("%w: map list section type 0x%04x", errs.ErrUnsupportedEncoding, uint16(mi.Type))
		}
		if reg.Section(mi.Type) != nil {
			return nil, fmt.Errorf("%w: %s listed twice in map list", errs.ErrStructuralInconsistency, mi.Type)
		}
		reg.declare(mi.Type, mi.Size, mi.Offset)
	}
	log.Debug().Int("sections", len(items)).Uint32("offset", header.MapOff).Msg("parse map list")

	p := &parser{buf: data, engine: engine, reg: reg, log: log}
	for _, tag := range format.IndexSections {
		if err := p.parseIndexSection(tag); err != nil {
			return nil, err
		}
	}

	return &Container{header: header, reg: reg, cfg: cfg}, nil
}

func (p *parser) parseIndexSection(tag format.SectionType) error {
	sec := p.reg.Section(tag)
	if sec == nil {
		return nil
	}

	size := tag.EntrySize()
	start := int(sec.Offset)
	if err := p.need(start, int(sec.Count)*size, tag); err != nil {
		return err
	}

	for i := range sec.Count {
		pos := start + int(i)*size
		var err error
		switch tag {
		case format.TypeStringIDItem:
			err = addIndexed(p.reg.StringIDs, i, pos, p.parseStringID)
		case format.TypeTypeIDItem:
			err = addIndexed(p.reg.TypeIDs, i, pos, p.parseTypeID)
		case format.TypeProtoIDItem:
			err = addIndexed(p.reg.ProtoIDs, i, pos, p.parseProtoID)
		case format.TypeFieldIDItem:
			err = addIndexed(p.reg.FieldIDs, i, pos, p.parseFieldID)
		case format.TypeMethodIDItem:
			err = addIndexed(p.reg.MethodIDs, i, pos, p.parseMethodID)
		case format.TypeClassDefItem:
			err = addIndexed(p.reg.ClassDefs, i, pos, p.parseClassDef)
		}
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", tag, i, err)
		}
	}
	p.log.Debug().Uint32("count", sec.Count).Uint32("offset", sec.Offset).Msg("parse " + tag.String())

	return nil
}

func addIndexed[V Item](pool *Pool[V], idx uint32, pos int, parse func(int) (V, error)) error {
	v, err := parse(pos)
	if err != nil {
		return err
	}
	v.base().off = uint32(pos) //nolint:gosec

	return pool.AppendWithKey(idx, v)
}
