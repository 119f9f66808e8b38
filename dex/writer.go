package dex

import (
	"crypto/sha1" //nolint:gosec
	"fmt"
	"hash/adler32"
	"slices"

	"github.com/rs/zerolog"

	"github.com/arloliu/dexkit/endian"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
	"github.com/arloliu/dexkit/internal/pool"
	"github.com/arloliu/dexkit/section"
)

// writer lays out one container into a pooled buffer. Positions in the buffer are
// absolute file offsets.
type writer struct {
	reg     *Registry
	buf     *pool.ByteBuffer
	engine  endian.EndianEngine
	log     zerolog.Logger
	offsets map[format.SectionType]uint32
}

// dataEncoder is implemented by every item of the data region.
type dataEncoder interface {
	Item
	encode(w *writer, dst []byte) ([]byte, error)
}

// indexEncoder is implemented by every identifier table entry.
type indexEncoder interface {
	Item
	writeEntry(w *writer, b []byte) error
}

// offsetOf returns the write-time offset of a referenced data item, 0 for an absent
// reference, or ErrDanglingReference if the item is no longer held by its pool.
func offsetOf[T any, V interface {
	*T
	Item
}](p *Pool[V], item V) (uint32, error) {
	if item == nil {
		return 0, nil
	}
	if !p.Holds(item) {
		return 0, fmt.Errorf("%w: %s with key 0x%x is not in its pool", errs.ErrDanglingReference, item.Type(), item.Key())
	}

	return item.Offset(), nil
}

// writeContainer serializes header and registry into buf, which must be empty.
// On success the header is updated in place; on failure header is left untouched.
func writeContainer(buf *pool.ByteBuffer, header *section.Header, reg *Registry, log zerolog.Logger) error {
	w := &writer{
		reg:     reg,
		buf:     buf,
		engine:  header.Engine(),
		log:     log,
		offsets: make(map[format.SectionType]uint32),
	}

	next := *header
	if err := w.layoutIndexRegion(); err != nil {
		return err
	}
	dataOff := w.buf.Len()

	for _, tag := range format.DataSections {
		if err := w.writeDataSection(tag); err != nil {
			return err
		}
	}

	w.buf.PadTo(4)
	mapOff := w.buf.Len()
	w.offsets[format.TypeHeaderItem] = 0
	w.offsets[format.TypeMapList] = uint32(mapOff) //nolint:gosec
	mapItems := w.mapItems()
	start := w.buf.ExtendZeroed(section.MapListSize(len(mapItems)))
	section.WriteMapList(w.buf.B, start, mapItems, w.engine)
	w.log.Debug().Int("sections", len(mapItems)).Int("offset", mapOff).Msg("write map list")

	for _, tag := range format.IndexSections {
		if err := w.writeIndexSection(tag); err != nil {
			return err
		}
	}

	fileSize := uint32(w.buf.Len()) //nolint:gosec
	for _, tag := range format.IndexSections {
		span := next.IDSpan(tag)
		*span = section.Span{}
		if off, ok := w.offsets[tag]; ok {
			p, _ := reg.pool(tag)
			*span = section.Span{Size: uint32(p.Len()), Off: off} //nolint:gosec
		}
	}
	next.FileSize = fileSize
	next.HeaderSize = section.HeaderSize
	next.LinkSize = 0
	next.LinkOff = 0
	next.MapOff = uint32(mapOff)   //nolint:gosec
	next.DataOff = uint32(dataOff) //nolint:gosec
	next.DataSize = fileSize - next.DataOff
	next.Checksum = 0
	next.Signature = [section.SignatureSize]byte{}
	next.WriteToSlice(w.buf.B, 0)
	w.log.Debug().Uint32("file_size", fileSize).Msg("update header")

	next.Signature = sha1.Sum(w.buf.B[section.SignedDataOffset:]) //nolint:gosec
	copy(w.buf.B[section.SignatureOffset:section.SignedDataOffset], next.Signature[:])
	w.log.Debug().Hex("signature", next.Signature[:]).Msg("update signature")

	next.Checksum = adler32.Checksum(w.buf.B[section.SignatureOffset:])
	w.engine.PutUint32(w.buf.B[section.ChecksumOffset:], next.Checksum)
	w.log.Debug().Uint32("checksum", next.Checksum).Msg("update checksum")

	reg.rebuild(w.offsets)
	*header = next

	return nil
}

// layoutIndexRegion reserves the header and every identifier table, recording
// where each table starts.
func (w *writer) layoutIndexRegion() error {
	size := section.HeaderSize
	for _, tag := range format.IndexSections {
		p, _ := w.reg.pool(tag)
		if !p.Contiguous() {
			return fmt.Errorf("%w: %s keys are not 0..%d", errs.ErrStructuralInconsistency, tag, p.Len()-1)
		}
		if p.Len() == 0 {
			continue
		}
		w.offsets[tag] = uint32(size) //nolint:gosec
		size += p.Len() * tag.EntrySize()
	}
	w.buf.ExtendZeroed(size)

	return nil
}

func (w *writer) writeDataSection(tag format.SectionType) error {
	p, err := w.reg.pool(tag)
	if err != nil {
		return err
	}
	if p.Len() == 0 {
		return nil
	}

	w.buf.PadTo(4)
	w.offsets[tag] = uint32(w.buf.Len()) //nolint:gosec
	align := tag.ItemAlignment()
	for _, item := range p.items() {
		enc, ok := item.(dataEncoder)
		if !ok {
			return fmt.Errorf("%w: %T in %s", errs.ErrItemTypeMismatch, item, tag)
		}
		if align > 1 {
			w.buf.PadTo(align)
		}
		enc.base().off = uint32(w.buf.Len()) //nolint:gosec
		out, err := enc.encode(w, w.buf.B)
		if err != nil {
			return fmt.Errorf("%s 0x%x: %w", tag, item.Key(), err)
		}
		w.buf.B = out
	}
	w.log.Debug().Int("count", p.Len()).Uint32("offset", w.offsets[tag]).Msg("write " + tag.String())

	return nil
}

func (w *writer) writeIndexSection(tag format.SectionType) error {
	start, ok := w.offsets[tag]
	if !ok {
		return nil
	}
	p, _ := w.reg.pool(tag)
	size := tag.EntrySize()
	pos := int(start)
	for _, item := range p.items() {
		enc, ok := item.(indexEncoder)
		if !ok {
			return fmt.Errorf("%w: %T in %s", errs.ErrItemTypeMismatch, item, tag)
		}
		enc.base().off = uint32(pos) //nolint:gosec
		if err := enc.writeEntry(w, w.buf.B[pos:pos+size]); err != nil {
			return fmt.Errorf("%s[%d]: %w", tag, item.Key(), err)
		}
		pos += size
	}
	w.log.Debug().Int("count", p.Len()).Uint32("offset", start).Msg("write " + tag.String())

	return nil
}

// mapItems lists every non-empty section sorted by tag.
func (w *writer) mapItems() []section.MapItem {
	items := make([]section.MapItem, 0, len(w.offsets))
	for tag, off := range w.offsets {
		count := uint32(1)
		if p, err := w.reg.pool(tag); err == nil {
			count = uint32(p.Len()) //nolint:gosec
		}
		items = append(items, section.MapItem{Type: tag, Size: count, Offset: off})
	}
	slices.SortFunc(items, func(a, b section.MapItem) int {
		return int(a.Type) - int(b.Type)
	})

	return items
}
