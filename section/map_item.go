package section

import (
	"fmt"

	"github.com/arloliu/dexkit/endian"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
)

// MapItem is one entry of the map list: the type, count and start offset of a section.
//
// Offset: 0, Size: 2 type; Offset: 2, Size: 2 unused; Offset: 4, Size: 4 size;
// Offset: 8, Size: 4 offset.
type MapItem struct {
	Type   format.SectionType
	Unused uint16
	Size   uint32
	Offset uint32
}

// Parse parses a map item from exactly MapItemSize bytes.
func (m *MapItem) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != MapItemSize {
		return fmt.Errorf("%w: map item is %d bytes", errs.ErrTruncatedItem, len(data))
	}

	m.Type = format.SectionType(engine.Uint16(data[0:2]))
	m.Unused = engine.Uint16(data[2:4])
	m.Size = engine.Uint32(data[4:8])
	m.Offset = engine.Uint32(data[8:12])

	return nil
}

// Bytes returns the map item encoded with the given engine.
func (m *MapItem) Bytes(engine endian.EndianEngine) []byte {
	var b [MapItemSize]byte
	m.WriteToSlice(b[:], 0, engine)

	return b[:]
}

// WriteToSlice writes to a pre-allocated slice and returns the next position.
//
// Parameters:
//   - data: Pre-allocated slice with at least offset+MapItemSize bytes
//   - offset: Starting position in the slice
//   - engine: Endian engine for byte order
//
// Returns:
//   - int: Next write position (offset + MapItemSize)
func (m *MapItem) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	engine.PutUint16(data[offset:], uint16(m.Type))
	engine.PutUint16(data[offset+2:], m.Unused)
	engine.PutUint32(data[offset+4:], m.Size)
	engine.PutUint32(data[offset+8:], m.Offset)

	return offset + MapItemSize
}

// ParseMapList parses the map list stored at off.
//
// Returns:
//   - []MapItem: Entries in file order
//   - error: ErrTruncatedItem if the list runs past the data
func ParseMapList(data []byte, off uint32, engine endian.EndianEngine) ([]MapItem, error) {
	start := int(off)
	if start+MapListHeaderSize > len(data) || start < 0 {
		return nil, fmt.Errorf("%w: map list at 0x%x", errs.ErrTruncatedItem, off)
	}

	count := int(engine.Uint32(data[start:]))
	pos := start + MapListHeaderSize
	if count < 0 || pos+count*MapItemSize > len(data) {
		return nil, fmt.Errorf("%w: map list at 0x%x declares %d entries", errs.ErrTruncatedItem, off, count)
	}

	items := make([]MapItem, count)
	for i := range items {
		if err := items[i].Parse(data[pos:pos+MapItemSize], engine); err != nil {
			return nil, err
		}
		pos += MapItemSize
	}

	return items, nil
}

// MapListSize returns the encoded size of a map list with n entries.
func MapListSize(n int) int {
	return MapListHeaderSize + n*MapItemSize
}

// WriteMapList writes a map list with the given entries into data at offset and
// returns the next position.
func WriteMapList(data []byte, offset int, items []MapItem, engine endian.EndianEngine) int {
	engine.PutUint32(data[offset:], uint32(len(items))) //nolint:gosec
	pos := offset + MapListHeaderSize
	for i := range items {
		pos = items[i].WriteToSlice(data, pos, engine)
	}

	return pos
}
