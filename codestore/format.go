package codestore

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/dexkit/endian"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
)

// Layout:
//
//	header   16 bytes
//	data     entries, back to back
//	index    {u32 kind, u32 data offset} per entry
//	footer   u32 count, sha1[20] of everything before it, adler32 of everything before it
const (
	HeaderSize = 16
	FooterSize = 4 + sha1Size + 4
	IndexSize  = 8

	// Version is the only layout version written and accepted.
	Version uint16 = 1

	sha1Size = 20
	flagBig  = 0x01
)

// Magic opens every code store.
var Magic = [4]byte{'D', 'X', 'C', 'S'}

// Kind tags an index entry.
type Kind uint32

const (
	KindKeyValue Kind = 1 // two strings
	KindFile     Kind = 2 // name string, u32 size, payload
)

func (k Kind) String() string {
	switch k {
	case KindKeyValue:
		return "KeyValue"
	case KindFile:
		return "File"
	default:
		return fmt.Sprintf("Kind(%d)", uint32(k))
	}
}

// Header is the fixed header of a code store.
type Header struct {
	Version     uint16
	Compression format.CompressionType
	Count       uint32

	engine endian.EndianEngine
}

// Engine returns the byte order of the store.
func (h *Header) Engine() endian.EndianEngine {
	if h.engine == nil {
		return endian.GetLittleEndianEngine()
	}

	return h.engine
}

// WriteToSlice writes the header into data at offset and returns the next position.
func (h *Header) WriteToSlice(data []byte, offset int) int {
	engine := h.Engine()
	b := data[offset : offset+HeaderSize]
	copy(b[0:4], Magic[:])
	engine.PutUint16(b[4:], h.Version)
	b[6] = byte(h.Compression)
	b[7] = 0
	if engine == endian.GetBigEndianEngine() {
		b[7] = flagBig
	}
	engine.PutUint32(b[8:], h.Count)
	engine.PutUint32(b[12:], 0)

	return offset + HeaderSize
}

// Parse reads a header from the first HeaderSize bytes of data.
//
// Returns:
//   - error: ErrInvalidStoreHeader for a short input, a wrong magic or an unknown
//     version
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: %d bytes", errs.ErrInvalidStoreHeader, len(data))
	}
	if [4]byte(data[0:4]) != Magic {
		return fmt.Errorf("%w: magic %q", errs.ErrInvalidStoreHeader, data[0:4])
	}

	h.engine = binary.LittleEndian
	if data[7]&flagBig != 0 {
		h.engine = binary.BigEndian
	}
	h.Version = h.engine.Uint16(data[4:])
	if h.Version != Version {
		return fmt.Errorf("%w: version %d", errs.ErrInvalidStoreHeader, h.Version)
	}
	h.Compression = format.CompressionType(data[6])
	h.Count = h.engine.Uint32(data[8:])

	return nil
}

// appendString writes a length-prefixed, NUL-terminated string. The length
// counts the terminator.
func appendString(dst []byte, engine endian.EndianEngine, s string) []byte {
	dst = engine.AppendUint32(dst, uint32(len(s)+1)) //nolint:gosec
	dst = append(dst, s...)

	return append(dst, 0)
}

// readString reads a string written by appendString at pos and returns it with
// the position after it.
func readString(data []byte, engine endian.EndianEngine, pos int) (string, int, error) {
	if pos < 0 || pos+4 > len(data) {
		return "", 0, fmt.Errorf("%w: string at 0x%x", errs.ErrTruncatedItem, pos)
	}
	size := int(engine.Uint32(data[pos:]))
	pos += 4
	if size == 0 || pos+size > len(data) {
		return "", 0, fmt.Errorf("%w: string at 0x%x declares %d bytes", errs.ErrTruncatedItem, pos-4, size)
	}
	if data[pos+size-1] != 0 {
		return "", 0, fmt.Errorf("%w: string at 0x%x is not NUL-terminated", errs.ErrInvalidStoreEntry, pos-4)
	}

	return string(data[pos : pos+size-1]), pos + size, nil
}
