package section

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/dexkit/endian"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
)

// Span is a {size, offset} pair as stored in the header for each identifier table.
type Span struct {
	Size uint32
	Off  uint32
}

// Header represents the fixed 0x70-byte header at the start of a DEX container.
type Header struct {
	// Magic is "dex\n" followed by a version such as "035" and a NUL byte.
	Magic [MagicSize]byte // byte offset 0x00-0x07
	// Checksum is the adler32 of everything after the checksum field.
	Checksum uint32 // byte offset 0x08-0x0b
	// Signature is the SHA-1 of everything after the signature field.
	Signature [SignatureSize]byte // byte offset 0x0c-0x1f

	FileSize   uint32 // byte offset 0x20
	HeaderSize uint32 // byte offset 0x24
	// EndianTag is endian.EndianConstant in the file's own byte order.
	EndianTag uint32 // byte offset 0x28
	LinkSize  uint32 // byte offset 0x2c
	LinkOff   uint32 // byte offset 0x30
	MapOff    uint32 // byte offset 0x34

	StringIDs Span // byte offset 0x38
	TypeIDs   Span // byte offset 0x40
	ProtoIDs  Span // byte offset 0x48
	FieldIDs  Span // byte offset 0x50
	MethodIDs Span // byte offset 0x58
	ClassDefs Span // byte offset 0x60

	DataSize uint32 // byte offset 0x68
	DataOff  uint32 // byte offset 0x6c

	engine endian.EndianEngine
}

// NewHeader returns a header for an empty little-endian container.
func NewHeader() *Header {
	return NewHeaderWithEngine(DefaultMagic, endian.GetLittleEndianEngine())
}

// NewHeaderWithEngine returns a header for an empty container with the given magic
// and byte order.
func NewHeaderWithEngine(magic [MagicSize]byte, engine endian.EndianEngine) *Header {
	return &Header{
		Magic:      magic,
		HeaderSize: HeaderSize,
		EndianTag:  endian.EndianConstant,
		engine:     engine,
	}
}

// Parse parses the header from a byte slice.
//
// The endian tag is read little-endian first and selects the engine used for every
// other multi-byte field.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly HeaderSize bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic or ErrUnsupportedEncoding
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: got %d bytes", errs.ErrInvalidHeaderSize, len(data))
	}

	copy(h.Magic[:], data[:MagicSize])
	if err := ValidateMagic(h.Magic); err != nil {
		return err
	}

	engine, err := endian.EngineForTag(binary.LittleEndian.Uint32(data[EndianTagOffset:]))
	if err != nil {
		return err
	}
	h.engine = engine

	h.Checksum = engine.Uint32(data[ChecksumOffset:])
	copy(h.Signature[:], data[SignatureOffset:SignedDataOffset])
	h.FileSize = engine.Uint32(data[0x20:])
	h.HeaderSize = engine.Uint32(data[0x24:])
	h.EndianTag = engine.Uint32(data[0x28:])
	h.LinkSize = engine.Uint32(data[0x2c:])
	h.LinkOff = engine.Uint32(data[0x30:])
	h.MapOff = engine.Uint32(data[0x34:])

	pos := IDSectionsOffset
	for _, t := range format.IndexSections {
		span := h.IDSpan(t)
		span.Size = engine.Uint32(data[pos:])
		span.Off = engine.Uint32(data[pos+4:])
		pos += 8
	}

	h.DataSize = engine.Uint32(data[DataSizeOffset:])
	h.DataOff = engine.Uint32(data[DataSizeOffset+4:])

	if h.HeaderSize < HeaderSize {
		return fmt.Errorf("%w: header_size field 0x%x", errs.ErrInvalidHeaderSize, h.HeaderSize)
	}

	return nil
}

// Engine returns the byte order declared by the header, little-endian by default.
func (h *Header) Engine() endian.EndianEngine {
	if h.engine == nil {
		return endian.GetLittleEndianEngine()
	}

	return h.engine
}

// IDSpan returns a pointer to the {size, off} pair of an identifier table, or nil
// for sections that are not identifier tables.
func (h *Header) IDSpan(t format.SectionType) *Span {
	switch t {
	case format.TypeStringIDItem:
		return &h.StringIDs
	case format.TypeTypeIDItem:
		return &h.TypeIDs
	case format.TypeProtoIDItem:
		return &h.ProtoIDs
	case format.TypeFieldIDItem:
		return &h.FieldIDs
	case format.TypeMethodIDItem:
		return &h.MethodIDs
	case format.TypeClassDefItem:
		return &h.ClassDefs
	default:
		return nil
	}
}

// Bytes serializes the header into a new HeaderSize byte slice.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.WriteToSlice(b, 0)

	return b
}

// WriteToSlice writes the header into data at offset and returns the next position.
//
// Parameters:
//   - data: Pre-allocated slice with at least offset+HeaderSize bytes
//   - offset: Starting position in the slice
//
// Returns:
//   - int: Next write position (offset + HeaderSize)
func (h *Header) WriteToSlice(data []byte, offset int) int {
	engine := h.Engine()
	b := data[offset : offset+HeaderSize]

	copy(b[:MagicSize], h.Magic[:])
	engine.PutUint32(b[ChecksumOffset:], h.Checksum)
	copy(b[SignatureOffset:SignedDataOffset], h.Signature[:])
	engine.PutUint32(b[0x20:], h.FileSize)
	engine.PutUint32(b[0x24:], h.HeaderSize)
	engine.PutUint32(b[0x28:], h.EndianTag)
	engine.PutUint32(b[0x2c:], h.LinkSize)
	engine.PutUint32(b[0x30:], h.LinkOff)
	engine.PutUint32(b[0x34:], h.MapOff)

	pos := IDSectionsOffset
	for _, t := range format.IndexSections {
		span := h.IDSpan(t)
		engine.PutUint32(b[pos:], span.Size)
		engine.PutUint32(b[pos+4:], span.Off)
		pos += 8
	}

	engine.PutUint32(b[DataSizeOffset:], h.DataSize)
	engine.PutUint32(b[DataSizeOffset+4:], h.DataOff)

	return offset + HeaderSize
}

// ParseHeader parses a Header from the start of a byte slice.
//
// Parameters:
//   - data: Byte slice containing the container (must be at least HeaderSize bytes)
//
// Returns:
//   - Header: Parsed header struct
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic or ErrUnsupportedEncoding
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: container is %d bytes", errs.ErrInvalidHeaderSize, len(data))
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}

// ValidateMagic checks that magic is "dex\n", three ASCII digits and a NUL byte.
func ValidateMagic(magic [MagicSize]byte) error {
	if string(magic[:len(MagicPrefix)]) != MagicPrefix || magic[MagicSize-1] != 0 {
		return fmt.Errorf("%w: %q", errs.ErrInvalidMagic, magic[:])
	}
	for _, b := range magic[len(MagicPrefix) : MagicSize-1] {
		if b < '0' || b > '9' {
			return fmt.Errorf("%w: %q", errs.ErrInvalidMagic, magic[:])
		}
	}

	return nil
}
