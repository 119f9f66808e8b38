package section

// Header layout.
const (
	HeaderSize       = 0x70 // fixed header size in bytes
	MagicSize        = 8
	ChecksumOffset   = 0x08 // adler32 checksum, covers [SignatureOffset, EOF)
	SignatureOffset  = 0x0c // sha-1 signature, covers [SignedDataOffset, EOF)
	SignatureSize    = 20
	SignedDataOffset = SignatureOffset + SignatureSize
	FileSizeOffset   = 0x20
	EndianTagOffset  = 0x28
	MapOffOffset     = 0x34
	IDSectionsOffset = 0x38 // six {size, off} pairs start here
	DataSizeOffset   = 0x68
)

// Map list layout.
const (
	MapListHeaderSize = 4  // u32 entry count
	MapItemSize       = 12 // u16 type, u16 unused, u32 size, u32 offset
)

// MagicPrefix is the fixed part of every DEX magic; it is followed by a three digit
// version and a NUL byte.
const MagicPrefix = "dex\n"

// DefaultMagic is the magic written by containers created from scratch.
var DefaultMagic = [MagicSize]byte{'d', 'e', 'x', '\n', '0', '3', '5', 0}
