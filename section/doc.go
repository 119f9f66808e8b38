// Package section defines the fixed-size binary structures of a DEX container.
//
// It handles serialization of the 0x70-byte Header and of the map list that
// directs a reader to every section. Variable-length items live in the dex package.
//
// # Container Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (0x70 bytes, fixed)                              │
//	│  - magic, checksum, signature                           │
//	│  - file/header size, endian tag, link, map offset       │
//	│  - six {size, offset} pairs for identifier tables       │
//	│  - data size and offset                                 │
//	├─────────────────────────────────────────────────────────┤
//	│ Identifier tables (fixed-width entries)                 │
//	│  string_ids, type_ids, proto_ids, field_ids,            │
//	│  method_ids, class_defs                                 │
//	├─────────────────────────────────────────────────────────┤
//	│ Data region (offset-addressed items)                    │
//	│  ...                                                    │
//	│  map_list (u32 count + 12-byte MapItem entries)         │
//	└─────────────────────────────────────────────────────────┘
//
// # Byte Order
//
// The endian tag at 0x28 is always read little-endian first; its value selects the
// engine for every other field (see endian.EngineForTag).
//
// # Checksums
//
// The SHA-1 signature at 0x0c covers [0x20, EOF) and the Adler-32 checksum at 0x08
// covers [0x0c, EOF), so the signature must be computed before the checksum.
package section
