package codestore

import (
	"bytes"
	"crypto/sha1" //nolint:gosec
	"fmt"
	"hash/adler32"
	"os"
	"slices"

	"github.com/arloliu/dexkit/compress"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/internal/strindex"
)

// Entry describes one stored entry. For files, Value is empty and StoredSize is
// the payload size after compression.
type Entry struct {
	Kind       Kind
	Name       string
	Value      string
	StoredSize int
}

// Store is a parsed, read-only code store.
//
// A Store is safe for concurrent reads.
type Store struct {
	header  Header
	codec   compress.Codec
	entries []Entry
	data    [][]byte // stored payloads, parallel to entries
	files   *strindex.Index
	keys    *strindex.Index
}

// Read parses and verifies a serialized code store. The input is not retained.
//
// Returns:
//   - *Store: The parsed store
//   - error: ErrInvalidStoreHeader, ErrChecksumMismatch, ErrTruncatedItem,
//     ErrInvalidStoreEntry or ErrUnsupportedEncoding
func Read(data []byte) (*Store, error) {
	s := &Store{}
	if err := s.header.Parse(data); err != nil {
		return nil, err
	}
	if len(data) < HeaderSize+FooterSize {
		return nil, fmt.Errorf("%w: %d bytes leave no room for the footer", errs.ErrTruncatedItem, len(data))
	}
	codec, err := compress.GetCodec(s.header.Compression)
	if err != nil {
		return nil, err
	}
	s.codec = codec

	engine := s.header.Engine()
	footer := len(data) - FooterSize
	sumPos := len(data) - 4
	if sum := adler32.Checksum(data[:sumPos]); sum != engine.Uint32(data[sumPos:]) {
		return nil, fmt.Errorf("%w: code store checksum 0x%08x, computed 0x%08x", errs.ErrChecksumMismatch, engine.Uint32(data[sumPos:]), sum)
	}
	if sig := sha1.Sum(data[:footer+4]); !bytes.Equal(sig[:], data[footer+4:sumPos]) { //nolint:gosec
		return nil, fmt.Errorf("%w: code store signature", errs.ErrChecksumMismatch)
	}

	count := int(engine.Uint32(data[footer:]))
	if count != int(s.header.Count) {
		return nil, fmt.Errorf("%w: header declares %d entries, footer %d", errs.ErrInvalidStoreHeader, s.header.Count, count)
	}
	indexPos := footer - count*IndexSize
	if count < 0 || indexPos < HeaderSize {
		return nil, fmt.Errorf("%w: index of %d entries", errs.ErrTruncatedItem, count)
	}

	region := data[:indexPos]
	s.entries = make([]Entry, count)
	s.data = make([][]byte, count)
	for i := range count {
		pos := indexPos + i*IndexSize
		kind := Kind(engine.Uint32(data[pos:]))
		off := int(engine.Uint32(data[pos+4:]))
		if off < HeaderSize {
			return nil, fmt.Errorf("%w: entry %d at 0x%x", errs.ErrInvalidStoreEntry, i, off)
		}
		if err := s.readEntry(region, i, kind, off); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	s.buildIndexes()

	return s, nil
}

// Open reads and parses the store at path.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return Read(data)
}

func (s *Store) readEntry(region []byte, i int, kind Kind, off int) error {
	engine := s.header.Engine()
	name, pos, err := readString(region, engine, off)
	if err != nil {
		return err
	}
	e := Entry{Kind: kind, Name: name}

	switch kind {
	case KindKeyValue:
		if e.Value, _, err = readString(region, engine, pos); err != nil {
			return err
		}
	case KindFile:
		if pos+4 > len(region) {
			return fmt.Errorf("%w: file %q size", errs.ErrTruncatedItem, name)
		}
		size := int(engine.Uint32(region[pos:]))
		pos += 4
		if size < 0 || pos+size > len(region) {
			return fmt.Errorf("%w: file %q declares %d bytes", errs.ErrTruncatedItem, name, size)
		}
		s.data[i] = bytes.Clone(region[pos : pos+size])
		e.StoredSize = size
	default:
		return fmt.Errorf("%w: kind %d", errs.ErrInvalidStoreEntry, uint32(kind))
	}
	s.entries[i] = e

	return nil
}

func (s *Store) buildIndexes() {
	resolve := func(kind Kind) func(uint32) (string, bool) {
		return func(idx uint32) (string, bool) {
			if int(idx) >= len(s.entries) || s.entries[idx].Kind != kind {
				return "", false
			}

			return s.entries[idx].Name, true
		}
	}
	s.files = strindex.New(resolve(KindFile))
	s.keys = strindex.New(resolve(KindKeyValue))
	for i, e := range s.entries {
		if e.Kind == KindFile {
			s.files.Add(e.Name, uint32(i)) //nolint:gosec
		} else {
			s.keys.Add(e.Name, uint32(i)) //nolint:gosec
		}
	}
}

// Header returns the parsed header.
func (s *Store) Header() Header {
	return s.header
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns the entries in stored order.
func (s *Store) Entries() []Entry {
	return slices.Clone(s.entries)
}

// File returns the decompressed payload stored under name.
//
// Returns:
//   - []byte: The payload, owned by the caller
//   - error: ErrStoreEntryNotFound, or a decompression error
func (s *Store) File(name string) ([]byte, error) {
	idx := s.files.Lookup(name)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: file %q", errs.ErrStoreEntryNotFound, name)
	}

	out, err := s.codec.Decompress(s.data[idx[0]])
	if err != nil {
		return nil, fmt.Errorf("file %q: %w", name, err)
	}

	return bytes.Clone(out), nil
}

// Value returns the value stored under key.
func (s *Store) Value(key string) (string, error) {
	idx := s.keys.Lookup(key)
	if len(idx) == 0 {
		return "", fmt.Errorf("%w: key %q", errs.ErrStoreEntryNotFound, key)
	}

	return s.entries[idx[0]].Value, nil
}
