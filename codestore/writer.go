package codestore

import (
	"bytes"
	"crypto/sha1" //nolint:gosec
	"fmt"
	"hash/adler32"
	"io"
	"os"

	"github.com/arloliu/dexkit/compress"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
	"github.com/arloliu/dexkit/internal/hash"
	"github.com/arloliu/dexkit/internal/options"
	"github.com/arloliu/dexkit/internal/pool"
)

type pendingEntry struct {
	kind  Kind
	name  string
	value string // KindKeyValue
	data  []byte // KindFile, already compressed
}

// Writer collects entries and serializes them into a code store.
//
// Entry names are unique per kind: a file and a key may share a name, two files
// may not.
//
// Note: a Writer is not safe for concurrent use.
type Writer struct {
	*Config

	codec   compress.Codec
	entries []pendingEntry
	used    map[Kind]map[uint64][]int // name fingerprint to entry positions
	stats   compress.Stats
}

// NewWriter creates an empty writer.
//
// Parameters:
//   - opts: WithCompression, WithEngine, WithLogger
//
// Returns:
//   - *Writer: The writer
//   - error: Any option error
func NewWriter(opts ...Option) (*Writer, error) {
	cfg := NewConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	codec, err := compress.CreateCodec(cfg.compression, "code store")
	if err != nil {
		return nil, err
	}

	return &Writer{
		Config: cfg,
		codec:  codec,
		used:   map[Kind]map[uint64][]int{KindKeyValue: {}, KindFile: {}},
		stats:  compress.Stats{Algorithm: cfg.compression},
	}, nil
}

func (w *Writer) claim(kind Kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty %s name", errs.ErrInvalidStoreEntry, kind)
	}
	id := hash.ID(name)
	for _, i := range w.used[kind][id] {
		if w.entries[i].name == name {
			return fmt.Errorf("%w: %s %q", errs.ErrDuplicateStoreEntry, kind, name)
		}
	}
	w.used[kind][id] = append(w.used[kind][id], len(w.entries))

	return nil
}

// AddKeyValue adds a key/value entry.
func (w *Writer) AddKeyValue(key, value string) error {
	if err := w.claim(KindKeyValue, key); err != nil {
		return err
	}
	w.entries = append(w.entries, pendingEntry{kind: KindKeyValue, name: key, value: value})

	return nil
}

// AddFile compresses data with the configured codec and adds it under name.
func (w *Writer) AddFile(name string, data []byte) error {
	packed, err := w.codec.Compress(data)
	if err != nil {
		return fmt.Errorf("compress %q: %w", name, err)
	}
	if w.compression == format.CompressionNone {
		packed = bytes.Clone(data)
	}
	if err := w.claim(KindFile, name); err != nil {
		return err
	}
	w.stats.Add(len(data), len(packed))
	w.entries = append(w.entries, pendingEntry{kind: KindFile, name: name, data: packed})
	w.logger.Debug().Str("name", name).Int("size", len(data)).Int("stored", len(packed)).Msg("add file")

	return nil
}

// Len returns the number of entries added so far.
func (w *Writer) Len() int {
	return len(w.entries)
}

// Stats returns the payload sizes before and after compression.
func (w *Writer) Stats() compress.Stats {
	return w.stats
}

// Bytes serializes every entry added so far. The writer stays usable.
//
// Returns:
//   - []byte: The store, owned by the caller
//   - error: Always nil for entries accepted by AddFile and AddKeyValue
func (w *Writer) Bytes() ([]byte, error) {
	buf := pool.GetStoreBuffer()
	defer pool.PutStoreBuffer(buf)

	w.encode(buf)

	return buf.Clone(), nil
}

// WriteTo serializes the store and streams it to dst.
//
// Returns:
//   - int64: Number of bytes written to dst
//   - error: ErrIO wrapping the failure of dst
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	buf := pool.GetStoreBuffer()
	defer pool.PutStoreBuffer(buf)

	w.encode(buf)
	n, err := buf.WriteTo(dst)
	if err != nil {
		return n, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return n, nil
}

func (w *Writer) encode(buf *pool.ByteBuffer) {
	engine := w.engine
	header := Header{Version: Version, Compression: w.compression, Count: uint32(len(w.entries)), engine: engine} //nolint:gosec
	header.WriteToSlice(buf.B, buf.ExtendZeroed(HeaderSize))

	offsets := make([]uint32, len(w.entries))
	for i, e := range w.entries {
		offsets[i] = uint32(buf.Len()) //nolint:gosec
		buf.B = appendString(buf.B, engine, e.name)
		switch e.kind {
		case KindKeyValue:
			buf.B = appendString(buf.B, engine, e.value)
		case KindFile:
			buf.B = engine.AppendUint32(buf.B, uint32(len(e.data))) //nolint:gosec
			buf.B = append(buf.B, e.data...)
		}
	}

	for i, e := range w.entries {
		buf.B = engine.AppendUint32(buf.B, uint32(e.kind))
		buf.B = engine.AppendUint32(buf.B, offsets[i])
	}

	buf.B = engine.AppendUint32(buf.B, header.Count)
	sig := sha1.Sum(buf.B) //nolint:gosec
	buf.B = append(buf.B, sig[:]...)
	buf.B = engine.AppendUint32(buf.B, adler32.Checksum(buf.B))

	w.logger.Debug().Uint32("entries", header.Count).Int("size", buf.Len()).
		Str("compression", w.compression.String()).Msg("write code store")
}

// WriteFile serializes the store to path with mode 0o644.
func (w *Writer) WriteFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if _, err := w.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return nil
}
