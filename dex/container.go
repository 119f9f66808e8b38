package dex

import (
	"crypto/sha1" //nolint:gosec
	"fmt"
	"hash/adler32"
	"io"
	"os"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/internal/pool"
	"github.com/arloliu/dexkit/internal/strindex"
	"github.com/arloliu/dexkit/section"
)

// Container is one DEX file held as a header plus a registry of item pools.
//
// A Container is created by Parse, Open or New, mutated through the registry
// pools or the mutation methods, and serialized by Write. Writing renumbers every
// data offset and recomputes the header, the map list, the signature and the
// checksum.
//
// A Container is not safe for concurrent use; distinct containers share nothing.
type Container struct {
	header section.Header
	reg    *Registry
	cfg    *Config

	// strings is rebuilt lazily when gen moves past stringsGen.
	strings    *strindex.Index
	stringsGen uint64
	gen        uint64
}

// New creates an empty container. Items are added through AppendItem or the
// registry pools and the first Write lays them out.
//
// Parameters:
//   - opts: Optional configuration (WithMagic, WithBigEndian, WithLogger)
//
// Returns:
//   - *Container: Empty container
//   - error: Any error from the options
func New(opts ...Option) (*Container, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Container{
		header: *section.NewHeaderWithEngine(cfg.magic, cfg.engine),
		reg:    NewRegistry(),
		cfg:    cfg,
	}, nil
}

// Parse decodes a complete DEX container from data.
//
// The input is not retained: every parsed item owns a copy of its bytes.
// Identifier tables are parsed in full; data items are parsed when first
// referenced and shared by every later reference to the same offset. Data items
// that nothing references are not loaded and are dropped by the next Write.
//
// Parameters:
//   - data: The complete container bytes
//   - opts: Optional configuration (WithLogger, WithVerifyChecksum)
//
// Returns:
//   - *Container: The parsed container
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic, ErrUnsupportedEncoding,
//     ErrMalformedVarint, ErrDanglingReference, ErrTruncatedItem,
//     ErrStructuralInconsistency or ErrChecksumMismatch
func Parse(data []byte, opts ...Option) (*Container, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return parseContainer(data, cfg)
}

// Open reads and parses the container stored at path.
func Open(path string, opts ...Option) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	c, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Header returns a copy of the header as of the last parse or write.
func (c *Container) Header() section.Header {
	return c.header
}

// Registry returns the pools backing the container. Changes made directly through
// the pools are picked up by the next Write.
func (c *Container) Registry() *Registry {
	return c.reg
}

// Write serializes the container and returns the new bytes.
//
// On success the header and every section descriptor describe the returned
// bytes, and each item's Offset reports where it was written. On failure the
// header is left unchanged.
//
// Returns:
//   - []byte: The serialized container, owned by the caller
//   - error: ErrDanglingReference, ErrStructuralInconsistency or an item encoding error
func (c *Container) Write() ([]byte, error) {
	buf := pool.GetDexBuffer()
	defer pool.PutDexBuffer(buf)

	if err := c.write(buf); err != nil {
		return nil, err
	}

	return buf.Clone(), nil
}

// WriteTo serializes the container and streams the bytes to dst without an
// intermediate copy. Serialization errors are returned before anything is written.
//
// Returns:
//   - int64: Number of bytes written to dst
//   - error: A Write error, or ErrIO wrapping the failure of dst
func (c *Container) WriteTo(dst io.Writer) (int64, error) {
	buf := pool.GetDexBuffer()
	defer pool.PutDexBuffer(buf)

	if err := c.write(buf); err != nil {
		return 0, err
	}
	n, err := buf.WriteTo(dst)
	if err != nil {
		return n, fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return n, nil
}

func (c *Container) write(buf *pool.ByteBuffer) error {
	if err := writeContainer(buf, &c.header, c.reg, c.cfg.logger); err != nil {
		return err
	}
	c.gen++

	return nil
}

// WriteFile serializes the container to path with mode 0o644. The file is only
// created once the container serializes successfully.
func (c *Container) WriteFile(path string) error {
	buf := pool.GetDexBuffer()
	defer pool.PutDexBuffer(buf)

	if err := c.write(buf); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if _, err := buf.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrIO, err)
	}

	return nil
}

// VerifyChecksums checks the stored SHA-1 signature and adler32 checksum of a
// serialized container against its content.
//
// Returns:
//   - error: ErrInvalidHeaderSize, ErrUnsupportedEncoding or ErrChecksumMismatch
func VerifyChecksums(data []byte) error {
	header, err := section.ParseHeader(data)
	if err != nil {
		return err
	}

	sig := sha1.Sum(data[section.SignedDataOffset:]) //nolint:gosec
	if sig != header.Signature {
		return fmt.Errorf("%w: signature %x, computed %x", errs.ErrChecksumMismatch, header.Signature, sig)
	}

	sum := adler32.Checksum(data[section.SignatureOffset:])
	if sum != header.Checksum {
		return fmt.Errorf("%w: checksum 0x%08x, computed 0x%08x", errs.ErrChecksumMismatch, header.Checksum, sum)
	}

	return nil
}

// touch records a mutation that may invalidate cached lookups.
func (c *Container) touch() {
	c.gen++
}
