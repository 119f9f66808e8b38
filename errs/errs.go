// Package errs defines the sentinel errors returned by dexkit packages.
//
// Errors are wrapped with additional context using fmt.Errorf and the %w verb,
// so callers should match them with errors.Is:
//
//	c, err := dex.Parse(data)
//	if errors.Is(err, errs.ErrMalformedVarint) {
//	    // truncated or overflowing LEB128 value
//	}
package errs

import "errors"

// Parse and write taxonomy.
var (
	// ErrMalformedVarint is returned when a LEB128 value is truncated or overflows 32 bits.
	ErrMalformedVarint = errors.New("malformed varint")

	// ErrDanglingReference is returned when a non-zero offset or index resolves to
	// nothing inside the declared bounds, or when a write encounters a reference to an
	// item that is no longer held by its pool.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrUnsupportedEncoding is returned for section tags, endian tags or
	// encoded-value tags outside the known set.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrStructuralInconsistency is returned when declared counts or sizes disagree
	// with the live item graph.
	ErrStructuralInconsistency = errors.New("structural inconsistency")

	// ErrIO wraps failures reading or writing files on behalf of the caller.
	ErrIO = errors.New("i/o failure")
)

// Finer-grained parse and mutation failures.
var (
	ErrInvalidHeaderSize = errors.New("invalid header size")
	ErrInvalidMagic      = errors.New("invalid magic")
	ErrTruncatedItem     = errors.New("item extends past end of data")
	ErrChecksumMismatch  = errors.New("checksum mismatch")
	ErrItemTypeMismatch  = errors.New("item type does not match section")
	ErrUnknownItem       = errors.New("no item with this key")
	ErrInvalidRefField   = errors.New("reference field not valid for item")
)

// Code store errors.
var (
	ErrInvalidStoreHeader  = errors.New("invalid code store header")
	ErrStoreEntryNotFound  = errors.New("code store entry not found")
	ErrDuplicateStoreEntry = errors.New("duplicate code store entry")
	ErrInvalidStoreEntry   = errors.New("invalid code store entry")
)
