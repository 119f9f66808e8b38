package encoding

import (
	"fmt"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/internal/cursor"
)

// maxLeb128Len is the longest LEB128 encoding of a 32-bit value.
const maxLeb128Len = 5

// ReadUleb128 decodes an unsigned LEB128 value at the cursor and advances past it.
//
// Parameters:
//   - buf: Source bytes
//   - c: Cursor positioned at the first byte of the value
//
// Returns:
//   - uint32: Decoded value
//   - error: errs.ErrMalformedVarint if the data ends early, a fifth group does not
//     terminate, or the fifth group carries bits above 32
func ReadUleb128(buf []byte, c *cursor.Cursor) (uint32, error) {
	pos := c.Pos()

	var result uint32
	for i := range maxLeb128Len {
		if pos+i >= len(buf) {
			return 0, fmt.Errorf("%w: truncated at offset 0x%x", errs.ErrMalformedVarint, pos)
		}
		b := buf[pos+i]
		if i == maxLeb128Len-1 && b > 0x0f {
			return 0, fmt.Errorf("%w: overflow at offset 0x%x", errs.ErrMalformedVarint, pos)
		}
		result |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			c.AdvanceBy(i + 1)
			return result, nil
		}
	}

	return 0, fmt.Errorf("%w: overflow at offset 0x%x", errs.ErrMalformedVarint, pos)
}

// ReadSleb128 decodes a signed LEB128 value at the cursor and advances past it.
//
// The final group is sign-extended from its bit 6.
func ReadSleb128(buf []byte, c *cursor.Cursor) (int32, error) {
	pos := c.Pos()

	var result int32
	for i := range maxLeb128Len {
		if pos+i >= len(buf) {
			return 0, fmt.Errorf("%w: truncated at offset 0x%x", errs.ErrMalformedVarint, pos)
		}
		b := buf[pos+i]
		result |= int32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			shift := 7 * (i + 1)
			if shift < 32 && b&0x40 != 0 {
				result |= -1 << shift
			}
			c.AdvanceBy(i + 1)

			return result, nil
		}
	}

	return 0, fmt.Errorf("%w: overflow at offset 0x%x", errs.ErrMalformedVarint, pos)
}

// ReadUleb128p1 decodes a ULEB128 value and subtracts one. A stored 0 yields -1,
// the conventional NO_INDEX marker.
func ReadUleb128p1(buf []byte, c *cursor.Cursor) (int32, error) {
	v, err := ReadUleb128(buf, c)
	if err != nil {
		return 0, err
	}

	return int32(v) - 1, nil //nolint:gosec
}

// AppendUleb128 appends the minimal unsigned LEB128 encoding of v to dst.
func AppendUleb128(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// AppendSleb128 appends the minimal signed LEB128 encoding of v to dst.
func AppendSleb128(dst []byte, v int32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

// AppendUleb128p1 appends v+1 as unsigned LEB128.
func AppendUleb128p1(dst []byte, v int32) []byte {
	return AppendUleb128(dst, uint32(v+1)) //nolint:gosec
}

// Uleb128Size returns the number of bytes AppendUleb128 would produce for v.
func Uleb128Size(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// SkipLeb128 advances the cursor past count LEB128 values of either signedness.
func SkipLeb128(buf []byte, c *cursor.Cursor, count int) error {
	for range count {
		pos := c.Pos()
		n := 0
		for {
			if pos+n >= len(buf) {
				return fmt.Errorf("%w: truncated at offset 0x%x", errs.ErrMalformedVarint, pos)
			}
			if n == maxLeb128Len {
				return fmt.Errorf("%w: overflow at offset 0x%x", errs.ErrMalformedVarint, pos)
			}
			b := buf[pos+n]
			n++
			if b&0x80 == 0 {
				break
			}
		}
		c.AdvanceBy(n)
	}

	return nil
}
