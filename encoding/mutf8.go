package encoding

import (
	"fmt"
	"unicode/utf16"

	"github.com/arloliu/dexkit/errs"
)

// DecodeMUTF8 converts modified UTF-8 string data (without the trailing NUL) to a
// Go string.
//
// Modified UTF-8 encodes U+0000 as 0xC0 0x80 and supplementary characters as two
// three-byte surrogate halves; both forms are accepted and folded back.
func DecodeMUTF8(data []byte) (string, error) {
	units := make([]uint16, 0, len(data))
	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b < 0x80:
			if b == 0 {
				return "", fmt.Errorf("%w: embedded NUL at %d", errs.ErrUnsupportedEncoding, i)
			}
			units = append(units, uint16(b))
			i++
		case b&0xe0 == 0xc0:
			if i+1 >= len(data) || data[i+1]&0xc0 != 0x80 {
				return "", fmt.Errorf("%w: bad two-byte sequence at %d", errs.ErrUnsupportedEncoding, i)
			}
			units = append(units, uint16(b&0x1f)<<6|uint16(data[i+1]&0x3f))
			i += 2
		case b&0xf0 == 0xe0:
			if i+2 >= len(data) || data[i+1]&0xc0 != 0x80 || data[i+2]&0xc0 != 0x80 {
				return "", fmt.Errorf("%w: bad three-byte sequence at %d", errs.ErrUnsupportedEncoding, i)
			}
			units = append(units, uint16(b&0x0f)<<12|uint16(data[i+1]&0x3f)<<6|uint16(data[i+2]&0x3f))
			i += 3
		default:
			return "", fmt.Errorf("%w: invalid lead byte 0x%02x at %d", errs.ErrUnsupportedEncoding, b, i)
		}
	}

	return string(utf16.Decode(units)), nil
}

// EncodeMUTF8 converts s to modified UTF-8 without a trailing NUL and returns the
// bytes together with the string's length in UTF-16 code units.
func EncodeMUTF8(s string) ([]byte, uint32) {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(s)+2)
	for _, u := range units {
		switch {
		case u != 0 && u < 0x80:
			out = append(out, byte(u))
		case u < 0x800:
			out = append(out, 0xc0|byte(u>>6), 0x80|byte(u&0x3f))
		default:
			out = append(out, 0xe0|byte(u>>12), 0x80|byte(u>>6&0x3f), 0x80|byte(u&0x3f))
		}
	}

	return out, uint32(len(units)) //nolint:gosec
}

// UTF16Len returns the number of UTF-16 code units needed to represent s.
func UTF16Len(s string) uint32 {
	var n uint32
	for _, r := range s {
		n += uint32(utf16.RuneLen(r)) //nolint:gosec
	}

	return n
}
