package encoding

import (
	"fmt"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
	"github.com/arloliu/dexkit/internal/cursor"
)

// maxValueNesting bounds array and annotation recursion inside encoded values.
const maxValueNesting = 64

// SkipEncodedValue advances the cursor past one encoded_value.
//
// Returns errs.ErrUnsupportedEncoding for value types outside the known set and
// errs.ErrTruncatedItem if the payload runs past the end of buf.
func SkipEncodedValue(buf []byte, c *cursor.Cursor) error {
	return skipEncodedValue(buf, c, 0)
}

// SkipEncodedArray advances the cursor past an encoded_array: a ULEB128 element
// count followed by that many encoded values.
func SkipEncodedArray(buf []byte, c *cursor.Cursor) error {
	return skipEncodedArray(buf, c, 0)
}

// SkipEncodedAnnotation advances the cursor past an encoded_annotation: type index,
// element count and that many (name index, value) pairs.
func SkipEncodedAnnotation(buf []byte, c *cursor.Cursor) error {
	return skipEncodedAnnotation(buf, c, 0)
}

// SkipAnnotationItem advances the cursor past an annotation_item: a visibility byte
// followed by an encoded_annotation.
func SkipAnnotationItem(buf []byte, c *cursor.Cursor) error {
	if c.Pos() >= len(buf) {
		return fmt.Errorf("%w: annotation at 0x%x", errs.ErrTruncatedItem, c.Pos())
	}
	c.AdvanceBy(1)

	return SkipEncodedAnnotation(buf, c)
}

func skipEncodedValue(buf []byte, c *cursor.Cursor, depth int) error {
	if depth > maxValueNesting {
		return fmt.Errorf("%w: encoded value nested deeper than %d", errs.ErrUnsupportedEncoding, maxValueNesting)
	}

	pos := c.Pos()
	if pos >= len(buf) {
		return fmt.Errorf("%w: encoded value at 0x%x", errs.ErrTruncatedItem, pos)
	}
	header := buf[pos]
	valueType := format.EncodedValueType(header & 0x1f)
	arg := header >> 5
	c.AdvanceBy(1)

	if size, ok := valueType.PayloadSize(arg); ok {
		if c.Pos()+size > len(buf) {
			return fmt.Errorf("%w: encoded value at 0x%x", errs.ErrTruncatedItem, pos)
		}
		c.AdvanceBy(size)

		return nil
	}

	switch valueType {
	case format.ValueArray:
		return skipEncodedArray(buf, c, depth+1)
	case format.ValueAnnotation:
		return skipEncodedAnnotation(buf, c, depth+1)
	case format.ValueNull, format.ValueBoolean:
		return nil
	default:
		return fmt.Errorf("%w: encoded value type 0x%02x at 0x%x", errs.ErrUnsupportedEncoding, uint8(valueType), pos)
	}
}

func skipEncodedArray(buf []byte, c *cursor.Cursor, depth int) error {
	size, err := ReadUleb128(buf, c)
	if err != nil {
		return err
	}
	for range size {
		if err := skipEncodedValue(buf, c, depth); err != nil {
			return err
		}
	}

	return nil
}

func skipEncodedAnnotation(buf []byte, c *cursor.Cursor, depth int) error {
	if err := SkipLeb128(buf, c, 1); err != nil {
		return err
	}
	size, err := ReadUleb128(buf, c)
	if err != nil {
		return err
	}
	for range size {
		if err := SkipLeb128(buf, c, 1); err != nil {
			return err
		}
		if err := skipEncodedValue(buf, c, depth); err != nil {
			return err
		}
	}

	return nil
}
