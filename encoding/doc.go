// Package encoding implements the variable-length primitives of the DEX format.
//
// It provides:
//   - LEB128 codecs: ReadUleb128, ReadSleb128, ReadUleb128p1 and their Append counterparts
//   - Skippers that measure opaque spans without interpreting them: encoded values and
//     arrays, annotations, debug info state machines and catch handler lists
//   - Modified UTF-8 conversion for string data
//
// All readers take the source slice plus an *cursor.Cursor and advance the cursor
// past what they consumed. The cursor position is unspecified after an error. Writers append to a caller
// supplied slice and return the extended slice, in the style of binary.AppendUvarint.
//
//	c := cursor.New(off, 1)
//	size, err := encoding.ReadUleb128(data, c)
//	if err != nil {
//	    return err // wraps errs.ErrMalformedVarint
//	}
//
// Decoding never panics on malformed input.
package encoding
