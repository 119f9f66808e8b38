package encoding

import (
	"github.com/arloliu/dexkit/internal/cursor"
)

// SkipCatchHandlerList advances the cursor past an encoded_catch_handler_list.
//
// Each handler has a signed size; |size| (type_idx, addr) pairs follow, and a
// catch-all address follows when size is not positive.
func SkipCatchHandlerList(buf []byte, c *cursor.Cursor) error {
	count, err := ReadUleb128(buf, c)
	if err != nil {
		return err
	}

	for range count {
		size, err := ReadSleb128(buf, c)
		if err != nil {
			return err
		}
		pairs := int(size)
		if pairs < 0 {
			pairs = -pairs
		}
		if err := SkipLeb128(buf, c, 2*pairs); err != nil {
			return err
		}
		if size <= 0 {
			if err := SkipLeb128(buf, c, 1); err != nil {
				return err
			}
		}
	}

	return nil
}
