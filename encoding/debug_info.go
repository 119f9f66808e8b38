package encoding

import (
	"fmt"

	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/format"
	"github.com/arloliu/dexkit/internal/cursor"
)

// SkipDebugInfo advances the cursor past a debug_info_item: line_start,
// parameter names and the state machine bytecode up to DBG_END_SEQUENCE.
func SkipDebugInfo(buf []byte, c *cursor.Cursor) error {
	start := c.Pos()
	if err := SkipLeb128(buf, c, 1); err != nil {
		return err
	}
	params, err := ReadUleb128(buf, c)
	if err != nil {
		return err
	}
	if err := SkipLeb128(buf, c, int(params)); err != nil {
		return err
	}

	for {
		if c.Pos() >= len(buf) {
			return fmt.Errorf("%w: debug info at 0x%x", errs.ErrTruncatedItem, start)
		}
		op := buf[c.Pos()]
		c.AdvanceBy(1)

		var operands int
		switch op {
		case format.DbgEndSequence:
			return nil
		case format.DbgAdvancePC, format.DbgAdvanceLine, format.DbgEndLocal,
			format.DbgRestartLocal, format.DbgSetFile:
			operands = 1
		case format.DbgStartLocal:
			operands = 3
		case format.DbgStartLocalExt:
			operands = 4
		default:
			// prologue, epilogue and special opcodes carry no operands
		}
		if err := SkipLeb128(buf, c, operands); err != nil {
			return err
		}
	}
}
