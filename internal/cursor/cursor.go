// Package cursor tracks a read or write position inside a byte region.
package cursor

// Cursor is a position with a default advance step.
//
// A Cursor is not safe for concurrent use.
type Cursor struct {
	pos  int
	step int
}

// New returns a cursor at pos that advances by step on Next.
// Panics if pos or step is negative.
func New(pos, step int) *Cursor {
	if pos < 0 || step < 0 {
		panic("cursor: negative position or step")
	}

	return &Cursor{pos: pos, step: step}
}

// Pos returns the current position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Step returns the default step.
func (c *Cursor) Step() int {
	return c.step
}

// SetStep changes the default step and returns the previous one.
func (c *Cursor) SetStep(step int) int {
	if step < 0 {
		panic("cursor: negative step")
	}
	old := c.step
	c.step = step

	return old
}

// Seek moves the cursor to an absolute position.
func (c *Cursor) Seek(pos int) {
	if pos < 0 {
		panic("cursor: negative position")
	}
	c.pos = pos
}

// AdvanceBy moves the cursor forward by n and returns the new position.
func (c *Cursor) AdvanceBy(n int) int {
	c.pos += n
	return c.pos
}

// AdvanceAndReturnStart moves the cursor forward by n and returns the position
// it had before moving.
func (c *Cursor) AdvanceAndReturnStart(n int) int {
	start := c.pos
	c.pos += n

	return start
}

// Next advances by the default step and returns the start position.
func (c *Cursor) Next() int {
	return c.AdvanceAndReturnStart(c.step)
}

// PadFor returns the number of bytes needed to bring the position to a multiple
// of p without moving the cursor. p must be a power of two >= 2.
func (c *Cursor) PadFor(p int) int {
	if p < 2 || p&(p-1) != 0 {
		panic("cursor: alignment must be a power of two >= 2")
	}

	return (p - c.pos&(p-1)) & (p - 1)
}

// AlignTo advances the cursor to the next multiple of p and returns the padding
// applied. A cursor already aligned does not move.
func (c *Cursor) AlignTo(p int) int {
	pad := c.PadFor(p)
	c.pos += pad

	return pad
}
