package cursor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorAdvance(t *testing.T) {
	c := New(0, 4)
	require.Equal(t, 0, c.Next())
	require.Equal(t, 4, c.Pos())
	require.Equal(t, 4, c.AdvanceAndReturnStart(3))
	require.Equal(t, 7, c.Pos())
	require.Equal(t, 9, c.AdvanceBy(2))

	old := c.SetStep(1)
	require.Equal(t, 4, old)
	require.Equal(t, 9, c.Next())
	require.Equal(t, 10, c.Pos())

	c.Seek(2)
	require.Equal(t, 2, c.Pos())
}

func TestCursorAlign(t *testing.T) {
	tests := []struct {
		name    string
		pos     int
		p       int
		wantPad int
		wantPos int
	}{
		{name: "6 to 4", pos: 6, p: 4, wantPad: 2, wantPos: 8},
		{name: "aligned is no-op", pos: 8, p: 4, wantPad: 0, wantPos: 8},
		{name: "zero", pos: 0, p: 4, wantPad: 0, wantPos: 0},
		{name: "odd to 2", pos: 7, p: 2, wantPad: 1, wantPos: 8},
		{name: "to 8", pos: 9, p: 8, wantPad: 7, wantPos: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.pos, 1)
			require.Equal(t, tt.wantPad, c.PadFor(tt.p))
			require.Equal(t, tt.pos, c.Pos())
			require.Equal(t, tt.wantPad, c.AlignTo(tt.p))
			require.Equal(t, tt.wantPos, c.Pos())
		})
	}
}

func TestCursorAlignInvalidPower(t *testing.T) {
	c := New(5, 1)
	require.Panics(t, func() { c.AlignTo(3) })
	require.Panics(t, func() { c.AlignTo(1) })
	require.Panics(t, func() { c.AlignTo(0) })
	require.Equal(t, 5, c.Pos())
}

func TestCursorNegative(t *testing.T) {
	require.Panics(t, func() { New(-1, 1) })
	require.Panics(t, func() { New(0, -1) })
}
