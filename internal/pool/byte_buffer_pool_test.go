package pool

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len(), "new buffer should have zero length")
	assert.Equal(t, 1024, cap(bb.B), "new buffer should have specified capacity")
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.B = append(bb.B, "hello world"...)

	originalCap := cap(bb.B)
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, cap(bb.B), "Reset should preserve capacity")
}

func TestByteBuffer_ExtendZeroed(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.B = append(bb.B, 0xff, 0xff, 0xff, 0xff)
	bb.B = bb.B[:1] // stale bytes remain in capacity

	start := bb.ExtendZeroed(3)
	assert.Equal(t, 1, start)
	assert.Equal(t, []byte{0xff, 0, 0, 0}, bb.B)

	// growing past capacity
	start = bb.ExtendZeroed(100)
	assert.Equal(t, 4, start)
	assert.Equal(t, 104, bb.Len())
	assert.Equal(t, make([]byte, 100), bb.B[4:104])
}

func TestByteBuffer_PadTo(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		align   int
		wantPad int
	}{
		{name: "6 to 4", length: 6, align: 4, wantPad: 2},
		{name: "aligned", length: 8, align: 4, wantPad: 0},
		{name: "empty", length: 0, align: 4, wantPad: 0},
		{name: "odd to 2", length: 3, align: 2, wantPad: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bb := NewByteBuffer(4)
			bb.B = append(bb.B, bytes.Repeat([]byte{0xaa}, tt.length)...)
			require.Equal(t, tt.wantPad, bb.PadTo(tt.align))
			require.Equal(t, tt.length+tt.wantPad, bb.Len())
			for _, b := range bb.B[tt.length:] {
				require.Zero(t, b)
			}
		})
	}
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(DexBufferDefaultSize)
	originalCap := cap(bb.B)
	bb.Grow(100)
	assert.Equal(t, originalCap, cap(bb.B), "should not reallocate when capacity is sufficient")

	bb.B = append(bb.B, make([]byte, cap(bb.B))...)
	bb.Grow(1)
	assert.GreaterOrEqual(t, cap(bb.B), DexBufferDefaultSize*2)

	large := NewByteBuffer(0)
	large.B = make([]byte, smallBufferGrowThreshold+1024)
	large.Grow(DexBufferDefaultSize * 10)
	assert.GreaterOrEqual(t, cap(large.B), smallBufferGrowThreshold+1024+DexBufferDefaultSize*10)
}

func TestByteBuffer_CloneAndWriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.B = append(bb.B, "data"...)

	c := bb.Clone()
	bb.B[0] = 'X'
	assert.Equal(t, []byte("data"), c)

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "Xata", out.String())

	_, err = bb.WriteTo(&errorWriter{err: io.ErrShortWrite})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(32, 64)

	bb := p.Get()
	require.NotNil(t, bb)
	bb.B = append(bb.B, 'x')
	p.Put(bb)

	again := p.Get()
	assert.Equal(t, 0, again.Len(), "pooled buffers come back empty")

	big := NewByteBuffer(128)
	p.Put(big) // dropped, above threshold
	p.Put(nil)
}

func TestDefaultPools_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bb := GetDexBuffer()
			bb.ExtendZeroed(128)
			PutDexBuffer(bb)

			sb := GetStoreBuffer()
			sb.B = append(sb.B, "entry"...)
			PutStoreBuffer(sb)
		}()
	}
	wg.Wait()
}

type errorWriter struct {
	err error
}

func (w *errorWriter) Write(_ []byte) (int, error) {
	return 0, w.err
}
