package pool

import (
	"io"
	"sync"
)

// Buffer sizing for the shared pools.
const (
	DexBufferDefaultSize     = 1024 * 64        // 64KiB
	DexBufferMaxThreshold    = 1024 * 1024 * 16 // 16MiB
	StoreBufferDefaultSize   = 1024 * 16        // 16KiB
	StoreBufferMaxThreshold  = 1024 * 1024 * 4  // 4MiB
	smallBufferGrowThreshold = 4 * DexBufferDefaultSize
)

// ByteBuffer is an append-only byte slice with in-place patching helpers.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// ExtendZeroed extends the buffer by n zero bytes, growing it if necessary, and
// returns the offset of the first new byte.
//
// Pooled buffers may hold stale bytes past their length, so the new region is
// cleared explicitly.
func (bb *ByteBuffer) ExtendZeroed(n int) int {
	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
	clear(bb.B[start:])

	return start
}

// PadTo appends zero bytes until the length is a multiple of align and returns
// the number of bytes added. align must be a power of two.
func (bb *ByteBuffer) PadTo(align int) int {
	pad := (align - len(bb.B)&(align-1)) & (align - 1)
	if pad > 0 {
		bb.ExtendZeroed(pad)
	}

	return pad
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes without reallocating.
// If the buffer has sufficient capacity, Grow does nothing.
//
// The growth strategy is as follows:
//   - For small buffers (<256KB), grow by DexBufferDefaultSize to minimize reallocations.
//   - For larger buffers, grow by 25% of current capacity to balance memory usage and reallocation cost.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := DexBufferDefaultSize
	if cap(bb.B) > smallBufferGrowThreshold {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// Clone returns a copy of the buffer contents that does not alias pooled memory.
func (bb *ByteBuffer) Clone() []byte {
	out := make([]byte, len(bb.B))
	copy(out, bb.B)

	return out
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers.
// The pool can be configured with a maximum size threshold to avoid retaining
// overly large buffers that could lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	dexDefaultPool   = NewByteBufferPool(DexBufferDefaultSize, DexBufferMaxThreshold)
	storeDefaultPool = NewByteBufferPool(StoreBufferDefaultSize, StoreBufferMaxThreshold)
)

// GetDexBuffer retrieves a ByteBuffer sized for container writes.
func GetDexBuffer() *ByteBuffer {
	return dexDefaultPool.Get()
}

// PutDexBuffer returns a ByteBuffer obtained from GetDexBuffer.
func PutDexBuffer(bb *ByteBuffer) {
	dexDefaultPool.Put(bb)
}

// GetStoreBuffer retrieves a ByteBuffer sized for code store archives.
func GetStoreBuffer() *ByteBuffer {
	return storeDefaultPool.Get()
}

// PutStoreBuffer returns a ByteBuffer obtained from GetStoreBuffer.
func PutStoreBuffer(bb *ByteBuffer) {
	storeDefaultPool.Put(bb)
}
