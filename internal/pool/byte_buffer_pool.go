// Package pool provides sync.Pool-backed byte buffers backing package wire's
// Writer, which the column, block, and proto encoders write through, to keep
// per-block encode work allocation-light.
package pool

import (
	"io"
	"sync"
)

// Default and max-retained sizes for the two buffer lifetimes this module
// needs: small scratch buffers for packet/frame headers, and larger buffers
// for whole block payloads (which can run into the hundreds of KiB for wide
// inserts).
const (
	FrameBufferDefaultSize = 1024 * 4    // 4KiB
	FrameBufferMaxThreshold = 1024 * 64  // 64KiB
	BlockBufferDefaultSize  = 1024 * 64  // 64KiB
	BlockBufferMaxThreshold = 1024 * 1024 * 4 // 4MiB
)

// ByteBuffer is a growable byte slice wrapper sized for repeated reuse via a
// sync.Pool, avoiding per-call allocation in the hot encode/decode paths.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Reset empties the buffer but keeps its backing array for reuse.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Len returns the number of bytes currently held.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Cap returns the buffer's current capacity.
func (bb *ByteBuffer) Cap() int { return cap(bb.B) }

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Grow ensures the buffer can accept requiredBytes more bytes without a
// further reallocation.
//
// Small buffers grow by a fixed default chunk; past 4x that size growth
// switches to 25% of current capacity, trading a few extra reallocations
// for bounded memory growth on very large blocks.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := FrameBufferDefaultSize
	if cap(bb.B) > 4*FrameBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo implements io.WriterTo.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool pools ByteBuffers of a given default/max-retained size.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers start at defaultSize and are
// discarded (not pooled) once they grow past maxThreshold.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a buffer from the pool.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a buffer to the pool, discarding it instead if it has grown
// past the pool's max-retained threshold.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var (
	frameDefaultPool = NewByteBufferPool(FrameBufferDefaultSize, FrameBufferMaxThreshold)
	blockDefaultPool = NewByteBufferPool(BlockBufferDefaultSize, BlockBufferMaxThreshold)
)

// GetFrameBuffer retrieves a buffer from the default frame-sized pool, used
// for packet headers and compression-envelope scratch space.
func GetFrameBuffer() *ByteBuffer { return frameDefaultPool.Get() }

// PutFrameBuffer returns a buffer to the default frame-sized pool.
func PutFrameBuffer(bb *ByteBuffer) { frameDefaultPool.Put(bb) }

// GetBlockBuffer retrieves a buffer from the default block-sized pool, used
// for encoding/decoding whole columnar blocks.
func GetBlockBuffer() *ByteBuffer { return blockDefaultPool.Get() }

// PutBlockBuffer returns a buffer to the default block-sized pool.
func PutBlockBuffer(bb *ByteBuffer) { blockDefaultPool.Put(bb) }
