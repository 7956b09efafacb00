package wire

import (
	"github.com/katanacap/klickhouse/internal/pool"
)

// Writer accumulates an outgoing byte stream in a pooled buffer. Grounded on
// the teacher's VarStringEncoder: pre-grow-then-append, never reallocating
// more than once per logical write.
type Writer struct {
	buf     *pool.ByteBuffer
	release func(*pool.ByteBuffer)
}

// NewWriter returns a Writer backed by a buffer from the frame-sized pool.
func NewWriter() *Writer {
	return &Writer{buf: pool.GetFrameBuffer(), release: pool.PutFrameBuffer}
}

// NewBlockWriter returns a Writer backed by the larger block-sized pool, for
// encoding whole columnar blocks rather than small packet headers.
func NewBlockWriter() *Writer {
	return &Writer{buf: pool.GetBlockBuffer(), release: pool.PutBlockBuffer}
}

// Uvarint appends a LEB128 unsigned varint.
func (w *Writer) Uvarint(v uint64) {
	w.buf.B = WriteUvarint(w.buf.B, v)
}

// String appends a varint-length-prefixed string.
func (w *Writer) String(s string) {
	w.buf.B = WriteString(w.buf.B, s)
}

// Raw appends data verbatim.
func (w *Writer) Raw(data []byte) {
	w.buf.MustWrite(data)
}

// Byte appends a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.MustWrite([]byte{b})
}

// FixedString appends exactly n bytes (zero-padded, or an error if s is longer).
func (w *Writer) FixedString(s string, n int) error {
	grown, err := WriteFixedString(w.buf.B, s, n)
	if err != nil {
		return err
	}

	w.buf.B = grown

	return nil
}

// Bytes returns the accumulated byte slice. The slice shares the writer's
// backing array; callers that need to retain it past Release must copy it.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Release returns the underlying buffer to its pool. The writer must not be
// used again afterward.
func (w *Writer) Release() {
	w.release(w.buf)
}
