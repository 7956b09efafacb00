// Package wire implements the low-level byte-stream primitives the native
// protocol builds everything else on: LEB128-style unsigned varints and
// length-prefixed byte strings.
//
// Every multibyte integer elsewhere in this module is little-endian; varints
// are the one exception, carrying their own self-describing length.
package wire

import (
	"bufio"
	"io"

	"github.com/katanacap/klickhouse/errs"
)

// MaxVarintBytes is the hard cap on a varint's encoded length. A read that
// has not terminated by the 9th byte is a protocol error, matching the
// server's own guard against a runaway continuation-bit stream.
const MaxVarintBytes = 9

// WriteUvarint appends the LEB128 encoding of v to buf and returns the
// extended slice.
func WriteUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}

	return append(buf, byte(v))
}

// ReadUvarint reads a LEB128-encoded unsigned varint from r.
//
// Returns errs.ErrShortVarint if the continuation bit is still set after
// MaxVarintBytes bytes have been consumed.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	var x uint64
	var s uint

	for i := 0; i < MaxVarintBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		if b < 0x80 {
			return x | uint64(b)<<s, nil
		}

		x |= uint64(b&0x7f) << s
		s += 7
	}

	return 0, errs.ErrShortVarint
}

// ByteReader adapts an io.Reader to io.ByteReader without extra allocation
// when the underlying reader already implements it.
func ByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}

	return bufio.NewReader(r)
}
