package wire

import (
	"io"
	"unicode/utf8"

	"github.com/katanacap/klickhouse/errs"
)

// MaxStringSize is the hard cap on a length-prefixed string payload (1 GiB),
// checked before any allocation so a corrupt or malicious length varint
// cannot be used to exhaust memory.
const MaxStringSize = 1 << 30

// WriteString appends a varint length prefix followed by the raw bytes of s.
func WriteString(buf []byte, s string) []byte {
	buf = WriteUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

// ReadString reads a varint length L, rejects L > MaxStringSize, then reads
// exactly L bytes and validates them as UTF-8.
//
// The string length is checked before the byte read so a declared length
// past MaxStringSize never triggers an allocation.
func ReadString(r io.Reader, br io.ByteReader) (string, error) {
	n, err := ReadUvarint(br)
	if err != nil {
		return "", err
	}

	if n > MaxStringSize {
		return "", errs.ErrStringTooLarge
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}

	if !utf8.Valid(buf) {
		return "", errs.ErrInvalidUTF8
	}

	return string(buf), nil
}

// ReadBytes is the byte-slice counterpart of ReadString, for length-prefixed
// payloads that are not required to be valid UTF-8.
func ReadBytes(r io.Reader, br io.ByteReader) ([]byte, error) {
	n, err := ReadUvarint(br)
	if err != nil {
		return nil, err
	}

	if n > MaxStringSize {
		return nil, errs.ErrStringTooLarge
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// WriteFixedString appends exactly n bytes for s: the raw bytes of s,
// zero-padded if shorter. It returns errs.ErrSerialize if s is longer than n.
func WriteFixedString(buf []byte, s string, n int) ([]byte, error) {
	if len(s) > n {
		return buf, errs.ErrSerialize
	}

	buf = append(buf, s...)
	for i := len(s); i < n; i++ {
		buf = append(buf, 0)
	}

	return buf, nil
}
