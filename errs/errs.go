// Package errs defines the sentinel error values and wrapper types shared
// across the wire, chtype, column, block, proto, and session packages.
//
// Callers distinguish error categories with errors.Is/errors.As rather than
// string matching. Most errors returned by this module wrap one of the
// sentinels below with additional context via fmt.Errorf("...: %w", err).
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrShortVarint is returned when a varint does not terminate within 9 bytes.
	ErrShortVarint = errors.New("klickhouse: varint did not terminate within 9 bytes")

	// ErrStringTooLarge is returned when a length-prefixed string declares a
	// length exceeding wire.MaxStringSize.
	ErrStringTooLarge = errors.New("klickhouse: string length exceeds maximum")

	// ErrInvalidUTF8 is returned when a string payload is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("klickhouse: invalid utf8 in string payload")

	// ErrChecksumMismatch is returned when a decoded compression frame's
	// CityHash-128 checksum does not match the recomputed value. It wraps
	// ErrProtocol.
	ErrChecksumMismatch = fmt.Errorf("%w: compression frame checksum mismatch", ErrProtocol)

	// ErrFrameSize is returned when a compression frame's csize field falls
	// outside [9, 1GiB] or the decompressed size does not match usize. It
	// wraps ErrProtocol.
	ErrFrameSize = fmt.Errorf("%w: compression frame size out of bounds", ErrProtocol)

	// ErrUnknownAlgo is returned when a compression frame's algorithm byte is
	// not recognised.
	ErrUnknownAlgo = errors.New("klickhouse: unknown compression algorithm byte")

	// ErrTypeParse is returned when a ClickHouse type expression cannot be parsed.
	ErrTypeParse = errors.New("klickhouse: type expression parse error")

	// ErrEnumRange is returned when an enum entry's code does not fit the
	// declared width (int8 for Enum8, int16 for Enum16).
	ErrEnumRange = errors.New("klickhouse: enum code out of range")

	// ErrEnumDuplicate is returned when an enum declares a duplicate name or code.
	ErrEnumDuplicate = errors.New("klickhouse: duplicate enum name or code")

	// ErrUnexpectedType is returned when a Value does not match the Type it is
	// paired with during validation.
	ErrUnexpectedType = errors.New("klickhouse: value does not match column type")

	// ErrSerialize is returned for column-encode failures (e.g. FixedString truncation).
	ErrSerialize = errors.New("klickhouse: column serialize error")

	// ErrDeserialize is returned for column-decode failures.
	ErrDeserialize = errors.New("klickhouse: column deserialize error")

	// ErrProtocol is returned for framing, packet-tag, and handshake violations.
	ErrProtocol = errors.New("klickhouse: protocol error")

	// ErrConnectionClosed is returned by a session once it has entered the
	// terminal closed state; every in-flight request observes this error.
	ErrConnectionClosed = errors.New("klickhouse: connection closed")

	// ErrTimeout is returned when a connect or request deadline is exceeded.
	ErrTimeout = errors.New("klickhouse: timeout")

	// ErrNotImplemented is returned when the LZ4 block compressor fails (see
	// compress/lz4.go). A frame whose algorithm byte has no registered codec
	// yields ErrUnknownAlgo instead.
	ErrNotImplemented = errors.New("klickhouse: not implemented")
)

// ColumnError annotates a deserialize/serialize error with the name of the
// column that produced it, per spec §7's column-name annotation rule.
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return "klickhouse: column " + e.Column + ": " + e.Err.Error()
}

func (e *ColumnError) Unwrap() error { return e.Err }

// WithColumn wraps err with the owning column's name, unless err is nil.
func WithColumn(column string, err error) error {
	if err == nil {
		return nil
	}

	return &ColumnError{Column: column, Err: err}
}

// ServerException is the structured error ClickHouse sends back in an
// Exception packet. It is distinct from a transport error: the connection
// is healthy, the query was rejected.
type ServerException struct {
	Code       int32
	Name       string
	Message    string
	StackTrace string
	Nested     *ServerException
}

func (e *ServerException) Error() string {
	if e == nil {
		return "<nil>"
	}

	return e.Name + " (code " + itoa(e.Code) + "): " + e.Message
}

func itoa(n int32) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}
