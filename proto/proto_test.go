package proto

import "bytes"

// newBytesReader adapts a byte slice to the io.Reader every wire.Reader in
// this package's tests is built over, mirroring the fakeServer helpers in
// package session's tests.
func newBytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
