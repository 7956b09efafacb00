package column

import (
	"github.com/katanacap/klickhouse/wire"
)

func serializeString(w *wire.Writer, values []Value) error {
	for _, v := range values {
		w.String(v.String())
	}

	return nil
}

func deserializeString(r *wire.Reader, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		s, err := r.String()
		if err != nil {
			return nil, err
		}
		out[i] = Str(s)
	}

	return out, nil
}

// serializeFixedString writes exactly fixedLen bytes per element,
// zero-padding short values; longer values are a serialize error.
func serializeFixedString(w *wire.Writer, fixedLen int, values []Value) error {
	for _, v := range values {
		raw := v.BytesValue()
		if raw == nil {
			raw = []byte(v.String())
		}

		if err := w.FixedString(string(raw), fixedLen); err != nil {
			return err
		}
	}

	return nil
}

func deserializeFixedString(r *wire.Reader, fixedLen, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		buf, err := r.Full(fixedLen)
		if err != nil {
			return nil, err
		}
		out[i] = Bytes(buf)
	}

	return out, nil
}

// serializeUUID writes 16 bytes per element with the two 8-byte halves
// byte-swapped relative to RFC 4122 order, matching the server convention.
func serializeUUID(w *wire.Writer, values []Value) error {
	for _, v := range values {
		raw := v.BytesValue()
		buf := make([]byte, 16)
		swapUUIDHalves(buf, raw)
		w.Raw(buf)
	}

	return nil
}

func deserializeUUID(r *wire.Reader, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		raw, err := r.Full(16)
		if err != nil {
			return nil, err
		}

		buf := make([]byte, 16)
		swapUUIDHalves(buf, raw)
		out[i] = Bytes(buf)
	}

	return out, nil
}

// swapUUIDHalves copies src's two 8-byte halves into dst in swapped order.
// Applying it twice is the identity, so the same helper serves both
// directions of the RFC-4122-order <-> wire-order conversion.
func swapUUIDHalves(dst, src []byte) {
	if len(src) != 16 {
		src = append(make([]byte, 0, 16), src...)
		for len(src) < 16 {
			src = append(src, 0)
		}
	}

	copy(dst[0:8], src[8:16])
	copy(dst[8:16], src[0:8])
}
