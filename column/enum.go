package column

import (
	"fmt"

	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/errs"
	"github.com/katanacap/klickhouse/wire"
)

// serializeEnum writes the signed integer code, not the name: Enum8 values
// are encoded as a single byte, Enum16 as a 2-byte little-endian int16.
func serializeEnum(w *wire.Writer, t chtype.Type, values []Value) error {
	for _, v := range values {
		code, err := enumCode(t, v)
		if err != nil {
			return err
		}

		if t.Kind == chtype.KindEnum8 {
			w.Byte(byte(int8(code)))
		} else {
			buf := make([]byte, 2)
			le.PutUint16(buf, uint16(int16(code)))
			w.Raw(buf)
		}
	}

	return nil
}

// enumCode resolves v to its numeric code: a Str Value is looked up by
// name, an Int Value is used (and validated) directly.
func enumCode(t chtype.Type, v Value) (int32, error) {
	if v.Kind() == KindString {
		code, ok := t.ByName(v.String())
		if !ok {
			return 0, fmt.Errorf("%w: unknown enum name %q", errs.ErrSerialize, v.String())
		}

		return code, nil
	}

	code := int32(v.Int64())
	if _, ok := t.ByCode(code); !ok {
		return 0, fmt.Errorf("%w: unknown enum code %d", errs.ErrSerialize, code)
	}

	return code, nil
}

func deserializeEnum(r *wire.Reader, t chtype.Type, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		var code int32

		if t.Kind == chtype.KindEnum8 {
			b, err := r.Byte()
			if err != nil {
				return nil, err
			}
			code = int32(int8(b))
		} else {
			buf, err := r.Full(2)
			if err != nil {
				return nil, err
			}
			code = int32(int16(le.Uint16(buf)))
		}

		out[i] = Int(int64(code))
	}

	return out, nil
}
