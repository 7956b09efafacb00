package column

import (
	"time"

	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/wire"
)

var unixZero = time.Unix(0, 0).UTC()

// serializeNullable writes a length-n mask of 0/1 bytes, then the inner
// column at length n. A null position's inner payload is a well-defined
// zero placeholder — the writer always emits one, even though readers must
// ignore it.
func serializeNullable(w *wire.Writer, t chtype.Type, values []Value) error {
	for _, v := range values {
		if v.IsNull() {
			w.Byte(1)
		} else {
			w.Byte(0)
		}
	}

	inner := t.Inner()
	placeholder := zeroValue(inner)
	innerValues := make([]Value, len(values))
	for i, v := range values {
		if v.IsNull() {
			innerValues[i] = placeholder
		} else {
			innerValues[i] = v
		}
	}

	return SerializeColumn(w, inner, innerValues)
}

func deserializeNullable(r *wire.Reader, t chtype.Type, n int, st State) ([]Value, error) {
	mask := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.Byte()
		if err != nil {
			return nil, err
		}
		mask[i] = b
	}

	inner := t.Inner()
	innerValues, err := DeserializeColumn(r, inner, n, st)
	if err != nil {
		return nil, err
	}

	out := make([]Value, n)
	for i := range out {
		if mask[i] != 0 {
			out[i] = Null()
		} else {
			out[i] = innerValues[i]
		}
	}

	return out, nil
}

// zeroValue returns the well-defined placeholder Value written at null
// positions so the writer always emits a complete inner payload.
func zeroValue(t chtype.Type) Value {
	switch t.Kind {
	case chtype.KindInt8, chtype.KindInt16, chtype.KindInt32, chtype.KindInt64,
		chtype.KindDecimal32, chtype.KindDecimal64,
		chtype.KindEnum8, chtype.KindEnum16:
		return Int(0)
	case chtype.KindDate, chtype.KindDateTime, chtype.KindDateTime64:
		return Time(unixZero)
	case chtype.KindUInt8, chtype.KindUInt16, chtype.KindUInt32, chtype.KindUInt64:
		return UInt(0)
	case chtype.KindInt128, chtype.KindInt256, chtype.KindUInt128, chtype.KindUInt256,
		chtype.KindDecimal128, chtype.KindDecimal256:
		return BigInt(nil)
	case chtype.KindFloat32, chtype.KindFloat64:
		return Float(0)
	case chtype.KindString:
		return Str("")
	case chtype.KindFixedString, chtype.KindUUID:
		return Bytes(nil)
	case chtype.KindArray, chtype.KindRing, chtype.KindPolygon, chtype.KindMultiPolygon:
		return Array(nil)
	case chtype.KindTuple, chtype.KindPoint:
		fields := make([]Value, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = zeroValue(f)
		}
		return Tuple(fields)
	case chtype.KindMap:
		return Map(nil)
	default:
		return Value{}
	}
}
