package column

import (
	"fmt"

	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/errs"
)

// Validate reports whether v is shaped correctly for t. It is exposed for
// callers assembling rows by hand; the codec itself never calls it — per the
// "validate(type, value) holds before serialize, the codec is not required to
// be defensive" invariant, a mismatched pair passed straight to
// SerializeColumn may panic or write garbage rather than return an error.
func Validate(t chtype.Type, v Value) error {
	if t.Kind == chtype.KindNullable {
		if v.IsNull() {
			return nil
		}
		return Validate(t.Inner(), v)
	}

	if v.IsNull() {
		return fmt.Errorf("%w: null value for non-Nullable type %s", errs.ErrUnexpectedType, t)
	}

	switch t.Kind {
	case chtype.KindInt8, chtype.KindInt16, chtype.KindInt32, chtype.KindInt64,
		chtype.KindDecimal32, chtype.KindDecimal64, chtype.KindEnum8, chtype.KindEnum16:
		if v.Kind() != KindInt && v.Kind() != KindString {
			return wrongKind(t, v)
		}

	case chtype.KindUInt8, chtype.KindUInt16, chtype.KindUInt32, chtype.KindUInt64:
		if v.Kind() != KindUInt {
			return wrongKind(t, v)
		}

	case chtype.KindInt128, chtype.KindInt256, chtype.KindUInt128, chtype.KindUInt256,
		chtype.KindDecimal128, chtype.KindDecimal256:
		if v.Kind() != KindBigInt {
			return wrongKind(t, v)
		}

	case chtype.KindFloat32, chtype.KindFloat64:
		if v.Kind() != KindFloat {
			return wrongKind(t, v)
		}

	case chtype.KindString:
		if v.Kind() != KindString {
			return wrongKind(t, v)
		}

	case chtype.KindFixedString, chtype.KindUUID:
		if v.Kind() != KindBytes {
			return wrongKind(t, v)
		}
		if t.Kind == chtype.KindFixedString && len(v.BytesValue()) > t.FixedLen {
			return fmt.Errorf("%w: value longer than FixedString(%d)", errs.ErrUnexpectedType, t.FixedLen)
		}

	case chtype.KindDate, chtype.KindDateTime, chtype.KindDateTime64:
		if v.Kind() != KindTime {
			return wrongKind(t, v)
		}

	case chtype.KindArray, chtype.KindRing, chtype.KindPolygon, chtype.KindMultiPolygon:
		if v.Kind() != KindArray {
			return wrongKind(t, v)
		}
		for _, elem := range v.ArrayValues() {
			if err := Validate(t.Inner(), elem); err != nil {
				return err
			}
		}

	case chtype.KindTuple, chtype.KindPoint:
		if v.Kind() != KindTuple {
			return wrongKind(t, v)
		}
		fields := v.TupleValues()
		if len(fields) != len(t.Fields) {
			return fmt.Errorf("%w: tuple has %d fields, type declares %d", errs.ErrUnexpectedType, len(fields), len(t.Fields))
		}
		for i, f := range t.Fields {
			if err := Validate(f, fields[i]); err != nil {
				return err
			}
		}

	case chtype.KindMap:
		if v.Kind() != KindMap {
			return wrongKind(t, v)
		}
		if len(t.Fields) != 2 {
			return fmt.Errorf("%w: Map type missing key/value fields", errs.ErrUnexpectedType)
		}
		for _, e := range v.MapValues() {
			if err := Validate(t.Fields[0], e.Key); err != nil {
				return err
			}
			if err := Validate(t.Fields[1], e.Value); err != nil {
				return err
			}
		}

	case chtype.KindLowCardinality:
		return Validate(t.Inner(), v)

	default:
		return fmt.Errorf("%w: unrecognised type kind %d", errs.ErrUnexpectedType, t.Kind)
	}

	return nil
}

func wrongKind(t chtype.Type, v Value) error {
	return fmt.Errorf("%w: %s value for type %s", errs.ErrUnexpectedType, kindName(v.Kind()), t)
}

func kindName(k Kind) string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindUInt:
		return "uint"
	case KindBigInt:
		return "bigint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}
