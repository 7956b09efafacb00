package column

import (
	"fmt"
	"math"

	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/endian"
	"github.com/katanacap/klickhouse/errs"
	"github.com/katanacap/klickhouse/wire"
)

// State is the shared state threaded through recursive serialize/deserialize
// calls: the negotiated protocol revision (gates small backward-compat
// tweaks) and, for readers, nothing else — the codec never retains
// cross-block state itself (see LowCardinality's per-call dictionary
// builder in lowcardinality.go).
type State struct {
	Revision uint64
}

var le = endian.GetLittleEndianEngine()

// SerializePrefix writes t's header onto w (empty for plain scalars;
// LowCardinality emits a version tag).
func SerializePrefix(w *wire.Writer, t chtype.Type) error {
	if t.Kind == chtype.KindLowCardinality {
		return serializeLowCardinalityPrefix(w)
	}

	return nil
}

// DeserializePrefix consumes t's header from r.
func DeserializePrefix(r *wire.Reader, t chtype.Type, st State) error {
	if t.Kind == chtype.KindLowCardinality {
		return deserializeLowCardinalityPrefix(r)
	}

	return nil
}

// SerializeColumn writes exactly len(values) elements of type t onto w.
func SerializeColumn(w *wire.Writer, t chtype.Type, values []Value) error {
	switch t.Kind {
	case chtype.KindInt8, chtype.KindInt16, chtype.KindInt32, chtype.KindInt64,
		chtype.KindUInt8, chtype.KindUInt16, chtype.KindUInt32, chtype.KindUInt64,
		chtype.KindDecimal32, chtype.KindDecimal64:
		return serializeFixedInt(w, t, values)

	case chtype.KindInt128, chtype.KindInt256, chtype.KindUInt128, chtype.KindUInt256,
		chtype.KindDecimal128, chtype.KindDecimal256:
		return serializeBigInt(w, t, values)

	case chtype.KindFloat32:
		return serializeFloat32(w, values)
	case chtype.KindFloat64:
		return serializeFloat64(w, values)

	case chtype.KindString:
		return serializeString(w, values)
	case chtype.KindFixedString:
		return serializeFixedString(w, t.FixedLen, values)
	case chtype.KindUUID:
		return serializeUUID(w, values)

	case chtype.KindDate:
		return serializeDate(w, values)
	case chtype.KindDateTime:
		return serializeDateTime(w, values)
	case chtype.KindDateTime64:
		return serializeDateTime64(w, t, values)

	case chtype.KindEnum8, chtype.KindEnum16:
		return serializeEnum(w, t, values)

	case chtype.KindNullable:
		return serializeNullable(w, t, values)

	case chtype.KindArray:
		return serializeArray(w, t, values)

	case chtype.KindTuple, chtype.KindPoint:
		return serializeTuple(w, t, values)
	case chtype.KindMap:
		return serializeMap(w, t, values)
	case chtype.KindRing, chtype.KindPolygon, chtype.KindMultiPolygon:
		return serializeArray(w, t, values)

	case chtype.KindLowCardinality:
		return serializeLowCardinality(w, t, values)

	default:
		return fmt.Errorf("%w: serialize unsupported for kind %d", errs.ErrSerialize, t.Kind)
	}
}

// DeserializeColumn reads exactly n elements of type t from r.
func DeserializeColumn(r *wire.Reader, t chtype.Type, n int, st State) ([]Value, error) {
	switch t.Kind {
	case chtype.KindInt8, chtype.KindInt16, chtype.KindInt32, chtype.KindInt64,
		chtype.KindUInt8, chtype.KindUInt16, chtype.KindUInt32, chtype.KindUInt64,
		chtype.KindDecimal32, chtype.KindDecimal64:
		return deserializeFixedInt(r, t, n)

	case chtype.KindInt128, chtype.KindInt256, chtype.KindUInt128, chtype.KindUInt256,
		chtype.KindDecimal128, chtype.KindDecimal256:
		return deserializeBigInt(r, t, n)

	case chtype.KindFloat32:
		return deserializeFloat32(r, n)
	case chtype.KindFloat64:
		return deserializeFloat64(r, n)

	case chtype.KindString:
		return deserializeString(r, n)
	case chtype.KindFixedString:
		return deserializeFixedString(r, t.FixedLen, n)
	case chtype.KindUUID:
		return deserializeUUID(r, n)

	case chtype.KindDate:
		return deserializeDate(r, n)
	case chtype.KindDateTime:
		return deserializeDateTime(r, t, n)
	case chtype.KindDateTime64:
		return deserializeDateTime64(r, t, n)

	case chtype.KindEnum8, chtype.KindEnum16:
		return deserializeEnum(r, t, n)

	case chtype.KindNullable:
		return deserializeNullable(r, t, n, st)

	case chtype.KindArray:
		return deserializeArray(r, t, n, st)

	case chtype.KindTuple, chtype.KindPoint:
		return deserializeTuple(r, t, n, st)
	case chtype.KindMap:
		return deserializeMap(r, t, n, st)
	case chtype.KindRing, chtype.KindPolygon, chtype.KindMultiPolygon:
		return deserializeArray(r, t, n, st)

	case chtype.KindLowCardinality:
		return deserializeLowCardinality(r, t, n, st)

	default:
		return nil, fmt.Errorf("%w: deserialize unsupported for kind %d", errs.ErrDeserialize, t.Kind)
	}
}

// float32Bits / float64Bits preserve NaN/Inf bit patterns exactly, per the
// round-trip law's "modulo float NaN bit-pattern" clause — we don't even
// need the modulo since math.Float32bits/Float64bits round-trip any bit
// pattern, NaN included.
func float32Bits(f float64) uint32 { return math.Float32bits(float32(f)) }
func float32FromBits(b uint32) float64 { return float64(math.Float32frombits(b)) }
func float64Bits(f float64) uint64     { return math.Float64bits(f) }
func float64FromBits(b uint64) float64 { return math.Float64frombits(b) }
