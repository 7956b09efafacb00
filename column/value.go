// Package column implements the per-Type columnar wire codec: the bulk of
// this module, generalizing the teacher's per-metric encoder/decoder family
// (blob/numeric_*.go, internal/encoding/*.go) from "timestamps and float64
// values" to "every ClickHouse wire type."
//
// Each Type gets a serializePrefix/deserializePrefix pair (a type's header,
// empty for plain scalars) and a serializeColumn/deserializeColumn pair
// (exactly n elements), dispatched by chtype.Kind in codec.go.
package column

import (
	"math/big"
	"time"

	"github.com/katanacap/klickhouse/chtype"
)

// Kind tags which field of Value is populated. Mirrors chtype.Kind but
// collapses the geo shapes down to their Array/Tuple representations,
// since a Value for those types is just a nested Array/Tuple value; Map
// values keep their own KindMap.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindUInt
	KindBigInt // Int128/Int256/UInt128/UInt256, and Decimal128/256's backing integer
	KindFloat
	KindString
	KindBytes // FixedString / UUID raw bytes
	KindTime
	KindArray
	KindTuple
	KindMap
)

// Value is a tagged variant carrying one concrete element for every Type
// leaf, plus an explicit Null. The zero Value is Null.
type Value struct {
	kind Kind

	i   int64
	u   uint64
	f   float64
	s   string
	b   []byte
	t   time.Time
	big *big.Int

	arr []Value
	m   []MapEntry
}

// MapEntry is one key/value pair of a Map(K,V) Value.
type MapEntry struct {
	Key   Value
	Value Value
}

// Null returns the explicit null Value, used for Nullable(T) columns and as
// the LowCardinality dictionary's index-0 sentinel.
func Null() Value { return Value{kind: KindNull} }

// IsNull reports whether v is the null Value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Kind returns v's tag.
func (v Value) Kind() Kind { return v.kind }

// Int constructs a Value from a signed integer (Int8..Int64, Enum8/16 codes,
// Decimal32/64's backing integer). Date/DateTime/DateTime64 values are Time
// Values, not Int.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Int64 returns the signed integer payload, or 0 if v is not a KindInt Value.
func (v Value) Int64() int64 { return v.i }

// UInt constructs a Value from an unsigned integer (UInt8..UInt64).
func UInt(u uint64) Value { return Value{kind: KindUInt, u: u} }

// UInt64 returns the unsigned integer payload.
func (v Value) UInt64() uint64 { return v.u }

// BigInt constructs a Value wrapping an arbitrary-precision integer
// (Int128/256, UInt128/256, Decimal128/256's backing integer).
func BigInt(b *big.Int) Value { return Value{kind: KindBigInt, big: b} }

// BigIntValue returns the arbitrary-precision integer payload.
func (v Value) BigIntValue() *big.Int { return v.big }

// Float constructs a Value from a float32/64 (stored widened to float64;
// the column codec truncates back to the declared width on encode).
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Float64 returns the float payload.
func (v Value) Float64() float64 { return v.f }

// Str constructs a Value from a String/Enum name.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// String returns the string payload.
func (v Value) String() string { return v.s }

// Bytes constructs a Value from raw bytes (FixedString, UUID).
func Bytes(b []byte) Value { return Value{kind: KindBytes, b: b} }

// BytesValue returns the raw byte payload.
func (v Value) BytesValue() []byte { return v.b }

// Time constructs a Value from a time.Time (Date, DateTime, DateTime64).
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// TimeValue returns the time payload.
func (v Value) TimeValue() time.Time { return v.t }

// Array constructs a Value from a slice of element Values (Array(T),
// Tuple(T...) is represented separately via Tuple to keep field-arity
// distinct from element-count).
func Array(elems []Value) Value { return Value{kind: KindArray, arr: elems} }

// ArrayValues returns the element Values of an Array Value.
func (v Value) ArrayValues() []Value { return v.arr }

// Tuple constructs a Value from an ordered list of field Values.
func Tuple(fields []Value) Value { return Value{kind: KindTuple, arr: fields} }

// TupleValues returns the field Values of a Tuple Value.
func (v Value) TupleValues() []Value { return v.arr }

// Map constructs a Value from key/value entries (wire-identical to
// Array(Tuple(K,V))).
func Map(entries []MapEntry) Value { return Value{kind: KindMap, m: entries} }

// MapValues returns the entries of a Map Value.
func (v Value) MapValues() []MapEntry { return v.m }

// NamedValue is one (name, type, value) triple exchanged with the row
// layer. The core never prescribes a user-struct mapping — §6 of the spec
// leaves reflection/derivation to a surrounding layer; NamedValue is the
// wire-level unit that layer builds on.
type NamedValue struct {
	Name  string
	Type  chtype.Type
	Value Value
}
