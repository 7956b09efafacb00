package column_test

import (
	"bytes"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/column"
	"github.com/katanacap/klickhouse/wire"
)

func roundTrip(t *testing.T, typ string, values []column.Value) []column.Value {
	t.Helper()

	ct, err := chtype.Parse(typ)
	require.NoError(t, err)

	w := wire.NewWriter()
	defer w.Release()

	require.NoError(t, column.SerializePrefix(w, ct))
	require.NoError(t, column.SerializeColumn(w, ct, values))

	r := wire.NewReader(bytes.NewReader(w.Bytes()))
	st := column.State{Revision: 1}
	require.NoError(t, column.DeserializePrefix(r, ct, st))

	out, err := column.DeserializeColumn(r, ct, len(values), st)
	require.NoError(t, err)

	return out
}

func TestScalarIntRoundTrip(t *testing.T) {
	values := []column.Value{column.Int(-1), column.Int(0), column.Int(127)}
	out := roundTrip(t, "Int8", values)
	for i, v := range values {
		require.Equal(t, v.Int64(), out[i].Int64())
	}
}

func TestScalarUIntRoundTrip(t *testing.T) {
	values := []column.Value{column.UInt(0), column.UInt(1), column.UInt(4294967295)}
	out := roundTrip(t, "UInt32", values)
	for i, v := range values {
		require.Equal(t, v.UInt64(), out[i].UInt64())
	}
}

func TestScalarBigIntRoundTrip(t *testing.T) {
	big1, _ := new(big.Int).SetString("170141183460469231731687303715884105727", 10)
	values := []column.Value{column.BigInt(big.NewInt(-1)), column.BigInt(big1)}
	out := roundTrip(t, "Int128", values)
	for i, v := range values {
		require.Equal(t, 0, v.BigIntValue().Cmp(out[i].BigIntValue()))
	}
}

func TestScalarFloatNaNBitPatternPreserved(t *testing.T) {
	values := []column.Value{column.Float(1.5), column.Float(-0.0), column.Float(math.NaN())}
	out := roundTrip(t, "Float64", values)

	require.Equal(t, values[0].Float64(), out[0].Float64())
	require.Equal(t, math.Float64bits(values[1].Float64()), math.Float64bits(out[1].Float64()))
	require.True(t, math.IsNaN(out[2].Float64()))
	require.Equal(t, math.Float64bits(values[2].Float64()), math.Float64bits(out[2].Float64()))
}

func TestStringRoundTrip(t *testing.T) {
	values := []column.Value{column.Str(""), column.Str("hello"), column.Str("日本語")}
	out := roundTrip(t, "String", values)
	for i, v := range values {
		require.Equal(t, v.String(), out[i].String())
	}
}

func TestFixedStringRoundTrip(t *testing.T) {
	values := []column.Value{column.Bytes([]byte("abc")), column.Bytes([]byte("abcdefgh"))}
	out := roundTrip(t, "FixedString(8)", values)
	require.Equal(t, []byte("abc\x00\x00\x00\x00\x00"), out[0].BytesValue())
	require.Equal(t, []byte("abcdefgh"), out[1].BytesValue())
}

func TestDateTimeRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	values := []column.Value{column.Time(now)}
	out := roundTrip(t, "DateTime('UTC')", values)
	require.Equal(t, now.Unix(), out[0].TimeValue().Unix())
}

func TestDateTime64RoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 123_000_000).UTC()
	values := []column.Value{column.Time(now)}
	out := roundTrip(t, "DateTime64(3, 'UTC')", values)
	require.Equal(t, now.UnixMilli(), out[0].TimeValue().UnixMilli())
}

func TestEnumRoundTrip(t *testing.T) {
	values := []column.Value{column.Str("hello"), column.Str("world")}
	out := roundTrip(t, "Enum8('hello' = 1, 'world' = 2)", values)
	require.Equal(t, int64(1), out[0].Int64())
	require.Equal(t, int64(2), out[1].Int64())
}

func TestNullableRoundTripWithInterspersedNulls(t *testing.T) {
	values := []column.Value{
		column.Int(1),
		column.Null(),
		column.Int(3),
		column.Null(),
	}
	out := roundTrip(t, "Nullable(Int32)", values)

	require.False(t, out[0].IsNull())
	require.Equal(t, int64(1), out[0].Int64())
	require.True(t, out[1].IsNull())
	require.False(t, out[2].IsNull())
	require.Equal(t, int64(3), out[2].Int64())
	require.True(t, out[3].IsNull())
}

func TestArrayOffsets(t *testing.T) {
	values := []column.Value{
		column.Array(nil),
		column.Array([]column.Value{column.UInt(0)}),
		column.Array([]column.Value{column.UInt(1), column.UInt(2), column.UInt(3)}),
	}
	out := roundTrip(t, "Array(UInt32)", values)

	require.Empty(t, out[0].ArrayValues())
	require.Len(t, out[1].ArrayValues(), 1)
	require.Equal(t, uint64(0), out[1].ArrayValues()[0].UInt64())
	require.Len(t, out[2].ArrayValues(), 3)
	require.Equal(t, uint64(3), out[2].ArrayValues()[2].UInt64())
}

func TestNestedArrayRoundTrip(t *testing.T) {
	values := []column.Value{
		column.Array([]column.Value{
			column.Array([]column.Value{column.Str("a"), column.Str("b")}),
			column.Array(nil),
		}),
	}
	out := roundTrip(t, "Array(Array(String))", values)
	outer := out[0].ArrayValues()
	require.Len(t, outer, 2)
	require.Equal(t, []string{"a", "b"}, valuesToStrings(outer[0].ArrayValues()))
	require.Empty(t, outer[1].ArrayValues())
}

func valuesToStrings(vs []column.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func TestTupleRoundTrip(t *testing.T) {
	values := []column.Value{
		column.Tuple([]column.Value{column.UInt(1), column.Str("a")}),
		column.Tuple([]column.Value{column.UInt(2), column.Str("b")}),
	}
	out := roundTrip(t, "Tuple(UInt32, String)", values)

	require.Equal(t, uint64(1), out[0].TupleValues()[0].UInt64())
	require.Equal(t, "a", out[0].TupleValues()[1].String())
	require.Equal(t, uint64(2), out[1].TupleValues()[0].UInt64())
	require.Equal(t, "b", out[1].TupleValues()[1].String())
}

func TestMapRoundTrip(t *testing.T) {
	values := []column.Value{
		column.Map([]column.MapEntry{
			{Key: column.Str("a"), Value: column.UInt(1)},
			{Key: column.Str("b"), Value: column.UInt(2)},
		}),
		column.Map(nil),
	}
	out := roundTrip(t, "Map(String, UInt32)", values)

	entries := out[0].MapValues()
	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Key.String())
	require.Equal(t, uint64(1), entries[0].Value.UInt64())
	require.Empty(t, out[1].MapValues())
}

func TestLowCardinalityFirstSeenOrderDictionary(t *testing.T) {
	values := []column.Value{
		column.Str(""),
		column.Str("abc"),
		column.Str("abc"),
		column.Str("bcd"),
		column.Str("bcd2"),
		column.Str("abc"),
	}
	out := roundTrip(t, "LowCardinality(String)", values)

	for i, v := range values {
		require.Equal(t, v.String(), out[i].String())
	}
}

func TestLowCardinalityNullableUsesIndexZero(t *testing.T) {
	values := []column.Value{
		column.Null(),
		column.Str("x"),
		column.Null(),
		column.Str("y"),
	}
	out := roundTrip(t, "LowCardinality(Nullable(String))", values)

	require.True(t, out[0].IsNull())
	require.Equal(t, "x", out[1].String())
	require.True(t, out[2].IsNull())
	require.Equal(t, "y", out[3].String())
}

// TestLowCardinalityNullableEmptyStringNotConfusedWithNull guards against
// index 0 meaning both "the null sentinel" and "the inner zero value": ""
// canonically encodes the same as the placeholder reserved for null, so a
// genuine "" element must still decode as "", not as Null.
func TestLowCardinalityNullableEmptyStringNotConfusedWithNull(t *testing.T) {
	values := []column.Value{
		column.Str(""),
		column.Null(),
		column.Str("abc"),
		column.Str(""),
	}
	out := roundTrip(t, "LowCardinality(Nullable(String))", values)

	require.False(t, out[0].IsNull())
	require.Equal(t, "", out[0].String())
	require.True(t, out[1].IsNull())
	require.Equal(t, "abc", out[2].String())
	require.False(t, out[3].IsNull())
	require.Equal(t, "", out[3].String())
}

func TestValidateRejectsMismatchedKind(t *testing.T) {
	ct, err := chtype.Parse("UInt32")
	require.NoError(t, err)

	err = column.Validate(ct, column.Str("nope"))
	require.Error(t, err)

	require.NoError(t, column.Validate(ct, column.UInt(5)))
}

func TestValidateRecursesIntoNullable(t *testing.T) {
	ct, err := chtype.Parse("Nullable(String)")
	require.NoError(t, err)

	require.NoError(t, column.Validate(ct, column.Null()))
	require.NoError(t, column.Validate(ct, column.Str("ok")))
	require.Error(t, column.Validate(ct, column.Int(1)))
}
