package chtype_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katanacap/klickhouse/chtype"
)

func TestTypeTextRoundTrip(t *testing.T) {
	cases := []string{
		"Int8", "UInt64", "Float64", "String", "UUID", "Date",
		"FixedString(16)",
		"Decimal32(2)", "Decimal64(4)",
		"DateTime", "DateTime('UTC')",
		"DateTime64(3, 'UTC')", "DateTime64(9)",
		"Enum8('hello' = 1, 'world' = 2)",
		"Enum16('alpha' = 1000, 'beta' = 2000)",
		"Array(Nullable(String))",
		"LowCardinality(Nullable(FixedString(8)))",
		"Map(LowCardinality(String), UInt32)",
		"Tuple(UInt32, Tuple(UInt32, UInt16))",
		"Point", "Ring", "Polygon", "MultiPolygon",
	}

	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			ty, err := chtype.Parse(s)
			require.NoError(t, err)

			again, err := chtype.Parse(ty.String())
			require.NoError(t, err)
			require.Equal(t, ty, again)
		})
	}
}

func TestDecimalShorthandRoundTrip(t *testing.T) {
	ty, err := chtype.Parse("Decimal(18, 4)")
	require.NoError(t, err)
	require.Equal(t, chtype.KindDecimal64, ty.Kind)
	require.Equal(t, 4, ty.Scale)

	again, err := chtype.Parse(ty.String())
	require.NoError(t, err)
	require.Equal(t, ty, again)
}

func TestEnumDuplicateRejected(t *testing.T) {
	_, err := chtype.Parse("Enum8('a' = 1, 'a' = 2)")
	require.Error(t, err)

	_, err = chtype.Parse("Enum8('a' = 1, 'b' = 1)")
	require.Error(t, err)
}

func TestEnumRangeRejected(t *testing.T) {
	_, err := chtype.Parse("Enum8('a' = 200)")
	require.Error(t, err)

	_, err = chtype.Parse("Enum16('a' = 70000)")
	require.Error(t, err)
}

func TestMapRequiresTwoArgs(t *testing.T) {
	_, err := chtype.Parse("Map(String)")
	require.Error(t, err)
}
