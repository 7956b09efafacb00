package chtype

import (
	"strconv"
	"strings"
)

// String renders t in ClickHouse's canonical type-expression syntax, such
// that Parse(t.String()) always reproduces an equal Type.
func (t Type) String() string {
	switch t.Kind {
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindInt128:
		return "Int128"
	case KindInt256:
		return "Int256"
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindUInt128:
		return "UInt128"
	case KindUInt256:
		return "UInt256"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindDecimal32:
		return "Decimal32(" + strconv.Itoa(t.Scale) + ")"
	case KindDecimal64:
		return "Decimal64(" + strconv.Itoa(t.Scale) + ")"
	case KindDecimal128:
		return "Decimal128(" + strconv.Itoa(t.Scale) + ")"
	case KindDecimal256:
		return "Decimal256(" + strconv.Itoa(t.Scale) + ")"
	case KindString:
		return "String"
	case KindFixedString:
		return "FixedString(" + strconv.Itoa(t.FixedLen) + ")"
	case KindUUID:
		return "UUID"
	case KindDate:
		return "Date"
	case KindDateTime:
		if t.Timezone == "" {
			return "DateTime"
		}

		return "DateTime('" + escapeQuote(t.Timezone) + "')"
	case KindDateTime64:
		if t.Timezone == "" {
			return "DateTime64(" + strconv.Itoa(t.Precision) + ")"
		}

		return "DateTime64(" + strconv.Itoa(t.Precision) + ", '" + escapeQuote(t.Timezone) + "')"
	case KindEnum8:
		return printEnum("Enum8", t.Enum)
	case KindEnum16:
		return printEnum("Enum16", t.Enum)
	case KindArray:
		return "Array(" + t.Elem.String() + ")"
	case KindTuple:
		return "Tuple(" + printFieldList(t.Fields) + ")"
	case KindMap:
		return "Map(" + printFieldList(t.Fields) + ")"
	case KindNullable:
		return "Nullable(" + t.Elem.String() + ")"
	case KindLowCardinality:
		return "LowCardinality(" + t.Elem.String() + ")"
	case KindPoint:
		return "Point"
	case KindRing:
		return "Ring"
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unknown"
	}
}

func escapeQuote(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func printEnum(name string, entries []EnumEntry) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('\'')
		sb.WriteString(escapeQuote(e.Name))
		sb.WriteString("' = ")
		sb.WriteString(strconv.Itoa(int(e.Code)))
	}
	sb.WriteByte(')')

	return sb.String()
}

func printFieldList(fields []Type) string {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.String())
	}

	return sb.String()
}
