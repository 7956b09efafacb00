package chtype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/katanacap/klickhouse/errs"
)

// parser is a recursive-descent parser over one type expression string.
type parser struct {
	s   string
	pos int
}

// Parse parses a ClickHouse type expression into a Type tree.
//
// The geo shapes (Point, Ring, Polygon, MultiPolygon) keep their own Kind but
// carry their Tuple/Array nesting in Fields/Elem, so the column codec
// dispatches them to its Tuple/Array arms while String() still prints
// "Point"/"Ring"/... instead of the desugared form. Map(K,V) is kept as
// KindMap with Fields = [K, V]; the column codec's Map arm writes it
// wire-identically to Array(Tuple(K,V)).
func Parse(s string) (Type, error) {
	p := &parser{s: strings.TrimSpace(s)}

	t, err := p.parseType()
	if err != nil {
		return Type{}, err
	}

	p.skipSpace()
	if p.pos != len(p.s) {
		return Type{}, fmt.Errorf("%w: trailing input %q", errs.ErrTypeParse, p.s[p.pos:])
	}

	return t, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) parseIdent() string {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '(' || c == ')' || c == ',' || c == ' ' || c == '\'' {
			break
		}
		p.pos++
	}

	return p.s[start:p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.s) || p.s[p.pos] != c {
		return fmt.Errorf("%w: expected %q at position %d in %q", errs.ErrTypeParse, c, p.pos, p.s)
	}
	p.pos++

	return nil
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return 0
	}

	return p.s[p.pos]
}

func (p *parser) parseType() (Type, error) {
	p.skipSpace()
	name := p.parseIdent()
	if name == "" {
		return Type{}, fmt.Errorf("%w: expected type name at position %d", errs.ErrTypeParse, p.pos)
	}

	if p.peek() != '(' {
		return simpleByName(name)
	}

	p.pos++ // consume '('
	t, err := p.parseArgs(name)
	if err != nil {
		return Type{}, err
	}

	if err := p.expect(')'); err != nil {
		return Type{}, err
	}

	return t, nil
}

func simpleByName(name string) (Type, error) {
	switch name {
	case "Int8":
		return Simple(KindInt8), nil
	case "Int16":
		return Simple(KindInt16), nil
	case "Int32":
		return Simple(KindInt32), nil
	case "Int64":
		return Simple(KindInt64), nil
	case "Int128":
		return Simple(KindInt128), nil
	case "Int256":
		return Simple(KindInt256), nil
	case "UInt8":
		return Simple(KindUInt8), nil
	case "UInt16":
		return Simple(KindUInt16), nil
	case "UInt32":
		return Simple(KindUInt32), nil
	case "UInt64":
		return Simple(KindUInt64), nil
	case "UInt128":
		return Simple(KindUInt128), nil
	case "UInt256":
		return Simple(KindUInt256), nil
	case "Float32":
		return Simple(KindFloat32), nil
	case "Float64":
		return Simple(KindFloat64), nil
	case "String":
		return Simple(KindString), nil
	case "UUID":
		return Simple(KindUUID), nil
	case "Date":
		return Simple(KindDate), nil
	case "DateTime":
		return Simple(KindDateTime), nil
	case "Point":
		return pointType(), nil
	case "Ring":
		return Type{Kind: KindRing, Elem: ptr(pointType())}, nil
	case "Polygon":
		ring := Type{Kind: KindRing, Elem: ptr(pointType())}
		return Type{Kind: KindPolygon, Elem: &ring}, nil
	case "MultiPolygon":
		ring := Type{Kind: KindRing, Elem: ptr(pointType())}
		polygon := Type{Kind: KindPolygon, Elem: &ring}
		return Type{Kind: KindMultiPolygon, Elem: &polygon}, nil
	default:
		return Type{}, fmt.Errorf("%w: unknown type %q", errs.ErrTypeParse, name)
	}
}

func (p *parser) parseArgs(name string) (Type, error) {
	switch name {
	case "FixedString":
		n, err := p.parseIntArg()
		if err != nil {
			return Type{}, err
		}

		return Type{Kind: KindFixedString, FixedLen: n}, nil

	case "Decimal32", "Decimal64", "Decimal128", "Decimal256":
		scale, err := p.parseIntArg()
		if err != nil {
			return Type{}, err
		}

		return Type{Kind: decimalKind(name), Scale: scale}, nil

	case "Decimal":
		precision, err := p.parseIntArg()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(','); err != nil {
			return Type{}, err
		}
		scale, err := p.parseIntArg()
		if err != nil {
			return Type{}, err
		}

		return Type{Kind: decimalKindForPrecision(precision), Scale: scale}, nil

	case "DateTime":
		if p.peek() == ')' {
			return Type{Kind: KindDateTime}, nil
		}
		tz, err := p.parseStringArg()
		if err != nil {
			return Type{}, err
		}

		return Type{Kind: KindDateTime, Timezone: tz}, nil

	case "DateTime64":
		precision, err := p.parseIntArg()
		if err != nil {
			return Type{}, err
		}

		tz := ""
		if p.peek() == ',' {
			p.pos++
			tz, err = p.parseStringArg()
			if err != nil {
				return Type{}, err
			}
		}

		return Type{Kind: KindDateTime64, Precision: precision, Timezone: tz}, nil

	case "Enum8", "Enum16":
		return p.parseEnum(name)

	case "Array":
		elem, err := p.parseType()
		if err != nil {
			return Type{}, err
		}

		return Type{Kind: KindArray, Elem: &elem}, nil

	case "Tuple":
		fields, err := p.parseTypeList()
		if err != nil {
			return Type{}, err
		}

		return Type{Kind: KindTuple, Fields: fields}, nil

	case "Map":
		fields, err := p.parseTypeList()
		if err != nil {
			return Type{}, err
		}
		if len(fields) != 2 {
			return Type{}, fmt.Errorf("%w: Map requires exactly 2 type arguments, got %d", errs.ErrTypeParse, len(fields))
		}

		return Type{Kind: KindMap, Fields: fields}, nil

	case "Nullable":
		elem, err := p.parseType()
		if err != nil {
			return Type{}, err
		}

		return Type{Kind: KindNullable, Elem: &elem}, nil

	case "LowCardinality":
		elem, err := p.parseType()
		if err != nil {
			return Type{}, err
		}

		return Type{Kind: KindLowCardinality, Elem: &elem}, nil

	case "Ring":
		pt := pointType()
		return Type{Kind: KindRing, Elem: &pt}, nil

	case "Polygon":
		ring := Type{Kind: KindRing, Elem: ptr(pointType())}
		return Type{Kind: KindPolygon, Elem: &ring}, nil

	case "MultiPolygon":
		ring := Type{Kind: KindRing, Elem: ptr(pointType())}
		polygon := Type{Kind: KindPolygon, Elem: &ring}

		return Type{Kind: KindMultiPolygon, Elem: &polygon}, nil

	default:
		return Type{}, fmt.Errorf("%w: unknown parameterised type %q", errs.ErrTypeParse, name)
	}
}

func ptr(t Type) *Type { return &t }

func pointType() Type {
	f64 := Simple(KindFloat64)
	return Type{Kind: KindPoint, Fields: []Type{f64, f64}}
}

func decimalKind(name string) Kind {
	switch name {
	case "Decimal32":
		return KindDecimal32
	case "Decimal64":
		return KindDecimal64
	case "Decimal128":
		return KindDecimal128
	default:
		return KindDecimal256
	}
}

func decimalKindForPrecision(precision int) Kind {
	switch {
	case precision <= 9:
		return KindDecimal32
	case precision <= 18:
		return KindDecimal64
	case precision <= 38:
		return KindDecimal128
	default:
		return KindDecimal256
	}
}

func (p *parser) parseTypeList() ([]Type, error) {
	var out []Type
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}

		out = append(out, t)

		if p.peek() != ',' {
			return out, nil
		}
		p.pos++ // consume ','
	}
}

func (p *parser) parseIntArg() (int, error) {
	p.skipSpace()
	start := p.pos
	if p.pos < len(p.s) && (p.s[p.pos] == '-' || p.s[p.pos] == '+') {
		p.pos++
	}
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("%w: expected integer at position %d", errs.ErrTypeParse, p.pos)
	}

	n, err := strconv.Atoi(p.s[start:p.pos])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrTypeParse, err)
	}

	return n, nil
}

// parseStringArg parses a single-quoted string literal with \' escapes.
func (p *parser) parseStringArg() (string, error) {
	p.skipSpace()
	if err := p.expect('\''); err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		if p.pos >= len(p.s) {
			return "", fmt.Errorf("%w: unterminated string literal", errs.ErrTypeParse)
		}

		c := p.s[p.pos]
		if c == '\\' && p.pos+1 < len(p.s) && p.s[p.pos+1] == '\'' {
			sb.WriteByte('\'')
			p.pos += 2

			continue
		}

		if c == '\'' {
			p.pos++
			break
		}

		sb.WriteByte(c)
		p.pos++
	}

	return sb.String(), nil
}

func (p *parser) parseEnum(name string) (Type, error) {
	kind := KindEnum8
	if name == "Enum16" {
		kind = KindEnum16
	}

	var entries []EnumEntry
	names := make(map[string]bool)
	codes := make(map[int32]bool)

	for {
		ename, err := p.parseStringArg()
		if err != nil {
			return Type{}, err
		}

		if err := p.expect('='); err != nil {
			return Type{}, err
		}

		code, err := p.parseIntArg()
		if err != nil {
			return Type{}, err
		}

		if names[ename] || codes[int32(code)] {
			return Type{}, fmt.Errorf("%w: %q=%d", errs.ErrEnumDuplicate, ename, code)
		}

		if !enumCodeFits(kind, int32(code)) {
			return Type{}, fmt.Errorf("%w: %q=%d does not fit %s", errs.ErrEnumRange, ename, code, name)
		}

		names[ename] = true
		codes[int32(code)] = true
		entries = append(entries, EnumEntry{Name: ename, Code: int32(code)})

		if p.peek() != ',' {
			break
		}
		p.pos++
	}

	return Type{Kind: kind, Enum: entries}, nil
}
