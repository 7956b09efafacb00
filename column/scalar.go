package column

import (
	"math/big"

	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/wire"
)

// widthOf returns the byte width of a fixed-width integer/decimal Type.
func widthOf(k chtype.Kind) int {
	switch k {
	case chtype.KindInt8, chtype.KindUInt8:
		return 1
	case chtype.KindInt16, chtype.KindUInt16:
		return 2
	case chtype.KindInt32, chtype.KindUInt32, chtype.KindDecimal32:
		return 4
	case chtype.KindInt64, chtype.KindUInt64, chtype.KindDecimal64:
		return 8
	case chtype.KindInt128, chtype.KindUInt128, chtype.KindDecimal128:
		return 16
	case chtype.KindInt256, chtype.KindUInt256, chtype.KindDecimal256:
		return 32
	default:
		return 0
	}
}

// serializeFixedInt handles the widths (8/16/32/64 bits) that fit in a
// native uint64, covering Int8..Int64, UInt8..UInt64, Decimal32/64.
func serializeFixedInt(w *wire.Writer, t chtype.Type, values []Value) error {
	width := widthOf(t.Kind)
	buf := make([]byte, width)

	for _, v := range values {
		var u uint64
		if isUnsigned(t.Kind) {
			u = v.UInt64()
		} else {
			u = uint64(v.Int64())
		}

		switch width {
		case 1:
			buf[0] = byte(u)
		case 2:
			le.PutUint16(buf, uint16(u))
		case 4:
			le.PutUint32(buf, uint32(u))
		case 8:
			le.PutUint64(buf, u)
		}

		w.Raw(buf)
	}

	return nil
}

func isUnsigned(k chtype.Kind) bool {
	switch k {
	case chtype.KindUInt8, chtype.KindUInt16, chtype.KindUInt32, chtype.KindUInt64,
		chtype.KindUInt128, chtype.KindUInt256:
		return true
	default:
		return false
	}
}

func deserializeFixedInt(r *wire.Reader, t chtype.Type, n int) ([]Value, error) {
	width := widthOf(t.Kind)
	unsigned := isUnsigned(t.Kind)

	out := make([]Value, n)
	for i := 0; i < n; i++ {
		buf, err := r.Full(width)
		if err != nil {
			return nil, err
		}

		var u uint64
		switch width {
		case 1:
			u = uint64(buf[0])
		case 2:
			u = uint64(le.Uint16(buf))
		case 4:
			u = uint64(le.Uint32(buf))
		case 8:
			u = le.Uint64(buf)
		}

		if unsigned {
			out[i] = UInt(u)
		} else {
			out[i] = Int(signExtend(u, width))
		}
	}

	return out, nil
}

// signExtend interprets the low `width` bytes of u as a two's-complement
// signed integer and sign-extends it to int64.
func signExtend(u uint64, width int) int64 {
	bits := uint(width * 8)
	if bits == 64 {
		return int64(u)
	}

	shift := 64 - bits
	return int64(u<<shift) >> shift
}

// serializeBigInt handles Int128/256, UInt128/256, Decimal128/256: a
// little-endian two's-complement integer at the declared width, carried in
// a math/big.Int for arbitrary precision.
func serializeBigInt(w *wire.Writer, t chtype.Type, values []Value) error {
	width := widthOf(t.Kind)
	unsigned := isUnsigned(t.Kind)

	for _, v := range values {
		buf := bigIntToLE(v.BigIntValue(), width, unsigned)
		w.Raw(buf)
	}

	return nil
}

func deserializeBigInt(r *wire.Reader, t chtype.Type, n int) ([]Value, error) {
	width := widthOf(t.Kind)
	unsigned := isUnsigned(t.Kind)

	out := make([]Value, n)
	for i := 0; i < n; i++ {
		buf, err := r.Full(width)
		if err != nil {
			return nil, err
		}

		out[i] = BigInt(bigIntFromLE(buf, unsigned))
	}

	return out, nil
}

// bigIntToLE encodes v as a little-endian two's-complement integer of the
// given byte width. Negative signed values are encoded via width-byte
// two's-complement negation.
func bigIntToLE(v *big.Int, width int, unsigned bool) []byte {
	buf := make([]byte, width)
	if v == nil {
		return buf
	}

	mag := new(big.Int).Set(v)
	neg := mag.Sign() < 0

	if neg {
		// two's complement: (1<<bits) + v
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
		mag.Add(mod, mag)
	}

	be := mag.Bytes() // big-endian, no leading zero padding
	for i := 0; i < len(be) && i < width; i++ {
		buf[i] = be[len(be)-1-i]
	}

	_ = unsigned // sign handling above already covers both; kept for clarity at call sites

	return buf
}

func bigIntFromLE(buf []byte, unsigned bool) *big.Int {
	be := make([]byte, len(buf))
	for i, b := range buf {
		be[len(buf)-1-i] = b
	}

	v := new(big.Int).SetBytes(be)

	if !unsigned && len(buf) > 0 && buf[len(buf)-1]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(buf)*8))
		v.Sub(v, mod)
	}

	return v
}

func serializeFloat32(w *wire.Writer, values []Value) error {
	buf := make([]byte, 4)
	for _, v := range values {
		le.PutUint32(buf, float32Bits(v.Float64()))
		w.Raw(buf)
	}

	return nil
}

func deserializeFloat32(r *wire.Reader, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		buf, err := r.Full(4)
		if err != nil {
			return nil, err
		}
		out[i] = Float(float32FromBits(le.Uint32(buf)))
	}

	return out, nil
}

func serializeFloat64(w *wire.Writer, values []Value) error {
	buf := make([]byte, 8)
	for _, v := range values {
		le.PutUint64(buf, float64Bits(v.Float64()))
		w.Raw(buf)
	}

	return nil
}

func deserializeFloat64(r *wire.Reader, n int) ([]Value, error) {
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		buf, err := r.Full(8)
		if err != nil {
			return nil, err
		}
		out[i] = Float(float64FromBits(le.Uint64(buf)))
	}

	return out, nil
}
