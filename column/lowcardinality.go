package column

import (
	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/internal/collision"
	"github.com/katanacap/klickhouse/internal/hash"
	"github.com/katanacap/klickhouse/wire"
)

// lcFlagsBase is the canonical "new dictionary, unique values, has keys"
// flags word this implementation always emits; the low two bits are
// overwritten with the chosen index width.
const lcFlagsBase uint64 = 0x0002_0202_0100_0000

const lowCardinalityVersion uint64 = 1

func serializeLowCardinalityPrefix(w *wire.Writer) error {
	buf := make([]byte, 8)
	le.PutUint64(buf, lowCardinalityVersion)
	w.Raw(buf)
	return nil
}

func deserializeLowCardinalityPrefix(r *wire.Reader) error {
	_, err := r.Full(8)
	return err
}

// canonicalEncode serializes a single value of type t to its wire bytes, used
// as the dictionary tracker's comparison/hash key.
func canonicalEncode(t chtype.Type, v Value) string {
	w := wire.NewWriter()
	defer w.Release()

	_ = SerializeColumn(w, t, []Value{v})

	return string(w.Bytes())
}

// indexWidthCode picks the narrowest index width (0=u8,1=u16,2=u32,3=u64)
// that can represent every index 0..dictSize-1.
func indexWidthCode(dictSize int) byte {
	switch {
	case dictSize <= 1<<8:
		return 0
	case dictSize <= 1<<16:
		return 1
	case dictSize <= 1<<32:
		return 2
	default:
		return 3
	}
}

func writeIndex(w *wire.Writer, width byte, idx uint64) {
	switch width {
	case 0:
		w.Byte(byte(idx))
	case 1:
		buf := make([]byte, 2)
		le.PutUint16(buf, uint16(idx))
		w.Raw(buf)
	case 2:
		buf := make([]byte, 4)
		le.PutUint32(buf, uint32(idx))
		w.Raw(buf)
	default:
		buf := make([]byte, 8)
		le.PutUint64(buf, idx)
		w.Raw(buf)
	}
}

func readIndex(r *wire.Reader, width byte) (uint64, error) {
	switch width {
	case 0:
		b, err := r.Byte()
		return uint64(b), err
	case 1:
		buf, err := r.Full(2)
		if err != nil {
			return 0, err
		}
		return uint64(le.Uint16(buf)), nil
	case 2:
		buf, err := r.Full(4)
		if err != nil {
			return 0, err
		}
		return uint64(le.Uint32(buf)), nil
	default:
		buf, err := r.Full(8)
		if err != nil {
			return 0, err
		}
		return le.Uint64(buf), nil
	}
}

// serializeLowCardinality builds a per-block dictionary in first-seen order
// (index 0 reserved for the null sentinel when the inner type is Nullable),
// then writes flags, index_size, the dictionary column, row_count, and the
// packed per-row indices.
func serializeLowCardinality(w *wire.Writer, t chtype.Type, values []Value) error {
	inner := t.Inner()
	nullable := inner.Kind == chtype.KindNullable

	dictInner := inner
	if nullable {
		dictInner = inner.Inner()
	}

	tracker := collision.NewTracker()
	var dictVals []Value

	if nullable {
		// Index 0 is reserved for null and carries a placeholder dictionary
		// entry so the dictionary column still has index_size values, but
		// the placeholder is never interned into tracker: interning it
		// would make a genuine non-null value whose canonical bytes equal
		// the inner type's zero value (e.g. "", Int(0)) collide with the
		// sentinel and decode back as Null. Real values intern at tracker
		// index 0.. and are offset by +1 on the wire instead.
		dictVals = append(dictVals, zeroValue(dictInner))
	}

	indices := make([]uint64, len(values))
	for i, v := range values {
		if nullable && v.IsNull() {
			indices[i] = 0
			continue
		}

		canon := canonicalEncode(dictInner, v)
		idx, inserted := tracker.Intern(hash.Bucket(canon), canon)
		if inserted {
			dictVals = append(dictVals, v)
		}

		if nullable {
			indices[i] = uint64(idx) + 1
		} else {
			indices[i] = uint64(idx)
		}
	}

	width := indexWidthCode(len(dictVals))
	flags := lcFlagsBase | uint64(width)

	flagsBuf := make([]byte, 8)
	le.PutUint64(flagsBuf, flags)
	w.Raw(flagsBuf)

	sizeBuf := make([]byte, 8)
	le.PutUint64(sizeBuf, uint64(len(dictVals)))
	w.Raw(sizeBuf)

	if err := SerializeColumn(w, dictInner, dictVals); err != nil {
		return err
	}

	rowBuf := make([]byte, 8)
	le.PutUint64(rowBuf, uint64(len(values)))
	w.Raw(rowBuf)

	for _, idx := range indices {
		writeIndex(w, width, idx)
	}

	return nil
}

func deserializeLowCardinality(r *wire.Reader, t chtype.Type, n int, st State) ([]Value, error) {
	inner := t.Inner()
	nullable := inner.Kind == chtype.KindNullable

	dictInner := inner
	if nullable {
		dictInner = inner.Inner()
	}

	flagsBuf, err := r.Full(8)
	if err != nil {
		return nil, err
	}
	flags := le.Uint64(flagsBuf)
	width := byte(flags & 0x3)

	sizeBuf, err := r.Full(8)
	if err != nil {
		return nil, err
	}
	dictSize := int(le.Uint64(sizeBuf))

	dictVals, err := DeserializeColumn(r, dictInner, dictSize, st)
	if err != nil {
		return nil, err
	}

	if _, err := r.Full(8); err != nil {
		return nil, err
	}

	out := make([]Value, n)
	for i := 0; i < n; i++ {
		idx, err := readIndex(r, width)
		if err != nil {
			return nil, err
		}

		if nullable && idx == 0 {
			out[i] = Null()
			continue
		}

		out[i] = dictVals[idx]
	}

	return out, nil
}
