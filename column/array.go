package column

import (
	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/wire"
)

// serializeArray writes a cumulative u64 offset per element, then the
// flattened inner column. Offsets describe the count of immediate inner
// elements, not leaves — nested arrays compose by repeating this at each level.
func serializeArray(w *wire.Writer, t chtype.Type, values []Value) error {
	inner := t.Inner()

	var cumulative uint64
	offsetBuf := make([]byte, 8)
	var flattened []Value

	for _, v := range values {
		elems := v.ArrayValues()
		cumulative += uint64(len(elems))
		le.PutUint64(offsetBuf, cumulative)
		w.Raw(offsetBuf)
		flattened = append(flattened, elems...)
	}

	return SerializeColumn(w, inner, flattened)
}

func deserializeArray(r *wire.Reader, t chtype.Type, n int, st State) ([]Value, error) {
	inner := t.Inner()

	offsets := make([]uint64, n)
	for i := 0; i < n; i++ {
		buf, err := r.Full(8)
		if err != nil {
			return nil, err
		}
		offsets[i] = le.Uint64(buf)
	}

	var total uint64
	if n > 0 {
		total = offsets[n-1]
	}

	flattened, err := DeserializeColumn(r, inner, int(total), st)
	if err != nil {
		return nil, err
	}

	out := make([]Value, n)
	var prev uint64
	for i := 0; i < n; i++ {
		out[i] = Array(flattened[prev:offsets[i]])
		prev = offsets[i]
	}

	return out, nil
}
