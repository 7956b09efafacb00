package column

import (
	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/wire"
)

// serializeTuple writes one sub-column per field, in field order, each at
// full length n — never interleaved row-by-row. Point reuses this with an
// implicit two-Float64-field layout (t.Fields is populated for Point too,
// see chtype.Parse).
func serializeTuple(w *wire.Writer, t chtype.Type, values []Value) error {
	for i, field := range t.Fields {
		col := make([]Value, len(values))
		for r, v := range values {
			fields := v.TupleValues()
			if i < len(fields) {
				col[r] = fields[i]
			}
		}

		if err := SerializeColumn(w, field, col); err != nil {
			return err
		}
	}

	return nil
}

func deserializeTuple(r *wire.Reader, t chtype.Type, n int, st State) ([]Value, error) {
	cols := make([][]Value, len(t.Fields))
	for i, field := range t.Fields {
		col, err := DeserializeColumn(r, field, n, st)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	out := make([]Value, n)
	for row := 0; row < n; row++ {
		fields := make([]Value, len(t.Fields))
		for i := range t.Fields {
			fields[i] = cols[i][row]
		}
		out[row] = Tuple(fields)
	}

	return out, nil
}

// serializeMap writes Map(K,V) wire-identical to Array(Tuple(K,V)): a
// cumulative u64 offset per row, then the flattened entries as a Tuple
// column with Fields = [K, V].
func serializeMap(w *wire.Writer, t chtype.Type, values []Value) error {
	var cumulative uint64
	offsetBuf := make([]byte, 8)
	var flattened []Value

	for _, v := range values {
		entries := v.MapValues()
		cumulative += uint64(len(entries))
		le.PutUint64(offsetBuf, cumulative)
		w.Raw(offsetBuf)

		for _, e := range entries {
			flattened = append(flattened, Tuple([]Value{e.Key, e.Value}))
		}
	}

	tupleType := chtype.Type{Kind: chtype.KindTuple, Fields: t.Fields}
	return serializeTuple(w, tupleType, flattened)
}

func deserializeMap(r *wire.Reader, t chtype.Type, n int, st State) ([]Value, error) {
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

	tupleType := chtype.Type{Kind: chtype.KindTuple, Fields: t.Fields}
	flattened, err := deserializeTuple(r, tupleType, int(total), st)
	if err != nil {
		return nil, err
	}

	out := make([]Value, n)
	var prev uint64
	for i := 0; i < n; i++ {
		pairs := flattened[prev:offsets[i]]
		entries := make([]MapEntry, len(pairs))
		for j, p := range pairs {
			fields := p.TupleValues()
			entries[j] = MapEntry{Key: fields[0], Value: fields[1]}
		}
		out[i] = Map(entries)
		prev = offsets[i]
	}

	return out, nil
}
