// Package block implements the ClickHouse native-protocol block frame: a
// columnar batch of rows written as a small revision-gated info header
// followed by one (name, type, prefix, data) group per column.
//
// Grounded on the teacher's section package for the idea of a header type
// with its own Bytes()/Parse() pair alongside a fixed-size flags word
// (section.NumericHeader, section.NumericFlag), generalized here from a
// single fixed-size binary header to a variable, revision-gated one sized
// by the column codec underneath it.
package block

import (
	"fmt"

	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/column"
	"github.com/katanacap/klickhouse/endian"
	"github.com/katanacap/klickhouse/errs"
	"github.com/katanacap/klickhouse/wire"
)

var le = endian.GetLittleEndianEngine()

// RevisionWithBlockInfo is the protocol revision at and above which a block
// frame carries the BlockInfo header (is_overflows / bucket_num) ahead of
// its column count. Below this revision the info header is omitted
// entirely; gating on min(client_rev, server_rev) is the caller's job via
// the State.Revision field threaded in.
const RevisionWithBlockInfo = 51903

// Column is one (name, type, values) triple of a Block — the wire unit the
// codec in package column serializes/deserializes a full vector of at once.
type Column struct {
	Name   string
	Type   chtype.Type
	Values []column.Value
}

// Block is a columnar batch: an optional name, and an ordered list of
// columns each holding exactly RowCount() values. A Block with RowCount()
// == 0 is legal and used as a schema-probe or end-of-stream marker.
type Block struct {
	Name       string
	Columns    []Column
	IsOverflow bool
	BucketNum  int32
}

// RowCount returns the number of rows in b, taken from its first column (0
// for an empty block with no columns).
func (b Block) RowCount() int {
	if len(b.Columns) == 0 {
		return 0
	}

	return len(b.Columns[0].Values)
}

// Write serializes b onto w at the given protocol revision.
func Write(w *wire.Writer, st column.State, b Block) error {
	if st.Revision >= RevisionWithBlockInfo {
		// field 1: is_overflows
		w.Uvarint(1)
		overflowByte := byte(0)
		if b.IsOverflow {
			overflowByte = 1
		}
		w.Byte(overflowByte)

		// field 2: bucket_num
		w.Uvarint(2)
		bucketBuf := make([]byte, 4)
		le.PutUint32(bucketBuf, uint32(b.BucketNum))
		w.Raw(bucketBuf)

		// field 0: end of info
		w.Uvarint(0)
	}

	numRows := b.RowCount()

	w.Uvarint(uint64(len(b.Columns)))
	w.Uvarint(uint64(numRows))

	for _, col := range b.Columns {
		w.String(col.Name)
		w.String(col.Type.String())

		if err := column.SerializePrefix(w, col.Type); err != nil {
			return errs.WithColumn(col.Name, err)
		}

		if len(col.Values) != numRows {
			return errs.WithColumn(col.Name, fmt.Errorf("%w: column has %d values, block has %d rows", errs.ErrSerialize, len(col.Values), numRows))
		}

		if err := column.SerializeColumn(w, col.Type, col.Values); err != nil {
			return errs.WithColumn(col.Name, err)
		}
	}

	return nil
}

// Read deserializes one Block from r at the given protocol revision. The
// textual type expression carried on the wire is always re-parsed here —
// the reader never assumes it shares a compile-time schema with the writer.
func Read(r *wire.Reader, st column.State) (Block, error) {
	var b Block

	if st.Revision >= RevisionWithBlockInfo {
	infoLoop:
		for {
			field, err := r.Uvarint()
			if err != nil {
				return Block{}, err
			}

			switch field {
			case 0:
				break infoLoop
			case 1:
				v, err := r.Byte()
				if err != nil {
					return Block{}, err
				}
				b.IsOverflow = v != 0
			case 2:
				buf, err := r.Full(4)
				if err != nil {
					return Block{}, err
				}
				b.BucketNum = int32(le.Uint32(buf))
			default:
				return Block{}, fmt.Errorf("%w: unknown block info field %d", errs.ErrProtocol, field)
			}
		}
	}

	numCols, err := r.Uvarint()
	if err != nil {
		return Block{}, err
	}

	numRows, err := r.Uvarint()
	if err != nil {
		return Block{}, err
	}

	b.Columns = make([]Column, numCols)
	for i := range b.Columns {
		name, err := r.String()
		if err != nil {
			return Block{}, err
		}

		typeText, err := r.String()
		if err != nil {
			return Block{}, errs.WithColumn(name, err)
		}

		t, err := chtype.Parse(typeText)
		if err != nil {
			return Block{}, errs.WithColumn(name, err)
		}

		if err := column.DeserializePrefix(r, t, st); err != nil {
			return Block{}, errs.WithColumn(name, err)
		}

		values, err := column.DeserializeColumn(r, t, int(numRows), st)
		if err != nil {
			return Block{}, errs.WithColumn(name, err)
		}

		b.Columns[i] = Column{Name: name, Type: t, Values: values}
	}

	return b, nil
}
