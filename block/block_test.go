package block

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/column"
	"github.com/katanacap/klickhouse/wire"
)

func TestBlockRoundTrip(t *testing.T) {
	st := column.State{Revision: RevisionWithBlockInfo}

	b := Block{
		Columns: []Column{
			{
				Name: "id",
				Type: chtype.Simple(chtype.KindUInt32),
				Values: []column.Value{
					column.UInt(1), column.UInt(2), column.UInt(3),
				},
			},
			{
				Name: "data",
				Type: chtype.Simple(chtype.KindString),
				Values: []column.Value{
					column.Str("row_1"), column.Str("row_2"), column.Str("row_3"),
				},
			},
		},
	}

	w := wire.NewBlockWriter()
	defer w.Release()

	require.NoError(t, Write(w, st, b))

	r := wire.NewReader(bytes.NewReader(w.Bytes()))
	got, err := Read(r, st)
	require.NoError(t, err)

	require.Equal(t, 3, got.RowCount())
	require.Equal(t, "id", got.Columns[0].Name)
	require.Equal(t, uint64(1), got.Columns[0].Values[0].UInt64())
	require.Equal(t, "row_3", got.Columns[1].Values[2].String())
}

func TestEmptyBlockRoundTrip(t *testing.T) {
	st := column.State{Revision: RevisionWithBlockInfo}

	b := Block{
		Columns: []Column{
			{Name: "x", Type: chtype.Simple(chtype.KindInt32)},
		},
	}

	w := wire.NewBlockWriter()
	defer w.Release()

	require.NoError(t, Write(w, st, b))

	r := wire.NewReader(bytes.NewReader(w.Bytes()))
	got, err := Read(r, st)
	require.NoError(t, err)
	require.Equal(t, 0, got.RowCount())
}
