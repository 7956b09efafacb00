package proto

import (
	"testing"

	"github.com/katanacap/klickhouse/block"
	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/column"
	"github.com/katanacap/klickhouse/compress"
	"github.com/katanacap/klickhouse/wire"
	"github.com/stretchr/testify/require"
)

func sampleBlock() block.Block {
	return block.Block{
		Columns: []block.Column{
			{
				Name:   "n",
				Type:   chtype.Type{Kind: chtype.KindUInt32},
				Values: []column.Value{column.UInt(1), column.UInt(2), column.UInt(3)},
			},
		},
	}
}

func TestWriteReadData_Uncompressed(t *testing.T) {
	st := column.State{Revision: ClientRevision}

	w := wire.NewWriter()
	defer w.Release()

	require.NoError(t, WriteData(w, st, "", sampleBlock(), 0))

	r := wire.NewReader(newBytesReader(w.Bytes()))

	tag, err := r.Uvarint()
	require.NoError(t, err)
	require.Equal(t, uint64(ClientData), tag)

	tableName, blk, err := ReadData(r, st, 0)
	require.NoError(t, err)
	require.Equal(t, "", tableName)
	require.Equal(t, 3, blk.RowCount())
	require.Len(t, blk.Columns, 1)
	require.Equal(t, "n", blk.Columns[0].Name)
}

func TestWriteReadData_LZ4Compressed(t *testing.T) {
	st := column.State{Revision: ClientRevision}

	w := wire.NewWriter()
	defer w.Release()

	require.NoError(t, WriteData(w, st, "tmp", sampleBlock(), compress.AlgoLZ4))

	r := wire.NewReader(newBytesReader(w.Bytes()))

	tag, err := r.Uvarint()
	require.NoError(t, err)
	require.Equal(t, uint64(ClientData), tag)

	tableName, blk, err := ReadData(r, st, compress.AlgoLZ4)
	require.NoError(t, err)
	require.Equal(t, "tmp", tableName)
	require.Equal(t, 3, blk.RowCount())
	require.Equal(t, uint64(1), blk.Columns[0].Values[0].UInt64())
	require.Equal(t, uint64(3), blk.Columns[0].Values[2].UInt64())
}

func TestWriteReadData_Empty(t *testing.T) {
	st := column.State{Revision: ClientRevision}

	w := wire.NewWriter()
	defer w.Release()

	require.NoError(t, WriteData(w, st, "", block.Block{}, 0))

	r := wire.NewReader(newBytesReader(w.Bytes()))

	_, err := r.Uvarint() // tag
	require.NoError(t, err)

	_, blk, err := ReadData(r, st, 0)
	require.NoError(t, err)
	require.Equal(t, 0, blk.RowCount())
}
