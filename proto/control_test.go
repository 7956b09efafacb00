package proto

import (
	"testing"

	"github.com/katanacap/klickhouse/wire"
	"github.com/stretchr/testify/require"
)

func TestReadProgress_FullRevision(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	w.Uvarint(100) // rows
	w.Uvarint(1024) // bytes
	w.Uvarint(1000) // total rows
	w.Uvarint(5) // written rows
	w.Uvarint(50) // written bytes
	w.Uvarint(123456) // elapsed ns

	r := wire.NewReader(newBytesReader(w.Bytes()))

	p, err := ReadProgress(r, ClientRevision)
	require.NoError(t, err)
	require.Equal(t, uint64(100), p.Rows)
	require.Equal(t, uint64(1024), p.Bytes)
	require.Equal(t, uint64(1000), p.TotalRows)
	require.Equal(t, uint64(5), p.WrittenRows)
	require.Equal(t, uint64(50), p.WrittenBytes)
	require.Equal(t, uint64(123456), p.ElapsedNs)
}

func TestReadProgress_OldRevision(t *testing.T) {
	const oldRevision = 54000 // below RevisionWithClientWriteInfo

	w := wire.NewWriter()
	defer w.Release()

	w.Uvarint(7)
	w.Uvarint(70)
	w.Uvarint(700)

	r := wire.NewReader(newBytesReader(w.Bytes()))

	p, err := ReadProgress(r, oldRevision)
	require.NoError(t, err)
	require.Equal(t, uint64(7), p.Rows)
	require.Equal(t, uint64(0), p.WrittenRows)
	require.Equal(t, uint64(0), p.ElapsedNs)
}

func TestReadProfileInfo(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	w.Uvarint(10) // rows
	w.Uvarint(2)  // blocks
	w.Uvarint(200) // bytes
	w.Byte(1)      // applied limit
	w.Uvarint(10)  // rows before limit
	w.Byte(0)      // not calculated

	r := wire.NewReader(newBytesReader(w.Bytes()))

	p, err := ReadProfileInfo(r)
	require.NoError(t, err)
	require.Equal(t, uint64(10), p.Rows)
	require.True(t, p.AppliedLimit)
	require.False(t, p.CalculatedRowsBeforeLimit)
}

func TestReadTableColumns(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	w.String("default.events")
	w.String("`id` UInt64, `name` String")

	r := wire.NewReader(newBytesReader(w.Bytes()))

	tc, err := ReadTableColumns(r)
	require.NoError(t, err)
	require.Equal(t, "default.events", tc.TableName)
	require.Contains(t, tc.ColumnsDDL, "UInt64")
}

func TestReadPartUUIDs(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	w.Uvarint(2)
	w.Raw(make([]byte, 16))
	w.Raw(make([]byte, 16))

	r := wire.NewReader(newBytesReader(w.Bytes()))

	pu, err := ReadPartUUIDs(r)
	require.NoError(t, err)
	require.Len(t, pu.UUIDs, 2)
}

func TestServerPacketString(t *testing.T) {
	require.Equal(t, "Data", ServerData.String())
	require.Equal(t, "EndOfStream", ServerEndOfStream.String())
	require.Equal(t, "Unknown", ServerPacket(999).String())
}
