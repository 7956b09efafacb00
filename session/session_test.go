package session

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/katanacap/klickhouse/block"
	"github.com/katanacap/klickhouse/chtype"
	"github.com/katanacap/klickhouse/column"
	"github.com/katanacap/klickhouse/endian"
	"github.com/katanacap/klickhouse/proto"
	"github.com/katanacap/klickhouse/wire"
	"github.com/stretchr/testify/require"
)

var le = endian.GetLittleEndianEngine()

// fakeServer drives the server side of a net.Pipe connection far enough to
// exercise a Session's handshake and one query round-trip without a real
// ClickHouse instance: it reads the client's Hello and Query packets byte
// for byte (mirroring proto.WriteQuery's exact field order at the
// negotiated revision) and replies with a scripted sequence of packets.
type fakeServer struct {
	t    *testing.T
	conn net.Conn
	r    *wire.Reader
}

func newFakeServer(t *testing.T, conn net.Conn) *fakeServer {
	return &fakeServer{t: t, conn: conn, r: wire.NewReader(conn)}
}

func (f *fakeServer) readClientHello() {
	t := f.t
	r := f.r

	tag, err := r.Uvarint()
	require.NoError(t, err)
	require.Equal(t, uint64(proto.ClientHello), tag)

	_, err = r.String() // client name
	require.NoError(t, err)
	_, err = r.Uvarint() // version major
	require.NoError(t, err)
	_, err = r.Uvarint() // version minor
	require.NoError(t, err)
	_, err = r.Uvarint() // revision
	require.NoError(t, err)
	_, err = r.String() // database
	require.NoError(t, err)
	_, err = r.String() // user
	require.NoError(t, err)
	_, err = r.String() // password
	require.NoError(t, err)
}

func (f *fakeServer) writeServerHello(revision uint64) {
	w := wire.NewWriter()
	defer w.Release()

	w.Uvarint(uint64(proto.ServerHello))
	w.String("fakehouse")
	w.Uvarint(23)
	w.Uvarint(8)
	w.Uvarint(revision)
	w.String("UTC")
	w.String("fakehouse-display")
	w.Uvarint(1)

	_, err := f.conn.Write(w.Bytes())
	require.NoError(f.t, err)
}

// readClientQuery consumes one full Query packet at revision ==
// proto.ClientRevision, where every revision gate in writeClientInfo/
// WriteQuery fires. Field order mirrors proto/query.go exactly.
func (f *fakeServer) readClientQuery() (sql string) {
	t := f.t
	r := f.r

	tag, err := r.Uvarint()
	require.NoError(t, err)
	require.Equal(t, uint64(proto.ClientQuery), tag)

	_, err = r.String() // query id
	require.NoError(t, err)

	queryKind, err := r.Byte() // ClientInfo.QueryKind
	require.NoError(t, err)
	require.Equal(t, byte(1), queryKind)

	_, err = r.String() // InitialUser
	require.NoError(t, err)
	_, err = r.String() // InitialQueryID
	require.NoError(t, err)
	_, err = r.String() // InitialAddress
	require.NoError(t, err)
	_, err = r.Full(8) // initial_query_start_time_microseconds
	require.NoError(t, err)
	_, err = r.Byte() // interface = TCP
	require.NoError(t, err)
	_, err = r.String() // OSUser
	require.NoError(t, err)
	_, err = r.String() // ClientHostname
	require.NoError(t, err)
	_, err = r.String() // ClientName
	require.NoError(t, err)
	_, err = r.Uvarint() // VersionMajor
	require.NoError(t, err)
	_, err = r.Uvarint() // VersionMinor
	require.NoError(t, err)
	_, err = r.Uvarint() // Revision
	require.NoError(t, err)
	_, err = r.String() // QuotaKey
	require.NoError(t, err)
	_, err = r.Uvarint() // distributed_depth
	require.NoError(t, err)
	_, err = r.Uvarint() // VersionPatch
	require.NoError(t, err)
	_, err = r.Byte() // no OpenTelemetry span
	require.NoError(t, err)
	_, err = r.Uvarint() // collaborate_with_initiator
	require.NoError(t, err)
	_, err = r.Uvarint() // count_participating_replicas
	require.NoError(t, err)
	_, err = r.Uvarint() // number_of_current_replica
	require.NoError(t, err)

	// settings map, terminated by an empty name
	name, err := r.String()
	require.NoError(t, err)
	require.Equal(t, "", name)

	_, err = r.String() // interserver_secret
	require.NoError(t, err)
	_, err = r.Uvarint() // stage
	require.NoError(t, err)
	_, err = r.Byte() // compression flag
	require.NoError(t, err)

	sql, err = r.String()
	require.NoError(t, err)

	return sql
}

// readEmptyDataBlock consumes one Data packet whose block has zero rows
// (the schema probe and/or end-of-input marker every query sends).
func (f *fakeServer) readEmptyDataBlock(revision uint64) {
	t := f.t
	r := f.r

	tag, err := r.Uvarint()
	require.NoError(t, err)
	require.Equal(t, uint64(proto.ClientData), tag)

	st := column.State{Revision: revision}
	_, blk, err := proto.ReadData(r, st, 0)
	require.NoError(t, err)
	require.Equal(t, 0, blk.RowCount())
}

func (f *fakeServer) writeDataBlock(revision uint64, blk block.Block) {
	w := wire.NewWriter()
	defer w.Release()

	w.Uvarint(uint64(proto.ServerData))
	st := column.State{Revision: revision}
	err := proto.WriteData(w, st, "", blk, 0)
	require.NoError(f.t, err)

	_, err = f.conn.Write(w.Bytes())
	require.NoError(f.t, err)
}

func (f *fakeServer) writeEndOfStream() {
	w := wire.NewWriter()
	defer w.Release()

	w.Uvarint(uint64(proto.ServerEndOfStream))

	_, err := f.conn.Write(w.Bytes())
	require.NoError(f.t, err)
}

func oneRowUInt32Block(name string, v uint32) block.Block {
	return block.Block{
		Columns: []block.Column{
			{
				Name:   name,
				Type:   chtype.Type{Kind: chtype.KindUInt32},
				Values: []column.Value{column.UInt(uint64(v))},
			},
		},
	}
}

func dialSession(t *testing.T) (*Session, net.Conn, *fakeServer) {
	serverConn, clientConn := net.Pipe()

	type connectResult struct {
		sess *Session
		err  error
	}
	resultCh := make(chan connectResult, 1)

	go func() {
		sess, err := connectOverConn(clientConn)
		resultCh <- connectResult{sess, err}
	}()

	fs := newFakeServer(t, serverConn)
	fs.readClientHello()
	fs.writeServerHello(proto.ClientRevision)

	res := <-resultCh
	require.NoError(t, res.err)

	return res.sess, serverConn, fs
}

// connectOverConn runs the same handshake Connect does, but over a
// pre-established net.Conn (net.Pipe has no listener/dialer pair to target
// with Connect's net.Dialer).
func connectOverConn(conn net.Conn) (*Session, error) {
	cfg := DefaultConfig()
	cfg.Compression = false

	sess := &Session{
		conn:        conn,
		r:           wire.NewReader(conn),
		cfg:         cfg,
		submissions: make(chan *request, cfg.MaxPendingQueries),
		closeSignal: make(chan struct{}),
		stopped:     make(chan struct{}),
	}

	if err := sess.handshake(); err != nil {
		return nil, err
	}

	go sess.run()

	return sess, nil
}

func TestSession_QueryOne(t *testing.T) {
	sess, serverConn, fs := dialSession(t)
	defer func() { _ = serverConn.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fs.readClientQuery()
		fs.readEmptyDataBlock(sess.info.Revision)
		fs.writeDataBlock(sess.info.Revision, oneRowUInt32Block("1", 1))
		fs.writeEndOfStream()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row, err := sess.QueryOne(ctx, "SELECT 1")
	require.NoError(t, err)
	require.Len(t, row, 1)
	require.Equal(t, uint64(1), row[0].Value.UInt64())

	<-done
	require.False(t, sess.IsClosed())
}

func TestSession_ServerException(t *testing.T) {
	sess, serverConn, fs := dialSession(t)
	defer func() { _ = serverConn.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fs.readClientQuery()
		fs.readEmptyDataBlock(sess.info.Revision)

		w := wire.NewWriter()
		defer w.Release()
		w.Uvarint(uint64(proto.ServerException))
		buf := make([]byte, 4)
		le.PutUint32(buf, uint32(int32(60)))
		w.Raw(buf)
		w.String("UNKNOWN_TABLE")
		w.String("Table does not exist")
		w.String("")
		w.Byte(0)
		_, err := serverConn.Write(w.Bytes())
		require.NoError(t, err)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := sess.QueryOne(ctx, "SELECT * FROM missing")
	require.Error(t, err)

	<-done
	require.False(t, sess.IsClosed())
}

func TestSession_IsClosedAfterConnError(t *testing.T) {
	sess, serverConn, _ := dialSession(t)

	_ = serverConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := sess.Execute(ctx, "SELECT 1")
	require.Error(t, err)

	require.Eventually(t, sess.IsClosed, time.Second, 10*time.Millisecond)
}
