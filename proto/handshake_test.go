package proto

import (
	"testing"

	"github.com/katanacap/klickhouse/wire"
	"github.com/stretchr/testify/require"
)

func TestHelloRoundTrip(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	WriteClientHello(w, HelloRequest{
		ClientName:   "klickhouse-go",
		VersionMajor: 1,
		VersionMinor: 2,
		Revision:     ClientRevision,
		Database:     "default",
		User:         "default",
		Password:     "",
	})

	r := wire.NewReader(newBytesReader(w.Bytes()))

	tag, err := ReadPacketTag(r)
	require.NoError(t, err)
	require.Equal(t, uint64(ClientHello), tag)

	name, err := r.String()
	require.NoError(t, err)
	require.Equal(t, "klickhouse-go", name)
}

func TestServerHelloRoundTrip_FullRevision(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	w.Uvarint(uint64(ServerHello))
	w.String("ClickHouse")
	w.Uvarint(23)
	w.Uvarint(8)
	w.Uvarint(ClientRevision)
	w.String("UTC")
	w.String("my-server")
	w.Uvarint(1)

	r := wire.NewReader(newBytesReader(w.Bytes()))

	resp, err := ExpectServerHello(r)
	require.NoError(t, err)
	require.Equal(t, "ClickHouse", resp.Name)
	require.Equal(t, uint64(23), resp.VersionMajor)
	require.Equal(t, uint64(8), resp.VersionMinor)
	require.Equal(t, ClientRevision, resp.Revision)
	require.Equal(t, "UTC", resp.Timezone)
	require.Equal(t, "my-server", resp.DisplayName)
	require.Equal(t, uint64(1), resp.VersionPatch)
}

func TestServerHelloRoundTrip_OldRevision(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	const oldRevision = 54000 // below every optional Hello-reply gate

	w.Uvarint(uint64(ServerHello))
	w.String("ClickHouse")
	w.Uvarint(20)
	w.Uvarint(1)
	w.Uvarint(uint64(oldRevision))

	r := wire.NewReader(newBytesReader(w.Bytes()))

	resp, err := ExpectServerHello(r)
	require.NoError(t, err)
	require.Equal(t, uint64(oldRevision), resp.Revision)
	require.Equal(t, "", resp.Timezone)
	require.Equal(t, "", resp.DisplayName)
	require.Equal(t, uint64(0), resp.VersionPatch)
}

func TestExpectServerHello_Exception(t *testing.T) {
	w := wire.NewWriter()
	defer w.Release()

	w.Uvarint(uint64(ServerException))
	codeBuf := make([]byte, 4)
	le.PutUint32(codeBuf, 516) // AUTHENTICATION_FAILED
	w.Raw(codeBuf)
	w.String("AUTHENTICATION_FAILED")
	w.String("bad credentials")
	w.String("")
	w.Byte(0)

	r := wire.NewReader(newBytesReader(w.Bytes()))

	_, err := ExpectServerHello(r)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad credentials")
}

func TestNegotiateRevision(t *testing.T) {
	require.Equal(t, uint64(100), NegotiateRevision(100, 200))
	require.Equal(t, uint64(100), NegotiateRevision(200, 100))
	require.Equal(t, uint64(100), NegotiateRevision(100, 100))
}
