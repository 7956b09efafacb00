package proto

import (
	"fmt"

	"github.com/katanacap/klickhouse/errs"
	"github.com/katanacap/klickhouse/wire"
)

// HelloRequest is the first packet a client ever writes on a new connection.
type HelloRequest struct {
	ClientName    string
	VersionMajor  uint64
	VersionMinor  uint64
	Revision      uint64
	Database      string
	User          string
	Password      string
}

// WriteClientHello serializes h as a Hello packet (tag + body) onto w.
func WriteClientHello(w *wire.Writer, h HelloRequest) {
	w.Uvarint(uint64(ClientHello))
	w.String(h.ClientName)
	w.Uvarint(h.VersionMajor)
	w.Uvarint(h.VersionMinor)
	w.Uvarint(h.Revision)
	w.String(h.Database)
	w.String(h.User)
	w.String(h.Password)
}

// HelloResponse is the handshake reply: the server's identity, version, the
// revision it supports, and (revision-gated) its timezone and display name.
type HelloResponse struct {
	Name         string
	VersionMajor uint64
	VersionMinor uint64
	Revision     uint64
	Timezone     string
	DisplayName  string
	VersionPatch uint64
}

// ReadServerHello reads a Hello reply from r. The tag is assumed to have
// already been consumed by the caller's packet dispatch loop.
func ReadServerHello(r *wire.Reader) (HelloResponse, error) {
	var h HelloResponse

	var err error
	if h.Name, err = r.String(); err != nil {
		return h, err
	}
	if h.VersionMajor, err = r.Uvarint(); err != nil {
		return h, err
	}
	if h.VersionMinor, err = r.Uvarint(); err != nil {
		return h, err
	}
	if h.Revision, err = r.Uvarint(); err != nil {
		return h, err
	}

	if h.Revision >= RevisionWithServerTimezone {
		if h.Timezone, err = r.String(); err != nil {
			return h, err
		}
	}

	if h.Revision >= RevisionWithServerDisplayName {
		if h.DisplayName, err = r.String(); err != nil {
			return h, err
		}
	}

	if h.Revision >= RevisionWithVersionPatch {
		if h.VersionPatch, err = r.Uvarint(); err != nil {
			return h, err
		}
	}

	return h, nil
}

// NegotiateRevision returns min(clientRev, serverRev): every revision-gated
// field later in the session reads from this value, never from
// ClientRevision alone.
func NegotiateRevision(clientRev, serverRev uint64) uint64 {
	if clientRev < serverRev {
		return clientRev
	}
	return serverRev
}

// ReadPacketTag reads the leading varint packet tag common to every
// message in both directions.
func ReadPacketTag(r *wire.Reader) (uint64, error) {
	return r.Uvarint()
}

// ExpectServerHello reads and validates the packet tag before delegating to
// ReadServerHello, surfacing any Exception the server sends instead (e.g. an
// authentication failure during handshake).
func ExpectServerHello(r *wire.Reader) (HelloResponse, error) {
	tag, err := ReadPacketTag(r)
	if err != nil {
		return HelloResponse{}, err
	}

	switch ServerPacket(tag) {
	case ServerHello:
		return ReadServerHello(r)
	case ServerException:
		exc, err := ReadException(r)
		if err != nil {
			return HelloResponse{}, err
		}
		return HelloResponse{}, exc
	default:
		return HelloResponse{}, fmt.Errorf("%w: expected Hello or Exception during handshake, got tag %d", errs.ErrProtocol, tag)
	}
}
