// Package proto implements the ClickHouse native wire protocol state
// machine sitting on top of package wire's primitives and package block's
// columnar frames: packet tags, handshake revision negotiation, and the
// client→server query write sequence.
//
// Grounded on marmos91-dittofs's internal/protocol/{nfs,xdr} layering — one
// package owning wire packet structs, a sibling owning per-tag dispatch —
// adapted here from NFS procedure dispatch to ClickHouse packet-tag
// dispatch; everything in this package is a struct-plus-Write/Read pair, the
// same shape dittofs uses for its XDR-encoded RPC messages.
package proto

import "github.com/katanacap/klickhouse/endian"

var le = endian.GetLittleEndianEngine()

// ClientPacket tags a client→server message.
type ClientPacket uint64

const (
	ClientHello  ClientPacket = 0
	ClientQuery  ClientPacket = 1
	ClientData   ClientPacket = 2
	ClientCancel ClientPacket = 3
	ClientPing   ClientPacket = 4
)

// ServerPacket tags a server→client message.
type ServerPacket uint64

const (
	ServerHello               ServerPacket = 0
	ServerData                ServerPacket = 1
	ServerException           ServerPacket = 2
	ServerProgress            ServerPacket = 3
	ServerPong                ServerPacket = 4
	ServerEndOfStream         ServerPacket = 5
	ServerProfileInfo         ServerPacket = 6
	ServerTotals              ServerPacket = 7
	ServerExtremes            ServerPacket = 8
	ServerTableStatusResponse ServerPacket = 9
	ServerLog                 ServerPacket = 10
	ServerTableColumns        ServerPacket = 11
	ServerPartUUIDs           ServerPacket = 12
	ServerReadTaskRequest     ServerPacket = 13
	ServerProfileEvents       ServerPacket = 14
)

func (p ServerPacket) String() string {
	switch p {
	case ServerHello:
		return "Hello"
	case ServerData:
		return "Data"
	case ServerException:
		return "Exception"
	case ServerProgress:
		return "Progress"
	case ServerPong:
		return "Pong"
	case ServerEndOfStream:
		return "EndOfStream"
	case ServerProfileInfo:
		return "ProfileInfo"
	case ServerTotals:
		return "Totals"
	case ServerExtremes:
		return "Extremes"
	case ServerTableStatusResponse:
		return "TableStatusResponse"
	case ServerLog:
		return "Log"
	case ServerTableColumns:
		return "TableColumns"
	case ServerPartUUIDs:
		return "PartUUIDs"
	case ServerReadTaskRequest:
		return "ReadTaskRequest"
	case ServerProfileEvents:
		return "ProfileEvents"
	default:
		return "Unknown"
	}
}
