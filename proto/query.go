package proto

import (
	"github.com/katanacap/klickhouse/wire"
)

// ClientInfo describes the query's origin, written as part of the Query
// packet once the negotiated revision supports it (spec §4.6).
type ClientInfo struct {
	QueryKind                   byte // 0 = no query, 1 = initial query, 2 = secondary query
	InitialUser                 string
	InitialQueryID              string
	InitialAddress              string
	InitialQueryStartTimeMicros uint64
	OSUser                      string
	ClientHostname              string
	ClientName                  string
	VersionMajor                uint64
	VersionMinor                uint64
	Revision                    uint64
	QuotaKey                    string
	VersionPatch                uint64
}

func writeClientInfo(w *wire.Writer, ci ClientInfo, revision uint64) {
	w.Byte(ci.QueryKind)
	if ci.QueryKind == 0 {
		return
	}

	w.String(ci.InitialUser)
	w.String(ci.InitialQueryID)
	w.String(ci.InitialAddress)

	if revision >= RevisionWithInitialQueryStartTime {
		buf := make([]byte, 8)
		le.PutUint64(buf, ci.InitialQueryStartTimeMicros)
		w.Raw(buf)
	}

	w.Byte(1) // interface = TCP

	w.String(ci.OSUser)
	w.String(ci.ClientHostname)
	w.String(ci.ClientName)
	w.Uvarint(ci.VersionMajor)
	w.Uvarint(ci.VersionMinor)
	w.Uvarint(ci.Revision)

	if revision >= RevisionWithQuotaKey {
		w.String(ci.QuotaKey)
	}

	if revision >= RevisionWithParallelReplicas {
		w.Uvarint(0) // distributed_depth
	}

	if revision >= RevisionWithVersionPatch {
		w.Uvarint(ci.VersionPatch)
	}

	if revision >= RevisionWithOpenTelemetry {
		w.Byte(0) // no OpenTelemetry span attached to this query
	}

	if revision >= RevisionWithParallelReplicas {
		w.Uvarint(0) // collaborate_with_initiator
		w.Uvarint(0) // count_participating_replicas
		w.Uvarint(0) // number_of_current_replica
	}
}

// Settings is a set of session-level query settings, written as (name,
// flag byte, value) entries in map iteration order, which is unspecified,
// and terminated by an empty name.
type Settings map[string]string

func writeSettings(w *wire.Writer, s Settings) {
	for k, v := range s {
		w.String(k)
		w.Byte(1) // important flag: treat every setting as significant
		w.String(v)
	}

	w.String("") // empty name terminates the settings map
}

// Query is everything the client sends to start a query, per spec §4.6
// step 1.
type Query struct {
	ID          string
	Info        ClientInfo
	Settings    Settings
	Stage       QueryProcessingStage
	Compression bool
	SQL         string
}

// WriteQuery serializes the Query packet onto w at the negotiated revision.
func WriteQuery(w *wire.Writer, q Query, revision uint64) {
	w.Uvarint(uint64(ClientQuery))
	w.String(q.ID)

	if revision >= RevisionWithClientInfo {
		writeClientInfo(w, q.Info, revision)
	}

	writeSettings(w, q.Settings)

	if revision >= RevisionWithInterserverSecret {
		w.String("") // interserver_secret: cluster auth is out of scope (§1)
	}

	w.Uvarint(uint64(q.Stage))

	compressionByte := byte(0)
	if q.Compression {
		compressionByte = 1
	}
	w.Byte(compressionByte)

	w.String(q.SQL)
}

// WriteCancel serializes a bare Cancel packet.
func WriteCancel(w *wire.Writer) {
	w.Uvarint(uint64(ClientCancel))
}

// WritePing serializes a bare Ping packet.
func WritePing(w *wire.Writer) {
	w.Uvarint(uint64(ClientPing))
}
