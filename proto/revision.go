package proto

// ClientRevision is the protocol revision this client speaks. The session
// negotiates min(ClientRevision, server's reported revision) at handshake
// and gates every revision-sensitive field below on that negotiated value,
// never on ClientRevision alone — matching spec §4.6's "min(client_rev,
// server_rev)" rule.
//
// Named constants here stand in for the handful of revision gates spec.md
// calls out, the way section.NumericFlag names its bit positions rather
// than leaving them as magic numbers at each call site.
const (
	// ClientRevision is the protocol revision this client advertises in its
	// Hello packet.
	ClientRevision uint64 = 54466

	// RevisionWithClientInfo gates the ClientInfo block inside the Query
	// packet (query kind, initial user/query id, OS user, client hostname
	// and version triple).
	RevisionWithClientInfo uint64 = 54032

	// RevisionWithServerTimezone gates the timezone string the server
	// appends to its Hello reply.
	RevisionWithServerTimezone uint64 = 54058

	// RevisionWithServerDisplayName gates the display_name string the
	// server appends to its Hello reply, after the timezone.
	RevisionWithServerDisplayName uint64 = 54372

	// RevisionWithVersionPatch gates a trailing version-patch component on
	// the server's Hello reply and inside ClientInfo.
	RevisionWithVersionPatch uint64 = 54401

	// RevisionWithInterserverSecret gates the interserver_secret string in
	// the Query packet, written empty by this client (§6 scopes out
	// cluster authentication).
	RevisionWithInterserverSecret uint64 = 54441

	// RevisionWithOpenTelemetry gates an OpenTelemetry tracing span inside
	// ClientInfo; this client never starts a span, so it writes the "no
	// tracing" marker byte when the field is present.
	RevisionWithOpenTelemetry uint64 = 54442

	// RevisionWithQuotaKey gates a quota_key string in ClientInfo.
	RevisionWithQuotaKey uint64 = 54060

	// RevisionWithInitialQueryStartTime gates a
	// initial_query_start_time_microseconds UInt64 in ClientInfo, written
	// between InitialAddress and the interface byte.
	RevisionWithInitialQueryStartTime uint64 = 54449

	// RevisionWithParallelReplicas gates a handful of distributed-query
	// scheduling fields in ClientInfo this client never populates.
	RevisionWithParallelReplicas uint64 = 54453

	// RevisionWithClientWriteInfo gates the wrote_rows/wrote_bytes fields on
	// a Progress packet, sent for INSERT queries.
	RevisionWithClientWriteInfo uint64 = 54420
)

// QueryProcessingStage is the requested depth of server-side query
// processing; this client always asks for Complete (the full result).
type QueryProcessingStage uint64

const (
	StageFetchColumns     QueryProcessingStage = 0
	StageWithMergeableState QueryProcessingStage = 1
	StageComplete         QueryProcessingStage = 2
)
