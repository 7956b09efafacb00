package proto

import (
	"github.com/katanacap/klickhouse/wire"
)

// Progress is a running total of rows/bytes read and (revision-gated)
// written, streamed periodically during a long-running query.
type Progress struct {
	Rows         uint64
	Bytes        uint64
	TotalRows    uint64
	WrittenRows  uint64
	WrittenBytes uint64
	ElapsedNs    uint64
}

// ReadProgress reads a Progress packet body (the leading tag already
// consumed).
func ReadProgress(r *wire.Reader, revision uint64) (Progress, error) {
	var p Progress
	var err error

	if p.Rows, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.Bytes, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.TotalRows, err = r.Uvarint(); err != nil {
		return p, err
	}

	if revision >= RevisionWithClientWriteInfo {
		if p.WrittenRows, err = r.Uvarint(); err != nil {
			return p, err
		}
		if p.WrittenBytes, err = r.Uvarint(); err != nil {
			return p, err
		}
	}

	if revision >= RevisionWithParallelReplicas {
		if p.ElapsedNs, err = r.Uvarint(); err != nil {
			return p, err
		}
	}

	return p, nil
}

// ProfileInfo summarizes the query's execution once the server has
// finished preparing (not necessarily sending) all result rows.
type ProfileInfo struct {
	Rows                      uint64
	Blocks                    uint64
	Bytes                     uint64
	AppliedLimit              bool
	RowsBeforeLimit           uint64
	CalculatedRowsBeforeLimit bool
}

// ReadProfileInfo reads a ProfileInfo packet body.
func ReadProfileInfo(r *wire.Reader) (ProfileInfo, error) {
	var p ProfileInfo
	var err error

	if p.Rows, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.Blocks, err = r.Uvarint(); err != nil {
		return p, err
	}
	if p.Bytes, err = r.Uvarint(); err != nil {
		return p, err
	}

	appliedLimit, err := r.Byte()
	if err != nil {
		return p, err
	}
	p.AppliedLimit = appliedLimit != 0

	if p.RowsBeforeLimit, err = r.Uvarint(); err != nil {
		return p, err
	}

	calc, err := r.Byte()
	if err != nil {
		return p, err
	}
	p.CalculatedRowsBeforeLimit = calc != 0

	return p, nil
}

// TableColumns is a best-effort description of an input table's schema,
// sent by the server in response to the schema-probe empty Data block.
type TableColumns struct {
	TableName  string
	ColumnsDDL string
}

// ReadTableColumns reads a TableColumns packet body.
func ReadTableColumns(r *wire.Reader) (TableColumns, error) {
	var t TableColumns
	var err error

	if t.TableName, err = r.String(); err != nil {
		return t, err
	}
	if t.ColumnsDDL, err = r.String(); err != nil {
		return t, err
	}

	return t, nil
}

// PartUUIDs is the list of MergeTree part UUIDs a query touched, used by
// the server for deduplication across a distributed query; this client
// only needs to stay stream-aligned past it.
type PartUUIDs struct {
	UUIDs [][16]byte
}

// ReadPartUUIDs reads a PartUUIDs packet body.
func ReadPartUUIDs(r *wire.Reader) (PartUUIDs, error) {
	n, err := r.Uvarint()
	if err != nil {
		return PartUUIDs{}, err
	}

	out := make([][16]byte, n)
	for i := range out {
		buf, err := r.Full(16)
		if err != nil {
			return PartUUIDs{}, err
		}
		copy(out[i][:], buf)
	}

	return PartUUIDs{UUIDs: out}, nil
}

// ReadTaskRequest signals the server wants this client to supply a unit of
// work for a parallel replica read; this client does not implement
// parallel-replica task distribution (§1 scopes server-side computation
// out), so the session only needs to recognise and skip the tag — the
// packet carries no body in the revisions this client negotiates.
type ReadTaskRequest struct{}
