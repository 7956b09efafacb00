package session

import (
	"context"

	"github.com/katanacap/klickhouse/block"
	"github.com/katanacap/klickhouse/proto"
)

// downloadItem is one unit pushed onto a request's inbound channel: either a
// decoded Data block, or (as the channel's final element before it closes) a
// terminal error.
type downloadItem struct {
	block block.Block
	err   error
}

// request is the multiplexer's view of one in-flight query — the unit
// spec §3 calls "a short-lived handle borrowed into the session." Callers
// never see this type directly; they hold a *Rows built around it.
type request struct {
	ctx    context.Context
	cancel context.CancelFunc

	id       string
	sql      string
	settings proto.Settings

	// upload carries caller-produced insert blocks; nil for a plain query.
	// Closed by InsertNativeBlock's producer goroutine to signal
	// end-of-input.
	upload chan block.Block

	// download carries decoded Data blocks (and, as its last element, a
	// terminal error) back to the caller. Its bounded capacity is the
	// back-pressure knob of spec §5: a slow consumer stalls the
	// multiplexer's socket read, which stalls the server.
	download chan downloadItem

	// progress is a best-effort, never-blocking side channel for Progress
	// packets; the multiplexer drops a Progress update rather than block
	// on it. newRequest leaves it nil, and while it is nil every Progress
	// update is dropped.
	progress chan proto.Progress
}

func newRequest(ctx context.Context, id, sql string, settings proto.Settings, downloadCap, uploadCap int, withUpload bool) *request {
	reqCtx, cancel := context.WithCancel(ctx)

	req := &request{
		ctx:      reqCtx,
		cancel:   cancel,
		id:       id,
		sql:      sql,
		settings: settings,
		download: make(chan downloadItem, downloadCap),
	}

	if withUpload {
		req.upload = make(chan block.Block, uploadCap)
	}

	return req
}
