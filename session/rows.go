package session

import (
	"context"

	"github.com/katanacap/klickhouse/block"
	"github.com/katanacap/klickhouse/column"
	"github.com/katanacap/klickhouse/proto"
)

// Rows is a caller-side handle onto one in-flight query's result stream —
// spec §3's "request handle," a short-lived borrow into the session that,
// per §5, treats dropping the handle as the only cancellation mechanism.
type Rows struct {
	req *request

	pending []rowView // rows decoded from the current block, not yet consumed
	cur     rowView

	err  error
	done bool
}

// rowView is one row's worth of (name, type, value) triples, sliced out of
// a decoded Block without copying the underlying column name/type data.
type rowView = []column.NamedValue

// queryRows submits sql for execution and returns a Rows streaming its
// result blocks, flattened row by row.
func (s *Session) queryRows(ctx context.Context, sql string, settings proto.Settings) (*Rows, error) {
	req := newRequest(ctx, newQueryID(), sql, settings, s.cfg.DownloadBufferSize, s.cfg.UploadBufferSize, false)

	if err := s.submit(req); err != nil {
		req.cancel()
		return nil, err
	}

	return &Rows{req: req}, nil
}

// QueryRows runs sql and returns a Rows cursor over its result, streamed
// block by block as the server produces them.
func (s *Session) QueryRows(ctx context.Context, sql string) (*Rows, error) {
	return s.queryRows(ctx, sql, nil)
}

// Next advances to the next row. It returns false once the result is
// exhausted (check Err for a non-nil terminal error) or on error.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}

	for len(r.pending) == 0 {
		item, ok := <-r.req.download
		if !ok {
			r.done = true
			return false
		}

		if item.err != nil {
			r.err = item.err
			r.done = true
			return false
		}

		if item.block.RowCount() == 0 {
			continue // schema preamble / end-of-stream marker block
		}

		r.pending = flattenBlock(item.block)
	}

	r.cur, r.pending = r.pending[0], r.pending[1:]

	return true
}

// Row returns the current row as (name, type, value) triples, valid only
// between a true-returning Next and the following call.
func (r *Rows) Row() []column.NamedValue {
	return r.cur
}

// Close cancels the query if it has not already finished, releasing the
// request handle. Per spec §5 this is the only cancellation mechanism:
// dropping/closing a Rows enqueues a Cancel packet and the multiplexer
// drains to EndOfStream before serving the next query.
func (r *Rows) Close() error {
	r.req.cancel()
	if !r.done {
		for range r.req.download {
			// Drain until the multiplexer closes the channel after
			// observing EndOfStream/Exception for the cancelled query.
		}
		r.done = true
	}
	return nil
}

// Err returns the terminal error observed by the cursor, if any.
func (r *Rows) Err() error {
	return r.err
}

// flattenBlock expands a columnar Block into row-major NamedValue slices,
// one per row, in column order.
func flattenBlock(b block.Block) []rowView {
	n := b.RowCount()
	rows := make([]rowView, n)

	for i := 0; i < n; i++ {
		row := make([]column.NamedValue, len(b.Columns))
		for c, col := range b.Columns {
			row[c] = column.NamedValue{Name: col.Name, Type: col.Type, Value: col.Values[i]}
		}
		rows[i] = row
	}

	return rows
}
