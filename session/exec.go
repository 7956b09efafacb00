package session

import (
	"context"
	"fmt"

	"github.com/katanacap/klickhouse/block"
	"github.com/katanacap/klickhouse/column"
	"github.com/katanacap/klickhouse/errs"
)

// Execute runs sql, drains its result (discarding any rows), and returns
// once the server reports EndOfStream or Exception.
func (s *Session) Execute(ctx context.Context, sql string) error {
	rows, err := s.QueryRows(ctx, sql)
	if err != nil {
		return err
	}

	for rows.Next() {
	}

	return rows.Err()
}

// QueryOne runs sql and returns its single result row. It is an error for
// the query to return zero or more than one row.
func (s *Session) QueryOne(ctx context.Context, sql string) ([]column.NamedValue, error) {
	rows, err := s.QueryRows(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: query_one: result set is empty", errs.ErrDeserialize)
	}

	row := append([]column.NamedValue(nil), rows.Row()...)

	if rows.Next() {
		return nil, fmt.Errorf("%w: query_one: result set has more than one row", errs.ErrDeserialize)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return row, nil
}

// QueryCollect runs sql and buffers every result row into memory.
func (s *Session) QueryCollect(ctx context.Context, sql string) ([][]column.NamedValue, error) {
	rows, err := s.QueryRows(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]column.NamedValue
	for rows.Next() {
		out = append(out, append([]column.NamedValue(nil), rows.Row()...))
	}

	return out, rows.Err()
}

// InsertNativeBlock sends sql (an INSERT statement) and streams rows to the
// server in blocks of up to blockRows rows each. cols is consumed
// completely before the final empty end-of-input Data block is written.
func (s *Session) InsertNativeBlock(ctx context.Context, sql string, cols []block.Column, blockRows int) error {
	if blockRows <= 0 {
		blockRows = 1
	}

	req := newRequest(ctx, newQueryID(), sql, nil, s.cfg.DownloadBufferSize, s.cfg.UploadBufferSize, true)

	if err := s.submit(req); err != nil {
		req.cancel()
		return err
	}

	total := 0
	if len(cols) > 0 {
		total = len(cols[0].Values)
	}

	go func() {
		defer close(req.upload)

		for offset := 0; offset < total; offset += blockRows {
			end := offset + blockRows
			if end > total {
				end = total
			}

			blk := block.Block{Columns: make([]block.Column, len(cols))}
			for i, c := range cols {
				blk.Columns[i] = block.Column{Name: c.Name, Type: c.Type, Values: c.Values[offset:end]}
			}

			select {
			case req.upload <- blk:
			case <-req.ctx.Done():
				return
			}
		}
	}()

	for item := range req.download {
		if item.err != nil {
			return item.err
		}
	}

	return nil
}
