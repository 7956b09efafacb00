package proto

import (
	"bytes"

	"github.com/katanacap/klickhouse/block"
	"github.com/katanacap/klickhouse/column"
	"github.com/katanacap/klickhouse/compress"
	"github.com/katanacap/klickhouse/wire"
)

// WriteData serializes a Data packet: tag, temporary-table name (almost
// always empty for this client), then the block — optionally wrapped in a
// compression frame when the session negotiated one.
func WriteData(w *wire.Writer, st column.State, tableName string, blk block.Block, algo compress.Algo) error {
	w.Uvarint(uint64(ClientData))
	w.String(tableName)

	if algo == 0 {
		return block.Write(w, st, blk)
	}

	tmp := wire.NewBlockWriter()
	defer tmp.Release()

	if err := block.Write(tmp, st, blk); err != nil {
		return err
	}

	frame, err := compress.EncodeFrame(tmp.Bytes(), algo)
	if err != nil {
		return err
	}

	w.Raw(frame)

	return nil
}

// ReadData reads a Data packet body (the leading tag already consumed by
// the caller's dispatch loop) at the negotiated revision. algo selects
// whether the block bytes are expected to be wrapped in a compression
// frame; pass 0 for an uncompressed session.
func ReadData(r *wire.Reader, st column.State, algo compress.Algo) (tableName string, blk block.Block, err error) {
	tableName, err = r.String()
	if err != nil {
		return "", block.Block{}, err
	}

	if algo == 0 {
		blk, err = block.Read(r, st)
		return tableName, blk, err
	}

	plain, err := compress.DecodeFrameFrom(r.Underlying())
	if err != nil {
		return "", block.Block{}, err
	}

	blk, err = block.Read(wire.NewReader(bytes.NewReader(plain)), st)

	return tableName, blk, err
}
