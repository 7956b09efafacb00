package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/katanacap/klickhouse/errs"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse; the
// lz4.Compressor maintains internal hash-table state that benefits from
// reuse across frames, grounded on the teacher's own pooling of the same
// type in its payload-compression hot path.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

type lz4Codec struct{}

var _ Codec = lz4Codec{}

func newLZ4Codec() lz4Codec { return lz4Codec{} }

func (lz4Codec) Algo() Algo { return AlgoLZ4 }

// Compress implements the encoder contract of spec §4.2: reject inputs past
// INT32_MAX (maxFrameSize already enforces the tighter 1GiB frame limit
// before this is called), allocate LZ4's worst-case output bound, and run
// the block compressor.
func (lz4Codec) Compress(plain []byte) ([]byte, error) {
	if len(plain) == 0 {
		return []byte{}, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(plain)))

	c, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(c)

	n, err := c.CompressBlock(plain, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 compress: %v", errs.ErrNotImplemented, err)
	}

	return dst[:n], nil
}

// Decompress implements the decoder contract: allocate exactly usize+1
// bytes (the frame header already told us the exact uncompressed size, so
// no adaptive retry loop is needed) and reject any result whose length
// differs from usize.
func (lz4Codec) Decompress(body []byte, usize int) ([]byte, error) {
	if usize == 0 {
		return []byte{}, nil
	}

	dst := make([]byte, usize+1)

	n, err := lz4.UncompressBlock(body, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 decompress: %v", errs.ErrFrameSize, err)
	}

	return dst[:n], nil
}
