package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec implements the reserved AlgoZSTD frame algorithm (§9's Open
// Question). It is registered by callers that opt in via RegisterCodec —
// the default codec table only carries AlgoNone/AlgoLZ4, since those are
// what the testable properties in spec §8 exercise end-to-end.
type zstdCodec struct{}

var _ Codec = zstdCodec{}

// NewZstdCodec returns the ZSTD frame Codec for registration:
//
//	compress.RegisterCodec(compress.NewZstdCodec())
func NewZstdCodec() Codec { return zstdCodec{} }

func (zstdCodec) Algo() Algo { return AlgoZSTD }

// zstdDecoderPool and zstdEncoderPool reuse warmed-up encoders/decoders
// across frames; klauspost/compress/zstd documents EncodeAll/DecodeAll as
// stateless and safe to call repeatedly against a pooled instance.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		d, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("compress: failed to create zstd decoder: %v", err))
		}
		return d
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		e, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("compress: failed to create zstd encoder: %v", err))
		}
		return e
	},
}

func (zstdCodec) Compress(plain []byte) ([]byte, error) {
	e, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(e)

	return e.EncodeAll(plain, nil), nil
}

func (zstdCodec) Decompress(body []byte, usize int) ([]byte, error) {
	d, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(d)

	out, err := d.DecodeAll(body, make([]byte, 0, usize))
	if err != nil {
		return nil, fmt.Errorf("compress: zstd decompress: %w", err)
	}

	return out, nil
}
