// Package compress implements the ClickHouse native-protocol compression
// envelope: a framed, checksummed wrapper around an LZ4 (or, optionally,
// ZSTD) compressed block.
//
// Every compressed frame on the wire has the layout:
//
//	checksum  : 16 bytes  (little-endian CityHash-128 of header+body)
//	algo_byte : 1 byte    (0x82 = LZ4, 0x90 = ZSTD, 0x02 = none)
//	csize     : 4 bytes LE (total size of header+compressed body, i.e. 9+len(body))
//	usize     : 4 bytes LE (uncompressed size)
//	body      : csize - 9 bytes
//
// The checksum covers the 9-byte header (algo byte + both sizes) and the
// compressed body — never the decoded plaintext. Decoding recomputes it
// before touching the LZ4 decoder, so a corrupted frame is rejected before
// any decompression work happens.
//
// Grounded on the teacher's compress package: a small Codec interface
// (Compress/Decompress on a raw byte slice) implemented once per algorithm,
// with a pooled github.com/pierrec/lz4/v4 compressor/decompressor pair for
// the hot path. The teacher wraps a payload directly; this module wraps the
// same payload in ClickHouse's checksum+size header before choosing a codec.
package compress
