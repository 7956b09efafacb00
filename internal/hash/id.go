// Package hash wraps the xxHash64 function used to key the LowCardinality
// dictionary builder's hash buckets (see internal/collision).
package hash

import "github.com/cespare/xxhash/v2"

// Bucket computes the xxHash64 of a value's canonical encoded byte
// representation, used as the bucket key for dictionary interning.
func Bucket(encoded string) uint64 {
	return xxhash.Sum64String(encoded)
}

// BucketBytes is the []byte variant of Bucket, avoiding a string conversion
// when the canonical encoding is already a byte slice.
func BucketBytes(encoded []byte) uint64 {
	return xxhash.Sum64(encoded)
}
