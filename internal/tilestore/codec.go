package tilestore

import "github.com/DataDog/zstd"

// Compress zstd-compresses bb, the same compress-before-persist shape the
// teacher's pkg/kv package uses ahead of a pebble.Set.
func Compress(bb []byte) ([]byte, error) {
	return zstd.Compress(nil, bb)
}

// Decompress reverses Compress.
func Decompress(bb []byte) ([]byte, error) {
	return zstd.Decompress(nil, bb)
}
