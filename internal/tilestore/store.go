// Package tilestore persists tile paint results keyed by tile identity.
// This is deliberately not the raster queue's own state — the queue's
// Non-goal on persistence is about scheduling state, not about what
// happens to a tile after it has been painted.
package tilestore

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/tileforge/rasterpq/internal/dispatch"
	"github.com/tileforge/rasterpq/internal/tile"
)

// Store wraps a pebble database, writing and reading zstd-compressed JSON
// paint records, the same open/close/write shape as the teacher's KVDB.
type Store struct {
	db *pebble.DB
}

func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening tile store at %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func tileKey(id tile.ID) []byte {
	return []byte(id.String())
}

// PutResult persists one paint result, compressed.
func (s *Store) PutResult(r dispatch.PaintResult) error {
	encoded, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding paint result for %s: %w", r.TileID, err)
	}
	compressed, err := Compress(encoded)
	if err != nil {
		return fmt.Errorf("compressing paint result for %s: %w", r.TileID, err)
	}
	if err := s.db.Set(tileKey(r.TileID), compressed, pebble.Sync); err != nil {
		return fmt.Errorf("writing paint result for %s: %w", r.TileID, err)
	}
	return nil
}

// GetResult reads back a previously persisted paint result. It reports
// domain.ErrNotFound-compatible behavior via a plain (false, nil) miss —
// callers that need the sentinel wrap this at the HTTP boundary.
func (s *Store) GetResult(id tile.ID) (dispatch.PaintResult, bool, error) {
	val, closer, err := s.db.Get(tileKey(id))
	if err == pebble.ErrNotFound {
		return dispatch.PaintResult{}, false, nil
	}
	if err != nil {
		return dispatch.PaintResult{}, false, fmt.Errorf("reading paint result for %s: %w", id, err)
	}
	defer closer.Close()

	decompressed, err := Decompress(val)
	if err != nil {
		return dispatch.PaintResult{}, false, fmt.Errorf("decompressing paint result for %s: %w", id, err)
	}
	var r dispatch.PaintResult
	if err := json.Unmarshal(decompressed, &r); err != nil {
		return dispatch.PaintResult{}, false, fmt.Errorf("decoding paint result for %s: %w", id, err)
	}
	return r, true, nil
}
