package rasterqueue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tileforge/rasterpq/internal/rasterqueue"
	"github.com/tileforge/rasterpq/internal/tile"
)

// sliceQueue is a minimal TilingQueue over a fixed slice, used to drive
// the core with deterministic, literal scenarios instead of a real
// spiral iterator.
type sliceQueue struct {
	tiles []*tile.Tile
	i     int
}

func newSliceQueue(tiles ...*tile.Tile) *sliceQueue {
	return &sliceQueue{tiles: tiles}
}

func (s *sliceQueue) Empty() bool     { return s.i >= len(s.tiles) }
func (s *sliceQueue) Top() *tile.Tile { return s.tiles[s.i] }
func (s *sliceQueue) Pop()            { s.i++ }

func mkTile(layerID uint64, i, j int32, bin tile.Bin, res tile.Resolution, dist float32) *tile.Tile {
	p := tile.Priority{Bin: bin, Resolution: res, Distance: dist}
	return &tile.Tile{ID: tile.ID{LayerID: layerID, I: i, J: j}, ActivePriority: p, PendingPriority: p}
}

func TestSinglePairActiveOnlyOrderedByDistance(t *testing.T) {
	a := mkTile(1, 0, 0, tile.Now, tile.HighResolution, 1.0)
	b := mkTile(1, 0, 1, tile.Now, tile.HighResolution, 2.0)
	c := mkTile(1, 0, 2, tile.Now, tile.HighResolution, 3.0)

	q := rasterqueue.New()
	q.Build([]rasterqueue.Pair{
		{Queues: rasterqueue.LayerQueues{Active: newSliceQueue(a, b, c)}},
	}, tile.SamePriorityForBothTrees)

	for _, want := range []*tile.Tile{a, b, c} {
		assert.False(t, q.Empty())
		assert.Equal(t, want.ID, q.Top().ID)
		q.Pop()
	}
	assert.True(t, q.Empty())
}

func TestSmoothnessPromotesPendingWhenActiveEventuallyAndPendingNow(t *testing.T) {
	// Pair P1: active EVENTUALLY, pending NOW.
	p1Active := &tile.Tile{
		ID:              tile.ID{LayerID: 1, I: 0, J: 0},
		ActivePriority:  tile.Priority{Bin: tile.Eventually, Resolution: tile.HighResolution, Distance: 1.0},
		PendingPriority: tile.Priority{Bin: tile.Eventually, Resolution: tile.HighResolution, Distance: 1.0},
	}
	p1Pending := &tile.Tile{
		ID:              tile.ID{LayerID: 1, I: 0, J: 1},
		ActivePriority:  tile.Priority{Bin: tile.Now, Resolution: tile.HighResolution, Distance: 1.0},
		PendingPriority: tile.Priority{Bin: tile.Now, Resolution: tile.HighResolution, Distance: 1.0},
	}
	// Pair P2: active SOON, pending EVENTUALLY.
	p2Active := mkTile(2, 0, 0, tile.Soon, tile.HighResolution, 1.0)
	p2Pending := mkTile(2, 0, 1, tile.Eventually, tile.HighResolution, 1.0)

	q := rasterqueue.New()
	q.Build([]rasterqueue.Pair{
		{Queues: rasterqueue.LayerQueues{
			Active:  newSliceQueue(p1Active),
			Pending: newSliceQueue(p1Pending),
		}},
		{Queues: rasterqueue.LayerQueues{
			Active:  newSliceQueue(p2Active),
			Pending: newSliceQueue(p2Pending),
		}},
	}, tile.SmoothnessTakesPriority)

	assert.Equal(t, p1Pending.ID, q.Top().ID)
	q.Pop()
	assert.Equal(t, p2Active.ID, q.Top().ID)
}

func TestSharedTileEmittedOnce(t *testing.T) {
	shared := &tile.Tile{
		ID:              tile.ID{LayerID: 1, I: 0, J: 0},
		ActivePriority:  tile.Priority{Bin: tile.Now, Resolution: tile.HighResolution, Distance: 1.0},
		PendingPriority: tile.Priority{Bin: tile.Now, Resolution: tile.HighResolution, Distance: 2.0},
		Shared:          true,
	}
	activeOnly := mkTile(1, 0, 1, tile.Soon, tile.HighResolution, 5.0)
	pendingOnly := mkTile(1, 0, 2, tile.Soon, tile.HighResolution, 5.0)

	q := rasterqueue.New()
	q.Build([]rasterqueue.Pair{
		{Queues: rasterqueue.LayerQueues{
			Active:  newSliceQueue(shared, activeOnly),
			Pending: newSliceQueue(shared, pendingOnly),
		}},
	}, tile.SamePriorityForBothTrees)

	seen := map[tile.ID]int{}
	for !q.Empty() {
		seen[q.Top().ID]++
		q.Pop()
	}
	assert.Equal(t, 1, seen[shared.ID])
	assert.Equal(t, 1, seen[activeOnly.ID])
	assert.Equal(t, 1, seen[pendingOnly.ID])
}

func TestSharedTileDedupIsCountedInSkippedTiles(t *testing.T) {
	shared := &tile.Tile{
		ID:              tile.ID{LayerID: 1, I: 0, J: 0},
		ActivePriority:  tile.Priority{Bin: tile.Now, Resolution: tile.HighResolution, Distance: 1.0},
		PendingPriority: tile.Priority{Bin: tile.Now, Resolution: tile.HighResolution, Distance: 2.0},
		Shared:          true,
	}
	activeOnly := mkTile(1, 0, 1, tile.Soon, tile.HighResolution, 5.0)
	pendingOnly := mkTile(1, 0, 2, tile.Soon, tile.HighResolution, 5.0)

	q := rasterqueue.New()
	q.Build([]rasterqueue.Pair{
		{Queues: rasterqueue.LayerQueues{
			Active:  newSliceQueue(shared, activeOnly),
			Pending: newSliceQueue(shared, pendingOnly),
		}},
	}, tile.SamePriorityForBothTrees)

	assert.Equal(t, 0, q.SkippedTiles(), "no pop yet, nothing skipped")

	for !q.Empty() {
		q.Pop()
	}
	assert.Equal(t, 1, q.SkippedTiles(), "the twin's copy of the shared tile should be the only skip")
}

func TestSmoothnessPrefersLowResolutionOnTie(t *testing.T) {
	low := mkTile(1, 0, 0, tile.Soon, tile.LowResolution, 5.0)
	high := mkTile(1, 0, 1, tile.Soon, tile.HighResolution, 1.0)

	q := rasterqueue.New()
	q.Build([]rasterqueue.Pair{
		{Queues: rasterqueue.LayerQueues{Active: newSliceQueue(low)}},
		{Queues: rasterqueue.LayerQueues{Active: newSliceQueue(high)}},
	}, tile.SmoothnessTakesPriority)

	assert.Equal(t, low.ID, q.Top().ID)
}

func TestNonIdealResolutionAlwaysLoses(t *testing.T) {
	for _, policy := range []tile.TreePriority{
		tile.SmoothnessTakesPriority, tile.NewContentTakesPriority, tile.SamePriorityForBothTrees,
	} {
		nonIdeal := mkTile(1, 0, 0, tile.Soon, tile.NonIdealResolution, 0.1)
		high := mkTile(1, 0, 1, tile.Soon, tile.HighResolution, 100.0)

		q := rasterqueue.New()
		q.Build([]rasterqueue.Pair{
			{Queues: rasterqueue.LayerQueues{Active: newSliceQueue(nonIdeal)}},
			{Queues: rasterqueue.LayerQueues{Active: newSliceQueue(high)}},
		}, policy)

		assert.Equal(t, high.ID, q.Top().ID, "policy %v", policy)
	}
}

func TestEmptyPairNeverSurfacesWhileOthersRemain(t *testing.T) {
	p1 := mkTile(1, 0, 0, tile.Now, tile.HighResolution, 1.0)
	p3 := mkTile(3, 0, 0, tile.Soon, tile.HighResolution, 1.0)

	q := rasterqueue.New()
	q.Build([]rasterqueue.Pair{
		{Queues: rasterqueue.LayerQueues{Active: newSliceQueue(p1)}},
		{Queues: rasterqueue.LayerQueues{}}, // P2: empty at Build
		{Queues: rasterqueue.LayerQueues{Active: newSliceQueue(p3)}},
	}, tile.SamePriorityForBothTrees)

	var got []tile.ID
	for !q.Empty() {
		got = append(got, q.Top().ID)
		q.Pop()
	}
	assert.ElementsMatch(t, []tile.ID{p1.ID, p3.ID}, got)
	assert.True(t, q.Empty())
}

func TestTopIsIdempotentWithoutPop(t *testing.T) {
	a := mkTile(1, 0, 0, tile.Now, tile.HighResolution, 1.0)
	q := rasterqueue.New()
	q.Build([]rasterqueue.Pair{
		{Queues: rasterqueue.LayerQueues{Active: newSliceQueue(a)}},
	}, tile.SamePriorityForBothTrees)

	first := q.Top()
	second := q.Top()
	assert.Equal(t, first.ID, second.ID)
}

func TestNewContentPolicyAlwaysEmitsFromPendingWhenBothSidesPresent(t *testing.T) {
	active := mkTile(1, 0, 0, tile.Now, tile.HighResolution, 0.1)
	pending := mkTile(1, 0, 1, tile.Eventually, tile.LowResolution, 99.0)

	q := rasterqueue.New()
	q.Build([]rasterqueue.Pair{
		{Queues: rasterqueue.LayerQueues{
			Active:  newSliceQueue(active),
			Pending: newSliceQueue(pending),
		}},
	}, tile.NewContentTakesPriority)

	assert.Equal(t, pending.ID, q.Top().ID)
	q.Pop()
	assert.Equal(t, active.ID, q.Top().ID)
}
