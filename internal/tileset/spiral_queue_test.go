package tileset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tileforge/rasterpq/internal/tile"
	"github.com/tileforge/rasterpq/internal/tileset"
)

func TestSpiralQueueVisitsEveryCellExactlyOnce(t *testing.T) {
	viewport := tileset.NewViewport(5, 5, 16.0, 40.0, 40.0)
	grid := tileset.NewTileGrid(1, 5, 5, tile.HighResolution, viewport, 10, 30, nil)
	q := tileset.NewSpiralQueue(grid, 5, 5, 2, 2, false)

	seen := make(map[[2]int32]bool)
	for !q.Empty() {
		t := q.Top()
		seen[[2]int32{t.ID.I, t.ID.J}] = true
		q.Pop()
	}
	assert.Len(t, seen, 25)
}

func TestSpiralQueueCenterComesFirst(t *testing.T) {
	viewport := tileset.NewViewport(3, 3, 16.0, 24.0, 24.0)
	grid := tileset.NewTileGrid(1, 3, 3, tile.HighResolution, viewport, 10, 30, nil)
	q := tileset.NewSpiralQueue(grid, 3, 3, 1, 1, false)

	first := q.Top()
	assert.Equal(t, int32(1), first.ID.I)
	assert.Equal(t, int32(1), first.ID.J)
}

func TestTileGridMarksSharedCells(t *testing.T) {
	viewport := tileset.NewViewport(3, 3, 16.0, 24.0, 24.0)
	grid := tileset.NewTileGrid(1, 3, 3, tile.HighResolution, viewport, 10, 30, [][2]int32{{1, 1}})

	assert.True(t, grid.TileAt(1, 1).IsShared())
	assert.False(t, grid.TileAt(0, 0).IsShared())
}

func TestTileGridBinThresholds(t *testing.T) {
	viewport := tileset.NewViewport(10, 10, 16.0, 88.0, 88.0)
	grid := tileset.NewTileGrid(1, 10, 10, tile.HighResolution, viewport, 5, 50, nil)

	near := grid.TileAt(5, 5) // at the camera cell, distance ~0
	assert.Equal(t, tile.Now, near.Priority(tile.ActiveTree).Bin)

	far := grid.TileAt(0, 0)
	assert.Equal(t, tile.Eventually, far.Priority(tile.ActiveTree).Bin)
}
