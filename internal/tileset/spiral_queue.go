// Package tileset provides one concrete, swappable realization of the
// rasterqueue package's external collaborators: a tile grid, a
// spiral-order iterator over it, and a viewport that supplies real
// distance-to-visible values via an rtree spatial index.
package tileset

import (
	"github.com/tileforge/rasterpq/internal/tile"
)

// Source supplies the tile at a grid coordinate. A layer owns one Source
// per tree.
type Source interface {
	TileAt(i, j int32) *tile.Tile
}

// SpiralQueue enumerates a rectangular tile grid outward from a center
// cell in expanding rings — the "spiral traversal" the core spec warns
// does not guarantee shared tiles surface first. It implements
// rasterqueue.TilingQueue.
type SpiralQueue struct {
	source Source
	order  [][2]int32
	i      int
}

// NewSpiralQueue builds the ring order for a width x height grid centered
// at (centerI, centerJ) and binds it to source. When prioritizeLowRes is
// set, cells within the same ring are visited in the opposite winding
// order, mirroring how the source's "prioritize_low_res" construction
// flag reshapes traversal rather than the priority comparison itself.
func NewSpiralQueue(source Source, width, height, centerI, centerJ int32, prioritizeLowRes bool) *SpiralQueue {
	return &SpiralQueue{source: source, order: spiralOrder(width, height, centerI, centerJ, prioritizeLowRes)}
}

func (q *SpiralQueue) Empty() bool {
	return q.i >= len(q.order)
}

func (q *SpiralQueue) Top() *tile.Tile {
	c := q.order[q.i]
	return q.source.TileAt(c[0], c[1])
}

func (q *SpiralQueue) Pop() {
	q.i++
}

// spiralOrder returns grid coordinates in rings of increasing Chebyshev
// distance from the center, clipped to [0, width) x [0, height).
func spiralOrder(width, height, centerI, centerJ int32, reverseWinding bool) [][2]int32 {
	inBounds := func(i, j int32) bool {
		return i >= 0 && i < width && j >= 0 && j < height
	}

	order := make([][2]int32, 0, width*height)
	if inBounds(centerI, centerJ) {
		order = append(order, [2]int32{centerI, centerJ})
	}

	maxRadius := width + height
	for r := int32(1); r <= maxRadius; r++ {
		ring := ringCells(centerI, centerJ, r)
		if reverseWinding {
			for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
				ring[i], ring[j] = ring[j], ring[i]
			}
		}
		for _, c := range ring {
			if inBounds(c[0], c[1]) {
				order = append(order, c)
			}
		}
		if len(order) >= int(width*height) {
			break
		}
	}
	return order
}

// ringCells returns the cells exactly Chebyshev-distance r from the
// center, walking the perimeter of the (2r+1)x(2r+1) square clockwise
// from its top-left corner.
func ringCells(centerI, centerJ, r int32) [][2]int32 {
	cells := make([][2]int32, 0, 8*r)
	top, bottom := centerJ-r, centerJ+r
	left, right := centerI-r, centerI+r

	for i := left; i <= right; i++ {
		cells = append(cells, [2]int32{i, top})
	}
	for j := top + 1; j <= bottom; j++ {
		cells = append(cells, [2]int32{right, j})
	}
	for i := right - 1; i >= left; i-- {
		cells = append(cells, [2]int32{i, bottom})
	}
	for j := bottom - 1; j > top; j-- {
		cells = append(cells, [2]int32{left, j})
	}
	return cells
}
