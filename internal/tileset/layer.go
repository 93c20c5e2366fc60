package tileset

import (
	"github.com/tileforge/rasterpq/internal/rasterqueue"
	"github.com/tileforge/rasterpq/internal/tile"
)

// TileGrid is a concrete Source backed by a dense grid of tiles, with an
// overlay of shared-tile coordinates (cells whose content is identical on
// both the active and pending tree of their owning pair).
type TileGrid struct {
	layerID     uint64
	width       int32
	height      int32
	resolution  tile.Resolution
	viewport    *Viewport
	sharedCells map[[2]int32]bool
	binFor      func(dist float32) tile.Bin
}

// NewTileGrid builds a grid whose per-tile bin is derived from distance
// thresholds (near/mid cutoffs in the same pixel units as the viewport)
// and whose distance comes from an rtree-backed Viewport.
func NewTileGrid(layerID uint64, width, height int32, resolution tile.Resolution, viewport *Viewport, nearCutoff, midCutoff float32, shared [][2]int32) *TileGrid {
	sharedCells := make(map[[2]int32]bool, len(shared))
	for _, c := range shared {
		sharedCells[c] = true
	}
	return &TileGrid{
		layerID:     layerID,
		width:       width,
		height:      height,
		resolution:  resolution,
		viewport:    viewport,
		sharedCells: sharedCells,
		binFor: func(dist float32) tile.Bin {
			switch {
			case dist <= nearCutoff:
				return tile.Now
			case dist <= midCutoff:
				return tile.Soon
			default:
				return tile.Eventually
			}
		},
	}
}

func (g *TileGrid) TileAt(i, j int32) *tile.Tile {
	dist := g.viewport.DistanceToVisible(i, j)
	p := tile.Priority{Bin: g.binFor(dist), Resolution: g.resolution, Distance: dist}
	return &tile.Tile{
		ID:              tile.ID{LayerID: g.layerID, I: i, J: j},
		ActivePriority:  p,
		PendingPriority: p,
		Shared:          g.sharedCells[[2]int32{i, j}],
	}
}

// LayerPair is the concrete layer-pair provider from §6: an optional
// active and pending layer, each able to produce a raster queue.
type LayerPair struct {
	Active  *TileGrid
	Pending *TileGrid
}

// CreateRasterQueue builds the pair's merged LayerQueues, one SpiralQueue
// per present side, both centered on the same viewport-implied camera
// cell so the two trees' spirals stay in lockstep.
func (p LayerPair) CreateRasterQueue(prioritizeLowRes bool) rasterqueue.LayerQueues {
	var out rasterqueue.LayerQueues
	if p.Active != nil {
		ci, cj := centerCell(p.Active)
		out.Active = NewSpiralQueue(p.Active, p.Active.width, p.Active.height, ci, cj, prioritizeLowRes)
	}
	if p.Pending != nil {
		ci, cj := centerCell(p.Pending)
		out.Pending = NewSpiralQueue(p.Pending, p.Pending.width, p.Pending.height, ci, cj, prioritizeLowRes)
	}
	return out
}

// centerCell picks the grid cell a spiral traversal should start from: the
// tile nearest the camera, resolved through the viewport's rtree index
// rather than assumed to be the grid's geometric center (the camera need
// not be centered over the grid).
func centerCell(g *TileGrid) (int32, int32) {
	nearest := g.viewport.NearestTiles(1)
	if len(nearest) == 0 {
		return g.width / 2, g.height / 2
	}
	return nearest[0][0], nearest[0][1]
}

// BuildPairs turns a set of LayerPairs into rasterqueue.Pair values ready
// for RasterTilePriorityQueue.Build, threading the prioritizeLowRes flag
// that the source spec ties to the SMOOTHNESS_TAKES_PRIORITY policy.
func BuildPairs(pairs []LayerPair, policy tile.TreePriority) []rasterqueue.Pair {
	prioritizeLowRes := policy == tile.SmoothnessTakesPriority
	out := make([]rasterqueue.Pair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, rasterqueue.Pair{Queues: p.CreateRasterQueue(prioritizeLowRes)})
	}
	return out
}
