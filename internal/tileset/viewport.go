package tileset

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// tileTol is half the side length of the bounding box rtreego indexes a
// tile under, centered on the tile's pixel-space center point.
const tileTol = 0.5

// spatialTile is the rtree entry for one tile: its pixel-space center and
// a back-reference to its grid coordinates.
type spatialTile struct {
	center rtreego.Point
	i, j   int32
}

func (s *spatialTile) Bounds() rtreego.Rect {
	return s.center.ToRect(tileTol)
}

// Viewport answers distance-to-visible queries for a tile grid from the
// camera center, and keeps an rtree spatial index over each tile's
// pixel-space center for nearest-tile queries, the way the teacher's
// street network indexes road geometry for nearest-neighbor snapping.
type Viewport struct {
	tree     *rtreego.Rtree
	tileSize float64
	center   rtreego.Point
}

// NewViewport builds a spatial index over a gridWidth x gridHeight tile
// grid, each tile tileSize pixels square, and records the camera's
// center in the same pixel space.
func NewViewport(gridWidth, gridHeight int32, tileSize float64, cameraX, cameraY float64) *Viewport {
	tree := rtreego.NewTree(2, 25, 50)
	for i := int32(0); i < gridWidth; i++ {
		for j := int32(0); j < gridHeight; j++ {
			center := rtreego.Point{
				(float64(i) + 0.5) * tileSize,
				(float64(j) + 0.5) * tileSize,
			}
			tree.Insert(&spatialTile{center: center, i: i, j: j})
		}
	}
	return &Viewport{tree: tree, tileSize: tileSize, center: rtreego.Point{cameraX, cameraY}}
}

// DistanceToVisible returns the pixel-space Euclidean distance from the
// camera center to tile (i, j)'s center. This is a closed-form
// computation rather than an rtree query — the rtree is for answering
// "which tiles are near the camera" (NearestTiles), not "how far is this
// specific tile", which doesn't need a spatial index to derive.
func (v *Viewport) DistanceToVisible(i, j int32) float32 {
	dx := (float64(i)+0.5)*v.tileSize - v.center[0]
	dy := (float64(j)+0.5)*v.tileSize - v.center[1]
	return float32(math.Hypot(dx, dy))
}

// NearestTiles returns up to k tiles' grid coordinates nearest the
// camera, used by centerCell to pick the cell a SpiralQueue starts from.
func (v *Viewport) NearestTiles(k int) [][2]int32 {
	results := v.tree.NearestNeighbors(k, v.center)
	coords := make([][2]int32, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		st := r.(*spatialTile)
		coords = append(coords, [2]int32{st.i, st.j})
	}
	return coords
}
