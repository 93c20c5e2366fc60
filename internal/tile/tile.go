// Package tile holds the data types the raster tile priority queue reasons
// about: tile identity, per-tree priorities, and the scheduling policy
// enums. Nothing in this package knows how to enumerate tiles or compute
// distances — that lives in tileset.
package tile

import "fmt"

// WhichTree names one of the two tile trees a pair can be routed to.
type WhichTree int

const (
	ActiveTree WhichTree = iota
	PendingTree
)

func (t WhichTree) String() string {
	switch t {
	case ActiveTree:
		return "active"
	case PendingTree:
		return "pending"
	default:
		return fmt.Sprintf("WhichTree(%d)", int(t))
	}
}

// Bin is the coarse urgency class of a tile. Ordered NOW > SOON > EVENTUALLY;
// the numeric value increases with priority so a plain integer compare
// answers "higher bin".
type Bin int

const (
	Eventually Bin = iota
	Soon
	Now
)

func (b Bin) String() string {
	switch b {
	case Now:
		return "NOW"
	case Soon:
		return "SOON"
	case Eventually:
		return "EVENTUALLY"
	default:
		return fmt.Sprintf("Bin(%d)", int(b))
	}
}

// Resolution is the tile's rendering scale class.
type Resolution int

const (
	HighResolution Resolution = iota
	LowResolution
	NonIdealResolution
)

func (r Resolution) String() string {
	switch r {
	case HighResolution:
		return "HIGH"
	case LowResolution:
		return "LOW"
	case NonIdealResolution:
		return "NON_IDEAL"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// TreePriority is the global scheduler policy, a constructor-time snapshot
// for the lifetime of one RasterTilePriorityQueue build.
type TreePriority int

const (
	SmoothnessTakesPriority TreePriority = iota
	NewContentTakesPriority
	SamePriorityForBothTrees
)

func (p TreePriority) String() string {
	switch p {
	case SmoothnessTakesPriority:
		return "SMOOTHNESS_TAKES_PRIORITY"
	case NewContentTakesPriority:
		return "NEW_CONTENT_TAKES_PRIORITY"
	case SamePriorityForBothTrees:
		return "SAME_PRIORITY_FOR_BOTH_TREES"
	default:
		return fmt.Sprintf("TreePriority(%d)", int(p))
	}
}

// Priority is the tuple (bin, resolution, distance) with a total order:
// higher bin wins, then lower distance. Resolution is deliberately not
// compared here — the comparator in rasterqueue handles resolution
// explicitly so the override rules in its step 4 stay in one place.
type Priority struct {
	Bin        Bin
	Resolution Resolution
	Distance   float32
}

// IsHigherPriorityThan reports whether p should be scheduled ahead of other.
func (p Priority) IsHigherPriorityThan(other Priority) bool {
	if p.Bin != other.Bin {
		return p.Bin > other.Bin
	}
	return p.Distance < other.Distance
}

// ID identifies a tile independent of which tree references it: the layer
// it belongs to and its grid coordinates within that layer.
type ID struct {
	LayerID uint64
	I, J    int32
}

func (id ID) String() string {
	return fmt.Sprintf("%d:%d,%d", id.LayerID, id.I, id.J)
}

// Tile is the external collaborator the raster queue core depends on: an
// identity plus two per-tree priority records and a shared flag.
type Tile struct {
	ID              ID
	ActivePriority  Priority
	PendingPriority Priority
	Shared          bool
}

// Priority returns this tile's priority record for the given tree.
func (t *Tile) Priority(which WhichTree) Priority {
	if which == ActiveTree {
		return t.ActivePriority
	}
	return t.PendingPriority
}

// PriorityForTreePriority selects priority(ACTIVE) for SmoothnessTakesPriority
// and SamePriorityForBothTrees, and priority(PENDING) for
// NewContentTakesPriority, per the comparator's documented use.
func (t *Tile) PriorityForTreePriority(policy TreePriority) Priority {
	if policy == NewContentTakesPriority {
		return t.PendingPriority
	}
	return t.ActivePriority
}

// IsShared reports whether this tile is simultaneously referenced by both
// trees of its owning pair.
func (t *Tile) IsShared() bool {
	return t.Shared
}
