package rasterqueue

import "github.com/tileforge/rasterpq/internal/tile"

// TilingQueue is the one true interface boundary the core depends on: a
// single tree's tile iterator. No guarantee that shared tiles surface
// first (the "spiral" traversal quirk).
type TilingQueue interface {
	Empty() bool
	Top() *tile.Tile
	Pop()
}

// higherPriorityTree decides which of the active/pending sides a pair
// should currently draw from. It is pure and total.
//
// sharedTile, when non-nil, short-circuits the lookup: the caller already
// holds a shared tile and only wants to know which tree would have
// emitted it, so both of that tile's own priorities are compared instead
// of the two iterators' tops. When sharedTile is nil, active and pending
// must both be non-nil and non-empty.
func higherPriorityTree(policy tile.TreePriority, active, pending TilingQueue, sharedTile *tile.Tile) tile.WhichTree {
	switch policy {
	case tile.NewContentTakesPriority:
		return tile.PendingTree

	case tile.SamePriorityForBothTrees:
		activeP, pendingP := topPriorities(active, pending, sharedTile, policy)
		if activeP.IsHigherPriorityThan(pendingP) {
			return tile.ActiveTree
		}
		return tile.PendingTree

	case tile.SmoothnessTakesPriority:
		var activeTop, pendingTop *tile.Tile
		if sharedTile != nil {
			activeTop, pendingTop = sharedTile, sharedTile
		} else {
			activeTop, pendingTop = active.Top(), pending.Top()
		}
		if activeTop.Priority(tile.ActiveTree).Bin == tile.Eventually &&
			pendingTop.Priority(tile.PendingTree).Bin == tile.Now {
			return tile.PendingTree
		}
		return tile.ActiveTree

	default:
		return tile.ActiveTree
	}
}

// topPriorities resolves active-top's priority(ACTIVE) and pending-top's
// priority(PENDING), from either the shared-tile short-circuit or the two
// iterators' current tops.
func topPriorities(active, pending TilingQueue, sharedTile *tile.Tile, _ tile.TreePriority) (tile.Priority, tile.Priority) {
	if sharedTile != nil {
		return sharedTile.Priority(tile.ActiveTree), sharedTile.Priority(tile.PendingTree)
	}
	return active.Top().Priority(tile.ActiveTree), pending.Top().Priority(tile.PendingTree)
}
