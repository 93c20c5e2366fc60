package rasterqueue

import "github.com/tileforge/rasterpq/internal/tile"

// LayerQueues is what a layer pair provider hands the core: up to two
// already-constructed tiling queues, one per tree. Either may be nil when
// that tree has no layer in this pair.
type LayerQueues struct {
	Active  TilingQueue
	Pending TilingQueue
}

// PairedSetQueue wraps one layer pair's two iterators, exposing a single
// merged top/pop/empty view that deduplicates tiles shared between the two
// trees.
type PairedSetQueue struct {
	active  TilingQueue
	pending TilingQueue
	hasBoth bool
	policy  tile.TreePriority

	// returned guards invariant I3 (no tile emitted twice by the same
	// pair). It is a debug aid, not load-bearing for correctness in a
	// release build, so it costs one map lookup per pop.
	returned map[tile.ID]bool

	// skippedTotal counts shared-tile copies this pair has dropped via
	// skipTilesReturnedByTwin, surfaced to callers (e.g. a metrics
	// counter) via SkippedTiles.
	skippedTotal int
}

func newPairedSetQueue(q LayerQueues, policy tile.TreePriority) *PairedSetQueue {
	p := &PairedSetQueue{
		active:   q.Active,
		pending:  q.Pending,
		hasBoth:  q.Active != nil && q.Pending != nil,
		policy:   policy,
		returned: make(map[tile.ID]bool),
	}
	p.skippedTotal += p.skipTilesReturnedByTwin()
	return p
}

// SkippedTiles reports how many shared-tile copies this pair has dropped
// so far via skipTilesReturnedByTwin.
func (p *PairedSetQueue) SkippedTiles() int {
	return p.skippedTotal
}

func sideEmpty(q TilingQueue) bool {
	return q == nil || q.Empty()
}

// Empty reports true iff both iterators are absent or drained.
func (p *PairedSetQueue) Empty() bool {
	return sideEmpty(p.active) && sideEmpty(p.pending)
}

// nextTileIteratorTree picks which side should be read/advanced next. If
// only one side has tiles, that side wins outright; otherwise the arbiter
// decides.
func (p *PairedSetQueue) nextTileIteratorTree() tile.WhichTree {
	activeHas := !sideEmpty(p.active)
	pendingHas := !sideEmpty(p.pending)
	switch {
	case activeHas && !pendingHas:
		return tile.ActiveTree
	case pendingHas && !activeHas:
		return tile.PendingTree
	default:
		return higherPriorityTree(p.policy, p.active, p.pending, nil)
	}
}

func (p *PairedSetQueue) queue(which tile.WhichTree) TilingQueue {
	if which == tile.ActiveTree {
		return p.active
	}
	return p.pending
}

// Top returns the current selected tile. Precondition: !Empty().
func (p *PairedSetQueue) Top() *tile.Tile {
	which := p.nextTileIteratorTree()
	q := p.queue(which)
	t := q.Top()
	if p.returned[t.ID] {
		panic("rasterqueue: tile returned twice from the same pair")
	}
	return t
}

// selectedTopPriority returns the priority of the currently-selected
// side's top tile, per policy, for use by the outer comparator.
func (p *PairedSetQueue) selectedTopPriority() (tile.Priority, *tile.Tile) {
	which := p.nextTileIteratorTree()
	t := p.queue(which).Top()
	return t.PriorityForTreePriority(p.policy), t
}

// Pop advances the selected side past its top tile and re-establishes
// invariant I2 by re-running the skip loop.
func (p *PairedSetQueue) Pop() {
	which := p.nextTileIteratorTree()
	q := p.queue(which)
	t := q.Top()
	p.returned[t.ID] = true
	q.Pop()
	if p.hasBoth {
		p.skippedTotal += p.skipTilesReturnedByTwin()
	}
}

// skipTilesReturnedByTwin drops copies of a shared tile sitting on the
// "wrong" side's top, i.e. the side the arbiter says is not the rightful
// emitter of that shared tile. It terminates because each loop iteration
// consumes one tile from a finite iterator. It returns how many tiles it
// dropped.
func (p *PairedSetQueue) skipTilesReturnedByTwin() int {
	skipped := 0
	for !p.Empty() {
		ts := p.nextTileIteratorTree()
		q := p.queue(ts)
		t := q.Top()
		if !t.IsShared() {
			return skipped
		}
		owner := higherPriorityTree(p.policy, nil, nil, t)
		if owner == ts {
			return skipped
		}
		q.Pop()
		skipped++
	}
	return skipped
}

// DebugState is the Go equivalent of the source's StateAsValue: a snapshot
// of this pair's iterator state for a debug/inspection endpoint. Each
// side reports its own HasTile — the source's copy-paste bug (the pending
// dictionary reporting the active side's has_tile) is not reproduced.
type DebugState struct {
	HasActive      bool   `json:"has_active"`
	HasPending     bool   `json:"has_pending"`
	ActiveHasTile  bool   `json:"active_has_tile"`
	PendingHasTile bool   `json:"pending_has_tile"`
	SelectedTree   string `json:"selected_tree,omitempty"`
}

func (p *PairedSetQueue) debugState() DebugState {
	s := DebugState{
		HasActive:      p.active != nil,
		HasPending:     p.pending != nil,
		ActiveHasTile:  !sideEmpty(p.active),
		PendingHasTile: !sideEmpty(p.pending),
	}
	if !p.Empty() {
		s.SelectedTree = p.nextTileIteratorTree().String()
	}
	return s
}
