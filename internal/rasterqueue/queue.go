// Package rasterqueue implements the raster tile priority queue: a
// merge-and-dedup priority selector that produces the next tile to
// rasterize across a collection of layer pairs. See the package-level
// invariants documented on RasterTilePriorityQueue.
package rasterqueue

import "github.com/tileforge/rasterpq/internal/tile"

// Pair is what a layer pair provider hands Build: one pair's queues.
type Pair struct {
	Queues LayerQueues
}

// RasterTilePriorityQueue owns a binary max-heap of PairedSetQueue under
// rasterOrderLess. It is single-shot per Build: Reset empties it, a
// subsequent Build starts over. All public operations are meant to be
// called from one owner goroutine; the queue holds no locks.
//
// Invariants maintained after every public mutation:
//   - I1: heap is valid under the current comparator.
//   - I4: an empty pair compares strictly lower than any non-empty one,
//     so Empty() need only check the root.
type RasterTilePriorityQueue struct {
	policy tile.TreePriority
	pairs  []*PairedSetQueue
}

// New constructs an empty queue. Call Build to populate it.
func New() *RasterTilePriorityQueue {
	return &RasterTilePriorityQueue{}
}

// Build records policy, constructs one PairedSetQueue per input pair, and
// heapifies. O(n).
func (q *RasterTilePriorityQueue) Build(pairs []Pair, policy tile.TreePriority) {
	q.policy = policy
	q.pairs = make([]*PairedSetQueue, 0, len(pairs))
	for _, p := range pairs {
		q.pairs = append(q.pairs, newPairedSetQueue(p.Queues, policy))
	}
	q.heapify()
}

// Reset empties the queue. A subsequent Build starts over.
func (q *RasterTilePriorityQueue) Reset() {
	q.pairs = nil
}

// Empty reports true iff there are no pairs, or the root pair is empty.
// Because the comparator ranks empties lowest, an empty root implies
// every pair is empty.
func (q *RasterTilePriorityQueue) Empty() bool {
	return len(q.pairs) == 0 || q.pairs[0].Empty()
}

// Top returns the winning pair's current tile. Precondition: !Empty().
func (q *RasterTilePriorityQueue) Top() *tile.Tile {
	if q.Empty() {
		panic("rasterqueue: Top called on an empty queue")
	}
	return q.pairs[0].Top()
}

// Pop advances the winning pair's selected iterator, re-skips duplicates,
// and re-heapifies. Precondition: !Empty().
//
// The root is extracted, mutated, and reinserted (sift-down into a
// trailing slot, mutate, sift-up) rather than mutated in place, because a
// pair's comparator key is its current top tile and changes on every pop
// — mutating at index 0 without resettling would break the heap.
func (q *RasterTilePriorityQueue) Pop() {
	if q.Empty() {
		panic("rasterqueue: Pop called on an empty queue")
	}
	n := len(q.pairs)
	root := q.pairs[0]

	q.pairs[0] = q.pairs[n-1]
	q.pairs = q.pairs[:n-1]
	if len(q.pairs) > 0 {
		q.siftDown(0)
	}

	root.Pop()

	q.pairs = append(q.pairs, root)
	q.siftUp(len(q.pairs) - 1)
}

// less reports whether the pair at index i has strictly lower raster
// priority than the pair at index j.
func (q *RasterTilePriorityQueue) less(i, j int) bool {
	return rasterOrderLess(q.pairs[i], q.pairs[j], q.policy)
}

func (q *RasterTilePriorityQueue) swap(i, j int) {
	q.pairs[i], q.pairs[j] = q.pairs[j], q.pairs[i]
}

func (q *RasterTilePriorityQueue) heapify() {
	n := len(q.pairs)
	for i := n/2 - 1; i >= 0; i-- {
		q.siftDown(i)
	}
}

// siftDown restores the heap property downward from i, where "down"
// favors the higher-priority child (this is a max-heap under
// rasterOrderLess: the winner floats to index 0).
func (q *RasterTilePriorityQueue) siftDown(i int) {
	n := len(q.pairs)
	for {
		left, right := 2*i+1, 2*i+2
		largest := i
		if left < n && q.less(largest, left) {
			largest = left
		}
		if right < n && q.less(largest, right) {
			largest = right
		}
		if largest == i {
			return
		}
		q.swap(i, largest)
		i = largest
	}
}

func (q *RasterTilePriorityQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(parent, i) {
			return
		}
		q.swap(i, parent)
		i = parent
	}
}

// DebugState returns a snapshot of every pair's iterator state, the Go
// equivalent of the source's StateAsValue.
func (q *RasterTilePriorityQueue) DebugState() []DebugState {
	states := make([]DebugState, len(q.pairs))
	for i, p := range q.pairs {
		states[i] = p.debugState()
	}
	return states
}

// Len reports how many pairs currently live in the queue (empty or not).
func (q *RasterTilePriorityQueue) Len() int {
	return len(q.pairs)
}

// SkippedTiles reports the cumulative number of shared-tile copies every
// pair has dropped via its dedup loop so far. Monotonically increasing
// within a Build; callers wanting a rate (e.g. a metrics counter) should
// track the delta between calls.
func (q *RasterTilePriorityQueue) SkippedTiles() int {
	total := 0
	for _, p := range q.pairs {
		total += p.SkippedTiles()
	}
	return total
}
