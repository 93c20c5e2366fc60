package rasterqueue

import "github.com/tileforge/rasterpq/internal/tile"

// rasterOrderLess reports whether a has strictly lower raster priority than
// b, i.e. a ≺ b in heap terms (a should sift below b). It is a strict weak
// order parameterized by policy; it must not capture mutable state, so it
// is cheap to reconstruct per heap operation.
func rasterOrderLess(a, b *PairedSetQueue, policy tile.TreePriority) bool {
	aEmpty, bEmpty := a.Empty(), b.Empty()
	if aEmpty || bEmpty {
		// Empty dominance: an empty pair is lowest. Equal-empty pairs are
		// equivalent.
		return aEmpty && !bEmpty
	}

	pa, tileA := a.selectedTopPriority()
	pb, tileB := b.selectedTopPriority()

	if policy == tile.SmoothnessTakesPriority && pa.Bin == tile.Eventually && pb.Bin == tile.Eventually {
		aPendingNow := tileA.Priority(tile.PendingTree).Bin == tile.Now
		bPendingNow := tileB.Priority(tile.PendingTree).Bin == tile.Now
		if aPendingNow != bPendingNow {
			return bPendingNow
		}
		// both or neither NOW on pending: fall through to steps 4/5
	}

	if pa.Bin == pb.Bin && pa.Resolution != pb.Resolution {
		if pa.Resolution == tile.NonIdealResolution {
			return true
		}
		if pb.Resolution == tile.NonIdealResolution {
			return false
		}
		if policy == tile.SmoothnessTakesPriority {
			// low beats high
			return pa.Resolution == tile.HighResolution
		}
		// high beats low in every other policy
		return pa.Resolution == tile.LowResolution
	}

	return pb.IsHigherPriorityThan(pa)
}
