package raptor

// LinkedPointSet is the set of off-network target points propagation maps
// stop arrival times onto. It is an external collaborator: this core only
// consumes precomputed stop-to-target walk trees.
type LinkedPointSet interface {
	NumTargets() int
	// StopTrees returns the flattened (targetIndex, walkTimeSeconds) pairs
	// precomputed from the street network for stop s.
	StopTrees(stop int) []TargetWalk
}

// TargetWalk is one precomputed walk leg from a transit stop to an
// off-network target point.
type TargetWalk struct {
	TargetIndex     int
	WalkTimeSeconds int
}

// PointSetTimes is the non-transit (walk/bike/drive-only) travel time to
// every target, independent of transit. An external collaborator.
type PointSetTimes interface {
	GetTravelTimeToPoint(i int) int // seconds, or UNREACHED
}

// DoPropagation maps arrival times at transit stops onto off-network
// targets, overlaying only improvements into timesAtTargets. Only stops in
// stopsTouchedThisSearch (the per-search, not per-round, bitset) are
// consulted: a stop whose arrival never improved across any round of the
// search cannot contribute a new, better propagated time.
func DoPropagation(timesAtTransitStops []int, stopsTouchedThisSearch *BitSet, targets LinkedPointSet, timesAtTargets []int) error {
	it := NewBitSetIterator(stopsTouchedThisSearch)
	for it.HasNext() {
		s := it.Next()
		arrival := timesAtTransitStops[s]
		if arrival == UNREACHED {
			continue
		}
		for _, tw := range targets.StopTrees(s) {
			propagated := arrival + tw.WalkTimeSeconds
			if propagated < 0 {
				return newInvariantError("DoPropagation", s, "propagated time is negative")
			}
			if propagated < timesAtTargets[tw.TargetIndex] {
				timesAtTargets[tw.TargetIndex] = propagated
			}
		}
	}
	return nil
}
