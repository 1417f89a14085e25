package raptor

import "math/rand"

// FrequencyOffsets is a Monte-Carlo draw of per-entry boarding phase
// offsets: for pattern p, trip t, frequency entry e, an integer offset in
// [0, HeadwaySeconds[e]). It is owned by the SweepDriver and regenerated by
// Randomize before each RANDOM draw; BEST_CASE and WORST_CASE bounds never
// consult it.
//
// math/rand is used directly (no third-party PRNG) — the same choice the
// rest of this pack's simulation code makes (jwmdev-brt08's sim.StartRunner
// seeds a stdlib *rand.Rand per run rather than pulling in an external
// generator), and no example repo in this retrieval pack imports one.
type FrequencyOffsets struct {
	// offsets[pattern][trip][entry]
	offsets [][][]int
	rng     *rand.Rand
}

// NewFrequencyOffsets allocates the ragged offsets structure sized to
// layer's patterns/trips/entries, seeded for reproducibility. Pass a fixed
// seed to make a sweep's RANDOM draws byte-identical across runs.
func NewFrequencyOffsets(layer *TransitLayer, seed int64) *FrequencyOffsets {
	f := &FrequencyOffsets{
		offsets: make([][][]int, len(layer.Patterns)),
		rng:     rand.New(rand.NewSource(seed)),
	}
	for pi, p := range layer.Patterns {
		f.offsets[pi] = make([][]int, len(p.Trips))
		for ti, trip := range p.Trips {
			if trip.HeadwaySeconds == nil {
				continue
			}
			f.offsets[pi][ti] = make([]int, len(trip.HeadwaySeconds))
		}
	}
	return f
}

// Randomize fills every offset with a fresh uniform draw in
// [0, HeadwaySeconds[entry]).
func (f *FrequencyOffsets) Randomize(layer *TransitLayer) {
	for pi, p := range layer.Patterns {
		for ti, trip := range p.Trips {
			if trip.HeadwaySeconds == nil {
				continue
			}
			for e, headway := range trip.HeadwaySeconds {
				if headway <= 0 {
					f.offsets[pi][ti][e] = 0
					continue
				}
				f.offsets[pi][ti][e] = f.rng.Intn(headway)
			}
		}
	}
}

// At returns the current offset for pattern/trip/entry.
func (f *FrequencyOffsets) At(pattern, trip, entry int) int {
	return f.offsets[pattern][trip][entry]
}
