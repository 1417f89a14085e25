package raptor

// ScheduledSearch holds the per-round state vector that is retained and
// reused minute-to-minute across an entire range-RAPTOR sweep. It is owned
// by the SweepDriver; a frequency search never writes its results into it:
// it layers fresh copies on top, and only appends rounds (clones of the
// deepest retained round) when it runs deeper than the rounds retained so
// far.
type ScheduledSearch struct {
	Rounds []*RaptorState
	// ScheduledRounds is the deepest round index reached by any scheduled
	// search so far in this sweep, or -1 before the first one runs.
	ScheduledRounds int
}

// NewScheduledSearch allocates a ScheduledSearch with its first round
// (round 0) ready for access-time seeding.
func NewScheduledSearch(nStops int) *ScheduledSearch {
	return &ScheduledSearch{
		Rounds:          []*RaptorState{NewRaptorState(nStops)},
		ScheduledRounds: -1,
	}
}

// grow returns round i: grow by cloning the previous round when a new depth
// is reached, else overlay the existing round i with min of round i-1.
// Rounds never shrink between minutes.
func (s *ScheduledSearch) grow(i int) *RaptorState {
	if i < len(s.Rounds) {
		s.Rounds[i].Min(s.Rounds[i-1])
		return s.Rounds[i]
	}
	for len(s.Rounds) <= i {
		prev := s.Rounds[len(s.Rounds)-1]
		s.Rounds = append(s.Rounds, prev.Copy())
	}
	return s.Rounds[i]
}

// RunScheduled executes the scheduled RAPTOR search for one departure
// minute: seeds round 0 from accessTimes, then runs RoundEngine passes
// (useFrequencies=false) until a round makes no improvement, then carries
// the tail of any deeper retained rounds forward so they stay monotone for
// a frequency search that later extends past this depth.
func (eng *RoundEngine) RunScheduled(s *ScheduledSearch, departureTime int, maxDuration int, accessTimes map[int]int) error {
	maxTime := departureTime + maxDuration

	eng.PatternsTouchedThisRound.Clear()
	eng.StopsTouchedThisRound.Clear()
	eng.StopsTouchedThisSearch.Clear()

	round0 := s.Rounds[0]
	round0.DepartureTime = departureTime
	for stopIndex, accessSeconds := range accessTimes {
		if accessSeconds <= 0 {
			return &ContractError{Msg: "non-positive access time"}
		}
		t := accessSeconds + departureTime
		if t < round0.BestTimes[stopIndex] {
			round0.BestTimes[stopIndex] = t
			round0.TransferStop[stopIndex] = -1
			for _, p := range eng.Layer.PatternsForStop[stopIndex] {
				eng.PatternsTouchedThisRound.Set(p)
			}
		}
	}

	round := 0
	for {
		outputState := s.grow(round + 1)
		outputState.DepartureTime = departureTime
		outputState.Previous = s.Rounds[round]

		improved, err := eng.DoOneRound(s.Rounds[round], outputState, maxTime, false, BestCase)
		if err != nil {
			return err
		}
		if !improved {
			break
		}
		round++
	}

	if round > s.ScheduledRounds {
		s.ScheduledRounds = round
	}

	for round < len(s.Rounds)-1 {
		s.Rounds[round+1].Min(s.Rounds[round])
		round++
	}

	for i := 1; i < len(s.Rounds); i++ {
		for stop := range s.Rounds[i].BestTimes {
			if s.Rounds[i].BestTimes[stop] > s.Rounds[i-1].BestTimes[stop] {
				return newInvariantError("RunScheduled", stop, "round regressed relative to its predecessor")
			}
		}
	}

	return nil
}

// RunFrequency executes the frequency RAPTOR search layered on top of the
// scheduled search's retained rounds. It never writes frequency results
// into s: every round it relaxes is a fresh copy. When it runs deeper than
// s's retained rounds, it appends clones of the deepest retained round to s.
// Returns the final round's state.
func (eng *RoundEngine) RunFrequency(s *ScheduledSearch, departureTime int, maxDuration int, assumption BoardingAssumption) (*RaptorState, error) {
	maxTime := departureTime + maxDuration

	eng.StopsTouchedThisRound.Clear()
	eng.StopsTouchedThisSearch.Clear()
	eng.PatternsTouchedThisRound.Clear()

	for pi, p := range eng.Layer.Patterns {
		if p.HasFrequencies {
			eng.PatternsTouchedThisRound.Set(pi)
		}
	}

	hasScheduledService := layerHasScheduledService(eng.Layer)

	round := 1
	if len(s.Rounds) <= 1 {
		s.grow(1)
	}
	previousRound := s.Rounds[0]
	currentRound := s.Rounds[1].Copy()
	currentRound.Previous = previousRound
	currentRound.DepartureTime = departureTime

	for {
		improved, err := eng.DoOneRound(previousRound, currentRound, maxTime, true, assumption)
		if err != nil {
			return nil, err
		}

		forceMore := s.ScheduledRounds != -1 && round <= s.ScheduledRounds
		if !improved && !forceMore {
			break
		}

		round++
		previousRound = currentRound
		nextRound := previousRound.Copy()
		if round < len(s.Rounds) {
			nextRound.Min(s.Rounds[round])
		} else {
			s.grow(round)
			nextRound.Min(s.Rounds[round])
		}
		nextRound.DepartureTime = departureTime
		nextRound.Previous = previousRound
		currentRound = nextRound

		if hasScheduledService {
			for pi, p := range eng.Layer.Patterns {
				if p.HasFrequencies {
					eng.PatternsTouchedThisRound.Set(pi)
				}
			}
		}
	}

	return currentRound, nil
}

func layerHasScheduledService(layer *TransitLayer) bool {
	for _, p := range layer.Patterns {
		if !p.HasFrequencies {
			return true
		}
		for _, t := range p.Trips {
			if !t.IsFrequency() {
				return true
			}
		}
	}
	return false
}
