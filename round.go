package raptor

// RoundEngine performs one RAPTOR round: scan marked patterns, optionally
// attempt frequency boarding, relax arrivals, then apply transfers. It owns
// the three touched-stop/pattern bitsets shared across a search, each with
// its own distinct lifetime (see the field comments below).
type RoundEngine struct {
	Layer *TransitLayer

	// PatternsTouchedThisRound selects which patterns DoOneRound scans; it
	// is cleared and repopulated (via doTransfers) before DoOneRound
	// returns, ready for the caller's next round.
	PatternsTouchedThisRound *BitSet
	// StopsTouchedThisRound accumulates stops improved during the current
	// round; cleared at the top of every DoOneRound call.
	StopsTouchedThisRound *BitSet
	// StopsTouchedThisSearch accumulates stops improved at any round of the
	// current search; cleared only by the caller at the start of a search.
	StopsTouchedThisSearch *BitSet

	ActiveServicesToday *BitSet
	Offsets             *FrequencyOffsets

	// BoardSlackSeconds overrides BOARD_SLACK_SECONDS when a
	// ProfileRequest supplies one; zero-value RoundEngine uses the
	// package constant via NewRoundEngine.
	BoardSlackSeconds int

	// WalkSpeedMetersPerSecond is the profile's walk speed, used to turn a
	// transfer's distance into seconds in doTransfers.
	WalkSpeedMetersPerSecond float64
}

// NewRoundEngine allocates a RoundEngine and its three touched-stop /
// touched-pattern bitsets, sized to layer.
func NewRoundEngine(layer *TransitLayer) *RoundEngine {
	return &RoundEngine{
		Layer:                    layer,
		PatternsTouchedThisRound: NewBitSet(layer.NPatterns()),
		StopsTouchedThisRound:    NewBitSet(layer.NStops()),
		StopsTouchedThisSearch:   NewBitSet(layer.NStops()),
		BoardSlackSeconds:        BOARD_SLACK_SECONDS,
		WalkSpeedMetersPerSecond: 1.3,
	}
}

// DoOneRound scans every pattern marked in r.PatternsTouchedThisRound,
// relaxing outputState from inputState. useFrequencies and assumption
// control whether/how frequency-based patterns are boarded; assumption is
// ignored when useFrequencies is false. Returns true if any stop was
// improved this round (equivalently, PatternsTouchedThisRound is non-empty
// after doTransfers).
func (r *RoundEngine) DoOneRound(inputState, outputState *RaptorState, maxTime int, useFrequencies bool, assumption BoardingAssumption) (bool, error) {
	r.StopsTouchedThisRound.Clear()

	it := NewBitSetIterator(r.PatternsTouchedThisRound)
	for it.HasNext() {
		p := it.Next()
		pattern := &r.Layer.Patterns[p]

		if !pattern.ActiveServices.Intersects(r.ActiveServicesToday) {
			continue
		}

		boardedFrequency, err := r.scanFrequency(p, pattern, inputState, outputState, maxTime, useFrequencies, assumption)
		if err != nil {
			return false, err
		}
		if boardedFrequency {
			continue
		}
		if err := r.scanScheduled(p, pattern, inputState, outputState, maxTime); err != nil {
			return false, err
		}
	}

	return r.doTransfers(outputState, maxTime)
}

// scanFrequency runs the frequency sub-pass for one pattern and reports
// whether the pattern was boarded as a frequency trip at any stop (the
// mixing rule: when true, the scheduled sub-pass is skipped for this
// pattern).
func (r *RoundEngine) scanFrequency(p int, pattern *Pattern, inputState, outputState *RaptorState, maxTime int, useFrequencies bool, assumption BoardingAssumption) (bool, error) {
	if !useFrequencies || !pattern.HasFrequencies {
		return false, nil
	}

	var bestFreqTrip *Trip
	bestFreqBoardStop := -1      // position in pattern
	bestFreqBoardStopIndex := -1 // global stop id
	bestFreqBoardTime := UNREACHED

	for k, s := range pattern.Stops {
		remainOnBoardTime := UNREACHED
		if bestFreqTrip != nil {
			remainOnBoardTime = bestFreqBoardTime + bestFreqTrip.Arrivals[k] - bestFreqTrip.Departures[bestFreqBoardStop]
		}

		if inputState.BestTimes[s] != UNREACHED {
			for ti := range pattern.Trips {
				trip := &pattern.Trips[ti]
				if trip.HeadwaySeconds == nil {
					continue
				}
				if !r.ActiveServicesToday.IsSet(trip.ServiceCode) {
					continue
				}

				tripMinBoardTime := UNREACHED
				for e := range trip.HeadwaySeconds {
					boardTime, boardable, err := r.frequencyBoardTime(p, ti, e, trip, k, inputState.BestTimes[s], assumption)
					if err != nil {
						return false, err
					}
					if boardable && boardTime < tripMinBoardTime {
						tripMinBoardTime = boardTime
					}
				}

				if tripMinBoardTime < remainOnBoardTime && tripMinBoardTime < bestFreqBoardTime {
					bestFreqTrip = trip
					bestFreqBoardStop = k
					bestFreqBoardStopIndex = s
					bestFreqBoardTime = tripMinBoardTime
				}
			}
		}

		if remainOnBoardTime != UNREACHED && remainOnBoardTime < maxTime && remainOnBoardTime < outputState.BestNonTransferTimes[s] {
			outputState.BestNonTransferTimes[s] = remainOnBoardTime
			outputState.PreviousPatterns[s] = p
			outputState.PreviousStop[s] = bestFreqBoardStopIndex
			r.StopsTouchedThisRound.Set(s)
			r.StopsTouchedThisSearch.Set(s)

			if remainOnBoardTime < outputState.BestTimes[s] {
				outputState.BestTimes[s] = remainOnBoardTime
				outputState.TransferStop[s] = -1
			}
		}
	}

	return bestFreqTrip != nil, nil
}

// frequencyBoardTime computes the board time for boarding frequency entry e
// of trip at pattern stop position k, given the passenger's arrival time at
// that stop (arrivalAtStop), per the requested boarding assumption.
func (r *RoundEngine) frequencyBoardTime(p, tripIdx, e int, trip *Trip, k int, arrivalAtStop int, assumption BoardingAssumption) (int, bool, error) {
	slack := arrivalAtStop + r.BoardSlackSeconds
	departureAtK := trip.Departures[k]
	headway := trip.HeadwaySeconds[e]
	start := trip.StartTimes[e]
	end := trip.EndTimes[e]

	switch assumption {
	case BestCase:
		if slack > end+departureAtK {
			return 0, false, nil
		}
		boardTime := slack
		if start+departureAtK > boardTime {
			boardTime = start + departureAtK
		}
		return boardTime, true, nil
	case WorstCase:
		if slack > end+departureAtK-headway {
			return 0, false, nil
		}
		boardTime := slack + headway
		if start+departureAtK+headway > boardTime {
			boardTime = start + departureAtK + headway
		}
		return boardTime, true, nil
	case Random:
		if r.Offsets == nil {
			return 0, false, newInvariantError("scanFrequency", -1, "RANDOM boarding requested with no FrequencyOffsets configured")
		}
		if headway <= 0 {
			return 0, false, nil
		}
		offset := r.Offsets.At(p, tripIdx, e)
		boardTime := start + departureAtK + offset
		for boardTime < slack {
			boardTime += headway
		}
		if boardTime-departureAtK > end {
			return 0, false, nil
		}
		return boardTime, true, nil
	default:
		return 0, false, newInvariantError("scanFrequency", -1, "unknown boarding assumption")
	}
}

// scanScheduled runs the scheduled sub-pass for one pattern: a linear scan
// with a single onboard-trip pointer, including the earlier-trip switch
// that lets a later round's improved arrival re-board an earlier departure.
func (r *RoundEngine) scanScheduled(p int, pattern *Pattern, inputState, outputState *RaptorState, maxTime int) error {
	var onTrip *Trip
	onTripIdx := -1
	boardStopIndex := -1

	for k, s := range pattern.Stops {
		if onTrip == nil {
			if inputState.BestTimes[s] != UNREACHED {
				for ti := range pattern.Trips {
					trip := &pattern.Trips[ti]
					if trip.IsFrequency() {
						continue
					}
					if !r.ActiveServicesToday.IsSet(trip.ServiceCode) {
						continue
					}
					if trip.Departures[k] > inputState.BestTimes[s]+r.BoardSlackSeconds {
						onTrip = trip
						onTripIdx = ti
						boardStopIndex = s
						break
					}
				}
			}
			// A trip boarded here is relaxed from the next stop onward.
			continue
		}

		arrivalTime := onTrip.Arrivals[k]
		if arrivalTime > maxTime {
			return nil
		}

		if arrivalTime < outputState.BestNonTransferTimes[s] {
			outputState.BestNonTransferTimes[s] = arrivalTime
			outputState.PreviousPatterns[s] = p
			outputState.PreviousStop[s] = boardStopIndex
			r.StopsTouchedThisRound.Set(s)
			r.StopsTouchedThisSearch.Set(s)

			if arrivalTime < outputState.BestTimes[s] {
				outputState.BestTimes[s] = arrivalTime
				outputState.TransferStop[s] = -1
			}
		}

		if inputState.BestTimes[s] < arrivalTime {
			for ti := onTripIdx - 1; ti >= 0; ti-- {
				trip := &pattern.Trips[ti]
				if trip.IsFrequency() {
					continue
				}
				if !r.ActiveServicesToday.IsSet(trip.ServiceCode) {
					continue
				}
				if trip.Departures[k] > inputState.BestTimes[s]+r.BoardSlackSeconds {
					onTrip = trip
					onTripIdx = ti
					boardStopIndex = s
					continue
				}
				break
			}
		}
	}
	return nil
}

// doTransfers relaxes every stop touched this round across its transfer
// edges (plus the trivial "stay put" transfer onto the stop's own
// patterns), clearing and repopulating PatternsTouchedThisRound for the
// caller's next round. Returns true iff the freshly marked pattern set is
// non-empty.
func (r *RoundEngine) doTransfers(state *RaptorState, maxTime int) (bool, error) {
	r.PatternsTouchedThisRound.Clear()

	it := NewBitSetIterator(r.StopsTouchedThisRound)
	for it.HasNext() {
		s := it.Next()

		for _, p := range r.Layer.PatternsForStop[s] {
			r.PatternsTouchedThisRound.Set(p)
		}

		for _, tr := range r.Layer.TransfersForStop[s] {
			if r.WalkSpeedMetersPerSecond <= 0 {
				return false, newInvariantError("doTransfers", s, "non-positive walk speed")
			}
			toTime := state.BestNonTransferTimes[s] + int(tr.DistanceMeters/r.WalkSpeedMetersPerSecond)
			if toTime < maxTime && toTime < state.BestTimes[tr.ToStop] {
				state.BestTimes[tr.ToStop] = toTime
				state.TransferStop[tr.ToStop] = s
				for _, p := range r.Layer.PatternsForStop[tr.ToStop] {
					r.PatternsTouchedThisRound.Set(p)
				}
			}
		}
	}

	return !r.PatternsTouchedThisRound.IsEmpty(), nil
}
