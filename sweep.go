package raptor

import "time"

// ProfileRequest carries the parameters of one range-RAPTOR sweep: a
// window of departure minutes, the service date, and the Monte-Carlo
// sampling budget.
type ProfileRequest struct {
	FromTime, ToTime  int // seconds since midnight
	Date              ServiceDate
	WalkSpeed         float64 // meters/second
	MonteCarloDraws   int     // total desired across the whole window
	BoardSlackSeconds int     // 0 means "use BOARD_SLACK_SECONDS"
}

// Diagnostics reports per-sweep counters useful for profiling and tuning.
type Diagnostics struct {
	SearchCount         int
	TimeStep            int
	PropagationMillis   int64
	TransitSearchMillis int64
}

// SweepResult is everything SweepDriver.Run hands back to the caller.
type SweepResult struct {
	TimesAtTargetsEachIteration [][]int
	IncludeInAverages           *BitSet
	// StatesEachIteration is populated only when targets == nil (static-site
	// mode), one deep-copied final-round state per iteration.
	StatesEachIteration []*RaptorState
	Diagnostics         Diagnostics
}

// SweepDriver orchestrates the range-RAPTOR sweep over departure minutes,
// interleaving scheduled and frequency searches, propagation, and matrix
// assembly.
type SweepDriver struct {
	Layer       *TransitLayer
	AccessTimes map[int]int
	Targets     LinkedPointSet // nil => static-site mode, skip propagation
	NonTransit  PointSetTimes
	Seed        int64
	// ArchiveStates enables StatesEachIteration; only honored when Targets
	// is nil (static-site mode).
	ArchiveStates bool
}

// ComputeIterationCount computes the number of departure minutes in a sweep
// window: (toTime-fromTime-DEPARTURE_STEP_SEC)/DEPARTURE_STEP_SEC + 1,
// guarded so a zero-width or one-minute window never yields zero or
// negative iterations.
func ComputeIterationCount(fromTime, toTime int) int {
	n := ComputeIterationCountRaw(fromTime, toTime)
	if n < 1 {
		return 1
	}
	return n
}

// ComputeIterationCountRaw is the unguarded formula, kept separate so both
// forms are independently testable.
func ComputeIterationCountRaw(fromTime, toTime int) int {
	return (toTime-fromTime-DEPARTURE_STEP_SEC)/DEPARTURE_STEP_SEC + 1
}

// Run executes the full sweep and assembles the iterations×nTargets matrix.
func (d *SweepDriver) Run(req ProfileRequest) (*SweepResult, error) {
	doPropagation := d.Targets != nil

	minuteCount := ComputeIterationCount(req.FromTime, req.ToTime)
	monteCarloDraws := ceilDiv(req.MonteCarloDraws, minuteCount)

	hasFrequencies := layerHasFrequencies(d.Layer)

	var nCols int
	if doPropagation {
		nCols = d.Targets.NumTargets()
	} else {
		nCols = d.Layer.NStops()
	}

	iterations := minuteCount
	if hasFrequencies {
		iterations = minuteCount * (monteCarloDraws + 2)
	}

	result := &SweepResult{
		TimesAtTargetsEachIteration: make([][]int, iterations),
		IncludeInAverages:           NewBitSet(iterations),
		Diagnostics:                 Diagnostics{TimeStep: DEPARTURE_STEP_SEC},
	}
	if !doPropagation && d.ArchiveStates {
		result.StatesEachIteration = make([]*RaptorState, iterations)
	}

	scheduledTimesAtTargets := make([]int, nCols)
	for i := range scheduledTimesAtTargets {
		scheduledTimesAtTargets[i] = UNREACHED
	}

	activeServices := d.Layer.GetActiveServicesForDate(req.Date)
	scheduled := NewScheduledSearch(d.Layer.NStops())
	eng := NewRoundEngine(d.Layer)
	eng.ActiveServicesToday = activeServices
	if req.BoardSlackSeconds > 0 {
		eng.BoardSlackSeconds = req.BoardSlackSeconds
	}
	if req.WalkSpeed > 0 {
		eng.WalkSpeedMetersPerSecond = req.WalkSpeed
	}

	var offsets *FrequencyOffsets
	if hasFrequencies {
		offsets = NewFrequencyOffsets(d.Layer, d.Seed)
		eng.Offsets = offsets
	}

	iteration := 0
	for departureTime := req.ToTime - DEPARTURE_STEP_SEC; departureTime >= req.FromTime; departureTime -= DEPARTURE_STEP_SEC {
		for _, r := range scheduled.Rounds {
			r.DepartureTime = departureTime
		}

		start := time.Now()
		if err := eng.RunScheduled(scheduled, departureTime, MAX_DURATION, d.AccessTimes); err != nil {
			return nil, err
		}
		result.Diagnostics.TransitSearchMillis += time.Since(start).Milliseconds()
		result.Diagnostics.SearchCount++

		finalScheduled := scheduled.Rounds[len(scheduled.Rounds)-1]

		if doPropagation {
			pstart := time.Now()
			if err := DoPropagation(finalScheduled.BestNonTransferTimes, eng.StopsTouchedThisSearch, d.Targets, scheduledTimesAtTargets); err != nil {
				return nil, err
			}
			for t := 0; t < nCols; t++ {
				nonTransit := d.NonTransit.GetTravelTimeToPoint(t)
				if nonTransit == UNREACHED {
					continue
				}
				candidate := nonTransit + departureTime
				if candidate < scheduledTimesAtTargets[t] {
					scheduledTimesAtTargets[t] = candidate
				}
			}
			result.Diagnostics.PropagationMillis += time.Since(pstart).Milliseconds()
		}

		if hasFrequencies {
			for i := 0; i < monteCarloDraws+2; i++ {
				var assumption BoardingAssumption
				switch i {
				case 0:
					assumption = BestCase
				case 1:
					assumption = WorstCase
				default:
					offsets.Randomize(d.Layer)
					assumption = Random
					result.IncludeInAverages.Set(iteration)
				}

				fstart := time.Now()
				stateCopy, err := eng.RunFrequency(scheduled, departureTime, MAX_DURATION, assumption)
				if err != nil {
					return nil, err
				}
				result.Diagnostics.TransitSearchMillis += time.Since(fstart).Milliseconds()
				result.Diagnostics.SearchCount++

				row := make([]int, nCols)
				if doPropagation {
					copy(row, scheduledTimesAtTargets)
					pstart := time.Now()
					if err := DoPropagation(stateCopy.BestNonTransferTimes, eng.StopsTouchedThisSearch, d.Targets, row); err != nil {
						return nil, err
					}
					result.Diagnostics.PropagationMillis += time.Since(pstart).Milliseconds()
				} else {
					copy(row, stateCopy.BestNonTransferTimes)
					if d.ArchiveStates {
						result.StatesEachIteration[iteration] = stateCopy.DeepCopy()
					}
				}
				elapseRow(row, departureTime)
				result.TimesAtTargetsEachIteration[iteration] = row
				iteration++
			}
		} else {
			row := make([]int, nCols)
			if doPropagation {
				copy(row, scheduledTimesAtTargets)
			} else {
				copy(row, finalScheduled.BestNonTransferTimes)
				if d.ArchiveStates {
					result.StatesEachIteration[iteration] = finalScheduled.DeepCopy()
				}
			}
			elapseRow(row, departureTime)
			result.IncludeInAverages.Set(iteration)
			result.TimesAtTargetsEachIteration[iteration] = row
			iteration++
		}
	}

	if iteration != iterations {
		return nil, &ContractError{Msg: "iteration count mismatch at end of sweep"}
	}

	return result, nil
}

func elapseRow(row []int, departureTime int) {
	for i, v := range row {
		if v != UNREACHED {
			row[i] = v - departureTime
		}
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

func layerHasFrequencies(layer *TransitLayer) bool {
	for _, p := range layer.Patterns {
		if p.HasFrequencies {
			return true
		}
	}
	return false
}
