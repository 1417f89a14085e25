package raptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysActiveServiceDefs(n int) []ServiceDef {
	defs := make([]ServiceDef, n)
	for i := range defs {
		defs[i] = ServiceDef{
			Code:               i,
			Weekday:            [7]bool{true, true, true, true, true, true, true},
			Start:              ServiceDate{Year: 1, Month: 1, Day: 1},
			End:                ServiceDate{Year: 9999, Month: 12, Day: 31},
			Added:              map[ServiceDate]bool{},
			Removed:            map[ServiceDate]bool{},
			HolidayServiceCode: -1,
		}
	}
	return defs
}

// testDate is any ordinary weekday inside every test service's window.
var testDate = ServiceDate{Year: 2026, Month: 7, Day: 1}

func allSetBitSet(n int) *BitSet {
	b := NewBitSet(n)
	for i := 0; i < n; i++ {
		b.Set(i)
	}
	return b
}

// fixedTargets is a LinkedPointSet test double: a static map from stop to
// the (target, walk seconds) pairs precomputed from the street network.
type fixedTargets struct {
	numTargets int
	trees      map[int][]TargetWalk
}

func (f *fixedTargets) NumTargets() int                 { return f.numTargets }
func (f *fixedTargets) StopTrees(stop int) []TargetWalk { return f.trees[stop] }

// fixedNonTransit is a PointSetTimes test double returning a constant time
// (or UNREACHED) per target.
type fixedNonTransit struct {
	times []int
}

func (f *fixedNonTransit) GetTravelTimeToPoint(i int) int { return f.times[i] }

func noAccessLayer(nStops int, patterns []Pattern, patternsForStop [][]int, transfersForStop [][]Transfer) *TransitLayer {
	return NewTransitLayer(patterns, patternsForStop, transfersForStop, NewServiceCalendar(alwaysActiveServiceDefs(1), 1, false))
}

// --- Scenario 1: no transit, only access and non-transit time. ---

func TestSweep_NoTransitOnlyAccessAndNonTransit(t *testing.T) {
	layer := noAccessLayer(1, nil, [][]int{{}}, [][]Transfer{{}})

	driver := &SweepDriver{
		Layer:       layer,
		AccessTimes: map[int]int{0: 300},
		Targets:     &fixedTargets{numTargets: 1, trees: map[int][]TargetWalk{}},
		NonTransit:  &fixedNonTransit{times: []int{600}},
	}

	result, err := driver.Run(ProfileRequest{FromTime: 0, ToTime: 3600, Date: testDate, WalkSpeed: 1.3})
	require.NoError(t, err)

	require.Len(t, result.TimesAtTargetsEachIteration, 60)
	for i, row := range result.TimesAtTargetsEachIteration {
		require.Len(t, row, 1, "iteration %d", i)
		assert.Equal(t, 600, row[0], "iteration %d", i)
		assert.True(t, result.IncludeInAverages.IsSet(i))
	}
}

// --- Scenario 2: single scheduled trip. ---

func TestSweep_SingleScheduledTrip(t *testing.T) {
	// pattern stops [A, B]; one trip departs A at 600, arrives B at 900.
	pattern := Pattern{
		Stops:          []int{0, 1},
		ActiveServices: allSetBitSet(1),
		Trips: []Trip{
			{Arrivals: []int{600, 900}, Departures: []int{600, 900}, ServiceCode: 0},
		},
	}
	layer := noAccessLayer(2, []Pattern{pattern}, [][]int{{0}, {0}}, [][]Transfer{{}, {}})

	driver := &SweepDriver{
		Layer:       layer,
		AccessTimes: map[int]int{0: 60},
		Targets: &fixedTargets{numTargets: 1, trees: map[int][]TargetWalk{
			1: {{TargetIndex: 0, WalkTimeSeconds: 30}},
		}},
		NonTransit: &fixedNonTransit{times: []int{UNREACHED}},
	}

	result, err := driver.Run(ProfileRequest{FromTime: 0, ToTime: 1200, Date: testDate, WalkSpeed: 1.3})
	require.NoError(t, err)

	firstDeparture := 1200 - DEPARTURE_STEP_SEC
	rowFor := func(departureTime int) []int {
		idx := (firstDeparture - departureTime) / DEPARTURE_STEP_SEC
		return result.TimesAtTargetsEachIteration[idx]
	}

	// boarding requires departures[A] > bestTimes[A] + BOARD_SLACK, i.e.
	// 600 > (60+departureTime) + 60, i.e. departureTime < 480.
	assert.Equal(t, 930, rowFor(0)[0])
	assert.Equal(t, 510, rowFor(420)[0])
	assert.Equal(t, UNREACHED, rowFor(480)[0])
	assert.Equal(t, UNREACHED, rowFor(1080)[0])
}

// --- Scenario 3: frequency boarding, BEST_CASE vs WORST_CASE. ---

func TestFrequencyBoardTime_BestCaseVsWorstCase(t *testing.T) {
	layer := noAccessLayer(2, nil, [][]int{{}, {}}, [][]Transfer{{}, {}})
	eng := NewRoundEngine(layer)
	eng.ActiveServicesToday = allSetBitSet(1)

	trip := &Trip{
		Departures:     []int{0},
		Arrivals:       []int{0},
		ServiceCode:    0,
		HeadwaySeconds: []int{600},
		StartTimes:     []int{600},
		EndTimes:       []int{3600},
	}

	best, boardable, err := eng.frequencyBoardTime(0, 0, 0, trip, 0, 0, BestCase)
	require.NoError(t, err)
	require.True(t, boardable)
	assert.Equal(t, 600, best)

	worst, boardable, err := eng.frequencyBoardTime(0, 0, 0, trip, 0, 0, WorstCase)
	require.NoError(t, err)
	require.True(t, boardable)
	assert.Equal(t, 1200, worst)
}

func TestFrequencyBoardTime_RandomRespectsOffsetAndEndWindow(t *testing.T) {
	layer := noAccessLayer(2, nil, [][]int{{}, {}}, [][]Transfer{{}, {}})
	eng := NewRoundEngine(layer)
	eng.ActiveServicesToday = allSetBitSet(1)
	eng.Offsets = &FrequencyOffsets{offsets: [][][]int{{{200}}}}

	trip := &Trip{
		Departures:     []int{0},
		Arrivals:       []int{0},
		ServiceCode:    0,
		HeadwaySeconds: []int{600},
		StartTimes:     []int{0},
		EndTimes:       []int{700},
	}

	// start(0) + dep(0) + offset(200) = 200 >= slack(60), board at 200.
	boardTime, boardable, err := eng.frequencyBoardTime(0, 0, 0, trip, 0, 0, Random)
	require.NoError(t, err)
	require.True(t, boardable)
	assert.Equal(t, 200, boardTime)

	// arriving at 650 makes slack 710, so the first catchable departure is
	// 200 + 600 = 800, past the entry's end of 700: not boardable.
	_, boardable, err = eng.frequencyBoardTime(0, 0, 0, trip, 0, 650, Random)
	require.NoError(t, err)
	assert.False(t, boardable)

	// a RANDOM draw against a pattern with no FrequencyOffsets is a hard
	// invariant violation.
	eng.Offsets = nil
	_, _, err = eng.frequencyBoardTime(0, 0, 0, trip, 0, 0, Random)
	require.Error(t, err)
	var invErr *InvariantError
	assert.ErrorAs(t, err, &invErr)
}

// --- Scenario 4: earlier-trip switch. ---

func TestScanScheduled_EarlierTripSwitch(t *testing.T) {
	// stops: A(0) B(1) C(2). T1 departs A=600, arrives B=620, departs
	// B=690, arrives C=750. T2 departs A=700, arrives B=720, departs
	// B=721, arrives C=760 (consistently later than T1 at every position).
	pattern := &Pattern{
		Stops:          []int{0, 1, 2},
		ActiveServices: allSetBitSet(1),
		Trips: []Trip{
			{Departures: []int{600, 690, 751}, Arrivals: []int{600, 620, 750}, ServiceCode: 0},
			{Departures: []int{700, 721, 761}, Arrivals: []int{700, 720, 760}, ServiceCode: 0},
		},
	}
	layer := noAccessLayer(3, []Pattern{*pattern}, [][]int{{0}, {0}, {0}}, [][]Transfer{{}, {}, {}})
	eng := NewRoundEngine(layer)
	eng.ActiveServicesToday = allSetBitSet(1)

	inputState := NewRaptorState(3)
	inputState.BestTimes[0] = 610 // A: only T2 boardable (700 > 610+60)
	inputState.BestTimes[1] = 600 // B: already reached earlier, via some other leg
	inputState.BestTimes[2] = UNREACHED

	outputState := NewRaptorState(3)
	outputState.BestTimes[0] = inputState.BestTimes[0]
	outputState.BestTimes[1] = inputState.BestTimes[1]

	require.NoError(t, eng.scanScheduled(0, &layer.Patterns[0], inputState, outputState, MAX_DURATION))

	// without the earlier-trip switch this would be T2's arrival (760).
	assert.Equal(t, 750, outputState.BestNonTransferTimes[2])
}

// --- Scenario 5: frequency search explores a stop only once the
// scheduled search has carried it forward, never in its own first round.

func TestRunFrequency_DelaysBoardingUntilScheduledDepthCatchesUp(t *testing.T) {
	// O(0) --scheduled--> M(1) --scheduled--> X(2) ; X --frequency--> Z(3)
	hop1 := Pattern{
		Stops:          []int{0, 1},
		ActiveServices: allSetBitSet(1),
		Trips:          []Trip{{Departures: []int{100, 200}, Arrivals: []int{100, 200}, ServiceCode: 0}},
	}
	hop2 := Pattern{
		Stops:          []int{1, 2},
		ActiveServices: allSetBitSet(1),
		Trips:          []Trip{{Departures: []int{300, 400}, Arrivals: []int{300, 400}, ServiceCode: 0}},
	}
	freq := Pattern{
		Stops:          []int{2, 3},
		HasFrequencies: true,
		ActiveServices: allSetBitSet(1),
		Trips: []Trip{
			{
				Departures: []int{0, 0}, Arrivals: []int{0, 0}, ServiceCode: 0,
				HeadwaySeconds: []int{300}, StartTimes: []int{0}, EndTimes: []int{3600},
			},
		},
	}

	patternsForStop := [][]int{{0}, {0, 1}, {1, 2}, {2}}
	layer := noAccessLayer(4, []Pattern{hop1, hop2, freq}, patternsForStop, make([][]Transfer, 4))

	eng := NewRoundEngine(layer)
	eng.ActiveServicesToday = allSetBitSet(1)

	scheduled := NewScheduledSearch(4)
	require.NoError(t, eng.RunScheduled(scheduled, 0, MAX_DURATION, map[int]int{0: 1}))
	require.Equal(t, 2, scheduled.ScheduledRounds)

	final, err := eng.RunFrequency(scheduled, 0, MAX_DURATION, BestCase)
	require.NoError(t, err)
	assert.NotEqual(t, UNREACHED, final.BestNonTransferTimes[3], "Z should eventually be reached via the frequency hop from X")
}

// --- Scenario 6: range-RAPTOR correctness: sweeping two minutes matches
// running each minute from scratch. ---

func TestRangeRaptor_MatchesFromScratchPerMinute(t *testing.T) {
	pattern := Pattern{
		Stops:          []int{0, 1},
		ActiveServices: allSetBitSet(1),
		Trips: []Trip{
			{Arrivals: []int{600, 700}, Departures: []int{600, 700}, ServiceCode: 0},
			{Arrivals: []int{660, 760}, Departures: []int{660, 760}, ServiceCode: 0},
		},
	}
	layer := noAccessLayer(2, []Pattern{pattern}, [][]int{{0}, {0}}, [][]Transfer{{}, {}})

	runFromScratch := func(departureTime int) int {
		eng := NewRoundEngine(layer)
		eng.ActiveServicesToday = allSetBitSet(1)
		s := NewScheduledSearch(2)
		require.NoError(t, eng.RunScheduled(s, departureTime, MAX_DURATION, map[int]int{0: 10}))
		return s.Rounds[len(s.Rounds)-1].BestNonTransferTimes[1]
	}

	eng := NewRoundEngine(layer)
	eng.ActiveServicesToday = allSetBitSet(1)
	swept := NewScheduledSearch(2)
	require.NoError(t, eng.RunScheduled(swept, 600, MAX_DURATION, map[int]int{0: 10}))
	sweptLate := swept.Rounds[len(swept.Rounds)-1].BestNonTransferTimes[1]
	require.NoError(t, eng.RunScheduled(swept, 540, MAX_DURATION, map[int]int{0: 10}))
	sweptEarly := swept.Rounds[len(swept.Rounds)-1].BestNonTransferTimes[1]

	assert.Equal(t, runFromScratch(600), sweptLate)
	assert.Equal(t, runFromScratch(540), sweptEarly)
}

// --- Quantified invariants. ---

func TestRaptorState_MinIsIndependentPerField(t *testing.T) {
	a := NewRaptorState(2)
	a.BestTimes[0] = 100
	a.BestNonTransferTimes[0] = 200

	b := NewRaptorState(2)
	b.BestTimes[0] = 50 // improves BestTimes only
	b.BestNonTransferTimes[0] = 300
	b.TransferStop[0] = 7

	a.Min(b)

	assert.Equal(t, 50, a.BestTimes[0])
	assert.Equal(t, 7, a.TransferStop[0])
	assert.Equal(t, 200, a.BestNonTransferTimes[0], "BestNonTransferTimes must not be pulled down by BestTimes improvements")
}

func TestRaptorState_CopyThenMinIsIdentity(t *testing.T) {
	s := NewRaptorState(3)
	s.BestTimes[1] = 123
	s.BestNonTransferTimes[2] = 456
	s.PreviousPatterns[2] = 1
	s.PreviousStop[2] = 0

	clone := s.Copy()
	clone.Min(s)

	assert.Equal(t, s.BestTimes, clone.BestTimes)
	assert.Equal(t, s.BestNonTransferTimes, clone.BestNonTransferTimes)
}

func TestDoTransfers_NeverUpdatesBestNonTransferTimes(t *testing.T) {
	destPattern := Pattern{Stops: []int{1}, ActiveServices: allSetBitSet(1)}
	layer := noAccessLayer(2, []Pattern{destPattern}, [][]int{{}, {0}}, [][]Transfer{
		{{ToStop: 1, DistanceMeters: 130}}, // 100s at 1.3 m/s
		{},
	})
	eng := NewRoundEngine(layer)
	eng.WalkSpeedMetersPerSecond = 1.3

	state := NewRaptorState(2)
	state.BestTimes[0] = 500
	state.BestNonTransferTimes[0] = 500
	eng.StopsTouchedThisRound.Set(0)

	improved, err := eng.doTransfers(state, MAX_DURATION)
	require.NoError(t, err)
	assert.True(t, improved)
	assert.Equal(t, 600, state.BestTimes[1])
	assert.Equal(t, UNREACHED, state.BestNonTransferTimes[1])
	assert.Equal(t, 0, state.TransferStop[1])
}

func TestDoPropagation_OnlyTouchedStopsContribute(t *testing.T) {
	times := []int{100, UNREACHED, 50}
	touched := NewBitSet(3)
	touched.Set(0)
	// stop 2 has a better raw time but was never touched this search, so
	// it must be invisible to propagation.

	targets := &fixedTargets{numTargets: 1, trees: map[int][]TargetWalk{
		0: {{TargetIndex: 0, WalkTimeSeconds: 10}},
		2: {{TargetIndex: 0, WalkTimeSeconds: 1}},
	}}
	out := []int{UNREACHED}
	require.NoError(t, DoPropagation(times, touched, targets, out))
	assert.Equal(t, 110, out[0])
}

func TestDoPropagation_IsIdempotent(t *testing.T) {
	times := []int{100}
	touched := NewBitSet(1)
	touched.Set(0)
	targets := &fixedTargets{numTargets: 1, trees: map[int][]TargetWalk{
		0: {{TargetIndex: 0, WalkTimeSeconds: 10}},
	}}

	out := []int{UNREACHED}
	require.NoError(t, DoPropagation(times, touched, targets, out))
	first := append([]int(nil), out...)
	require.NoError(t, DoPropagation(times, touched, targets, out))
	assert.Equal(t, first, out)
}

func TestComputeIterationCount(t *testing.T) {
	assert.Equal(t, 20, ComputeIterationCount(0, 1200))
	assert.Equal(t, 1, ComputeIterationCount(0, 60))
	assert.Equal(t, 1, ComputeIterationCount(0, 0), "zero-width window must not yield zero/negative iterations")
	assert.LessOrEqual(t, ComputeIterationCountRaw(0, 0), 0, "the unguarded source formula is allowed to go non-positive")
}

func TestBitSet_SetClearIntersectIterate(t *testing.T) {
	b := NewBitSet(130)
	assert.True(t, b.IsEmpty())
	b.Set(0)
	b.Set(64)
	b.Set(129)
	assert.False(t, b.IsEmpty())

	var seen []int
	it := NewBitSetIterator(b)
	for it.HasNext() {
		seen = append(seen, it.Next())
	}
	assert.Equal(t, []int{0, 64, 129}, seen)

	other := NewBitSet(130)
	other.Set(64)
	assert.True(t, b.Intersects(other))

	b.Clear()
	assert.True(t, b.IsEmpty())
}

func TestSweep_IdempotentAcrossRuns(t *testing.T) {
	pattern := Pattern{
		Stops:          []int{0, 1},
		HasFrequencies: true,
		ActiveServices: allSetBitSet(1),
		Trips: []Trip{
			{
				Departures: []int{0, 0}, Arrivals: []int{0, 0}, ServiceCode: 0,
				HeadwaySeconds: []int{300}, StartTimes: []int{0}, EndTimes: []int{3600},
			},
		},
	}
	layer := noAccessLayer(2, []Pattern{pattern}, [][]int{{0}, {0}}, [][]Transfer{{}, {}})

	run := func() *SweepResult {
		driver := &SweepDriver{
			Layer:       layer,
			AccessTimes: map[int]int{0: 10},
			Targets:     &fixedTargets{numTargets: 1, trees: map[int][]TargetWalk{1: {{TargetIndex: 0, WalkTimeSeconds: 5}}}},
			NonTransit:  &fixedNonTransit{times: []int{UNREACHED}},
			Seed:        42,
		}
		res, err := driver.Run(ProfileRequest{FromTime: 0, ToTime: 600, Date: testDate, WalkSpeed: 1.3, MonteCarloDraws: 10})
		require.NoError(t, err)
		return res
	}

	first := run()
	second := run()
	assert.Equal(t, first.TimesAtTargetsEachIteration, second.TimesAtTargetsEachIteration)
}

func TestSweep_BestCaseNeverWorseThanWorstCaseInSameMinute(t *testing.T) {
	pattern := Pattern{
		Stops:          []int{0, 1},
		HasFrequencies: true,
		ActiveServices: allSetBitSet(1),
		Trips: []Trip{
			{
				Departures: []int{0, 0}, Arrivals: []int{0, 0}, ServiceCode: 0,
				HeadwaySeconds: []int{300}, StartTimes: []int{0}, EndTimes: []int{3600},
			},
		},
	}
	layer := noAccessLayer(2, []Pattern{pattern}, [][]int{{0}, {0}}, [][]Transfer{{}, {}})

	driver := &SweepDriver{
		Layer:       layer,
		AccessTimes: map[int]int{0: 10},
		Targets:     &fixedTargets{numTargets: 1, trees: map[int][]TargetWalk{1: {{TargetIndex: 0, WalkTimeSeconds: 5}}}},
		NonTransit:  &fixedNonTransit{times: []int{UNREACHED}},
		Seed:        1,
	}
	result, err := driver.Run(ProfileRequest{FromTime: 0, ToTime: 120, Date: testDate, WalkSpeed: 1.3, MonteCarloDraws: 4})
	require.NoError(t, err)

	// two minutes, two random draws each => the first minute's rows are
	// [BEST_CASE, WORST_CASE, RANDOM, RANDOM]
	best := result.TimesAtTargetsEachIteration[0][0]
	worst := result.TimesAtTargetsEachIteration[1][0]
	assert.LessOrEqual(t, best, worst)
	assert.False(t, result.IncludeInAverages.IsSet(0))
	assert.False(t, result.IncludeInAverages.IsSet(1))
	assert.True(t, result.IncludeInAverages.IsSet(2))
}

// --- Static-site mode: targets == nil skips propagation entirely and each
// row is the final round's BestNonTransferTimes shifted to elapsed time.

func TestSweep_StaticSiteModeRowsAreElapsedStopTimes(t *testing.T) {
	pattern := Pattern{
		Stops:          []int{0, 1},
		ActiveServices: allSetBitSet(1),
		Trips: []Trip{
			{Arrivals: []int{600, 900}, Departures: []int{600, 900}, ServiceCode: 0},
		},
	}
	layer := noAccessLayer(2, []Pattern{pattern}, [][]int{{0}, {0}}, [][]Transfer{{}, {}})

	driver := &SweepDriver{
		Layer:         layer,
		AccessTimes:   map[int]int{0: 60},
		ArchiveStates: true,
	}

	result, err := driver.Run(ProfileRequest{FromTime: 0, ToTime: 120, Date: testDate, WalkSpeed: 1.3})
	require.NoError(t, err)
	require.Len(t, result.TimesAtTargetsEachIteration, 2)

	// iteration 0 is the latest departure minute (60), iteration 1 is 0.
	assert.Equal(t, []int{UNREACHED, 840}, result.TimesAtTargetsEachIteration[0])
	assert.Equal(t, []int{UNREACHED, 900}, result.TimesAtTargetsEachIteration[1])

	require.Len(t, result.StatesEachIteration, 2)
	require.NotNil(t, result.StatesEachIteration[0])
	assert.Equal(t, 60, result.StatesEachIteration[0].DepartureTime)
	assert.Equal(t, 900, result.StatesEachIteration[0].BestNonTransferTimes[1])
}

func TestRunScheduled_RejectsNonPositiveAccessTime(t *testing.T) {
	layer := noAccessLayer(1, nil, [][]int{{}}, [][]Transfer{{}})
	eng := NewRoundEngine(layer)
	eng.ActiveServicesToday = allSetBitSet(1)

	err := eng.RunScheduled(NewScheduledSearch(1), 0, MAX_DURATION, map[int]int{0: 0})
	require.Error(t, err)
	var contractErr *ContractError
	assert.ErrorAs(t, err, &contractErr)
}

// Doubling the walk speed can only help: every stop's best arrival stays the
// same or improves, and no stop flips back to UNREACHED.

func TestRunScheduled_FasterWalkNeverWorse(t *testing.T) {
	// A(0) -trip-> B(1) -130m transfer-> C(2) -trip-> D(3)
	leg1 := Pattern{
		Stops:          []int{0, 1},
		ActiveServices: allSetBitSet(1),
		Trips:          []Trip{{Arrivals: []int{100, 200}, Departures: []int{100, 200}, ServiceCode: 0}},
	}
	leg2 := Pattern{
		Stops:          []int{2, 3},
		ActiveServices: allSetBitSet(1),
		Trips:          []Trip{{Arrivals: []int{400, 500}, Departures: []int{400, 500}, ServiceCode: 0}},
	}
	layer := noAccessLayer(4, []Pattern{leg1, leg2},
		[][]int{{0}, {0}, {1}, {1}},
		[][]Transfer{{}, {{ToStop: 2, DistanceMeters: 130}}, {}, {}})

	run := func(walkSpeed float64) []int {
		eng := NewRoundEngine(layer)
		eng.ActiveServicesToday = allSetBitSet(1)
		eng.WalkSpeedMetersPerSecond = walkSpeed
		s := NewScheduledSearch(4)
		require.NoError(t, eng.RunScheduled(s, 0, MAX_DURATION, map[int]int{0: 10}))
		return s.Rounds[len(s.Rounds)-1].BestTimes
	}

	slow := run(1.3)
	fast := run(2.6)
	for stop := range slow {
		assert.LessOrEqual(t, fast[stop], slow[stop], "stop %d", stop)
	}
	assert.NotEqual(t, UNREACHED, fast[3])
}

func TestDumpPath_WalksBackToTheBoardStop(t *testing.T) {
	pattern := Pattern{
		Stops:          []int{0, 1},
		ActiveServices: allSetBitSet(1),
		Trips: []Trip{
			{Arrivals: []int{600, 900}, Departures: []int{600, 900}, ServiceCode: 0},
		},
	}
	layer := noAccessLayer(2, []Pattern{pattern}, [][]int{{0}, {0}}, [][]Transfer{{}, {}})
	eng := NewRoundEngine(layer)
	eng.ActiveServicesToday = allSetBitSet(1)

	s := NewScheduledSearch(2)
	require.NoError(t, eng.RunScheduled(s, 0, MAX_DURATION, map[int]int{0: 60}))

	path := s.Rounds[len(s.Rounds)-1].DumpPath(1)
	assert.Equal(t, []int{1, 0}, path)
}

func TestDeepCopy_ClonesTheWholeRoundChain(t *testing.T) {
	round0 := NewRaptorState(1)
	round0.BestTimes[0] = 100
	round1 := round0.Copy()
	round1.Previous = round0

	clone := round1.DeepCopy()
	require.NotNil(t, clone.Previous)

	round0.BestTimes[0] = 999
	assert.Equal(t, 100, clone.Previous.BestTimes[0], "the cloned chain must not alias the original's arrays")
}
