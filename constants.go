package raptor

import "math"

// UNREACHED marks a stop or target that no search has arrived at yet.
const UNREACHED = math.MaxInt32

// MAX_DURATION is "effectively infinite": a search-wide duration cap that in
// practice is never hit by a real transit day, but is always honored.
const MAX_DURATION = math.MaxInt32 - 48*3600

// BOARD_SLACK_SECONDS is the minimum dwell time required before boarding a
// vehicle after arriving at a stop.
const BOARD_SLACK_SECONDS = 60

// DEPARTURE_STEP_SEC is the spacing between scheduled search departures in a
// range-RAPTOR sweep.
const DEPARTURE_STEP_SEC = 60

// BoardingAssumption selects how a frequency-based trip's board time at a
// stop is computed.
type BoardingAssumption int

const (
	// BestCase assumes the passenger boards the very next departure implied
	// by the frequency entry's phase, i.e. no waiting beyond slack.
	BestCase BoardingAssumption = iota
	// WorstCase assumes a full headway of waiting is always incurred.
	WorstCase
	// Random draws a per-entry boarding phase offset via FrequencyOffsets.
	Random
)

func (b BoardingAssumption) String() string {
	switch b {
	case BestCase:
		return "BEST_CASE"
	case WorstCase:
		return "WORST_CASE"
	case Random:
		return "RANDOM"
	default:
		return "UNKNOWN"
	}
}
