package raptor

// RaptorState holds one round's mutable arrival-time vectors and
// back-pointers. Arrays are kept flat and parallel (bestTimes,
// bestNonTransferTimes, back-pointers) rather than as an array-of-structs,
// so elementwise min/copy stays cache-friendly in the hot loop.
type RaptorState struct {
	BestTimes            []int
	BestNonTransferTimes []int
	PreviousPatterns     []int
	PreviousStop         []int
	TransferStop         []int
	DepartureTime        int
	Previous             *RaptorState
}

// NewRaptorState allocates a state for nStops, with every arrival array
// filled with UNREACHED and every back-pointer cleared.
func NewRaptorState(nStops int) *RaptorState {
	s := &RaptorState{
		BestTimes:            make([]int, nStops),
		BestNonTransferTimes: make([]int, nStops),
		PreviousPatterns:     make([]int, nStops),
		PreviousStop:         make([]int, nStops),
		TransferStop:         make([]int, nStops),
	}
	for i := 0; i < nStops; i++ {
		s.BestTimes[i] = UNREACHED
		s.BestNonTransferTimes[i] = UNREACHED
		s.PreviousPatterns[i] = -1
		s.PreviousStop[i] = -1
		s.TransferStop[i] = -1
	}
	return s
}

// Copy returns a shallow clone: fresh backing arrays, but Previous is
// carried by reference (the chain of prior rounds is shared, not
// duplicated).
func (s *RaptorState) Copy() *RaptorState {
	out := &RaptorState{
		BestTimes:            append([]int(nil), s.BestTimes...),
		BestNonTransferTimes: append([]int(nil), s.BestNonTransferTimes...),
		PreviousPatterns:     append([]int(nil), s.PreviousPatterns...),
		PreviousStop:         append([]int(nil), s.PreviousStop...),
		TransferStop:         append([]int(nil), s.TransferStop...),
		DepartureTime:        s.DepartureTime,
		Previous:             s.Previous,
	}
	return out
}

// DeepCopy clones this state and the entire chain of Previous states. Used
// when a caller archives a per-iteration final-round state.
func (s *RaptorState) DeepCopy() *RaptorState {
	if s == nil {
		return nil
	}
	out := s.Copy()
	out.Previous = s.Previous.DeepCopy()
	return out
}

// Min elementwise-folds other into s: the two time fields are independent
// sources of truth and must not be cross-contaminated — a stop's
// BestNonTransferTimes only ever improves from other's BestNonTransferTimes,
// never from other's BestTimes, and vice versa.
func (s *RaptorState) Min(other *RaptorState) {
	for i := range s.BestTimes {
		if other.BestTimes[i] < s.BestTimes[i] {
			s.BestTimes[i] = other.BestTimes[i]
			s.TransferStop[i] = other.TransferStop[i]
		}
		if other.BestNonTransferTimes[i] < s.BestNonTransferTimes[i] {
			s.BestNonTransferTimes[i] = other.BestNonTransferTimes[i]
			s.PreviousPatterns[i] = other.PreviousPatterns[i]
			s.PreviousStop[i] = other.PreviousStop[i]
		}
	}
}

// DumpPath is a debug path trace from stop back toward the access stops:
// the returned slice starts at stop and follows the back-pointer chain
// through Previous rounds. Non-functional:
// intended for interactive debugging, not exercised by the search itself.
func (s *RaptorState) DumpPath(stop int) []int {
	path := []int{stop}
	cur := s
	at := stop
	for cur != nil {
		prev := cur.PreviousStop[at]
		if prev < 0 {
			if cur.TransferStop[at] >= 0 {
				at = cur.TransferStop[at]
				path = append(path, at)
				continue
			}
			break
		}
		at = prev
		path = append(path, at)
		cur = cur.Previous
	}
	return path
}
