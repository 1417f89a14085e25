package raptor

// Trip is a single vehicle run over a pattern, or a frequency-based family
// of anonymous runs sharing one phase. Exactly one of the scheduled arrays
// or the frequency arrays is meaningful for a given trip: HeadwaySeconds is
// nil for a scheduled trip.
type Trip struct {
	// Arrivals and Departures are parallel to the owning pattern's Stops,
	// one entry per stop position.
	Arrivals   []int
	Departures []int

	ServiceCode int

	// HeadwaySeconds, StartTimes, EndTimes are equal-length frequency
	// entries, or nil for a scheduled trip.
	HeadwaySeconds []int
	StartTimes     []int
	EndTimes       []int
}

// IsFrequency reports whether this trip is a frequency entry family rather
// than a single scheduled run.
func (t *Trip) IsFrequency() bool { return t.HeadwaySeconds != nil }

// Pattern is a unique ordered sequence of stops shared by one or more trips.
type Pattern struct {
	Stops          []int
	HasFrequencies bool
	ActiveServices *BitSet
	Trips          []Trip
}

// Transfer is a single walking leg from one stop to another.
type Transfer struct {
	ToStop         int
	DistanceMeters float64
}

// TransitLayer is the flattened, pre-indexed timetable the search operates
// over. It is built once per graph and is deeply immutable afterward: safe
// to share, read-only, across any number of concurrent searches.
type TransitLayer struct {
	Patterns []Pattern

	// PatternsForStop[s] lists every pattern index that visits stop s.
	PatternsForStop [][]int
	// TransfersForStop[s] lists every transfer leg originating at stop s.
	TransfersForStop [][]Transfer

	calendar *ServiceCalendar
}

// NewTransitLayer assembles a TransitLayer from its flattened fields. It is
// the out-of-scope ingestion layer's single handoff point into the core: by
// the time this is called, patterns/trips/transfers have already been
// derived from GTFS/shapefile/OSM sources elsewhere. Walk speed is
// deliberately not a layer field: it lives on ProfileRequest instead, since
// it is a per-search profile parameter, not a property of the network.
func NewTransitLayer(patterns []Pattern, patternsForStop [][]int, transfersForStop [][]Transfer, calendar *ServiceCalendar) *TransitLayer {
	return &TransitLayer{
		Patterns:         patterns,
		PatternsForStop:  patternsForStop,
		TransfersForStop: transfersForStop,
		calendar:         calendar,
	}
}

// NStops returns the number of stops in the layer.
func (l *TransitLayer) NStops() int { return len(l.PatternsForStop) }

// GetStopCount returns the number of stops in the layer. Kept as a separate
// method (rather than relying only on NStops) since it's part of the
// TransitLayer inbound interface callers are expected to use.
func (l *TransitLayer) GetStopCount() int { return l.NStops() }

// NPatterns returns the number of patterns in the layer.
func (l *TransitLayer) NPatterns() int { return len(l.Patterns) }

// GetActiveServicesForDate returns the bitset of service codes active on
// the given date, folding in holiday overrides. See calendar.go.
func (l *TransitLayer) GetActiveServicesForDate(date ServiceDate) *BitSet {
	return l.calendar.ActiveServices(date)
}
