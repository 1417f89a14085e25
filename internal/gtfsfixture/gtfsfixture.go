// Package gtfsfixture adapts a parsed GTFS feed into the flattened
// raptor.TransitLayer the core search operates over. Network ingestion is
// explicitly out of scope for the core; this package is the thin,
// demo-only seam between a patrickbr/gtfsparser feed and the domain types.
//
// Only scheduled (non-frequency) service is derived from the feed here:
// frequencies.txt ingestion is a network-ingestion concern outside the
// core's contract, so frequency-bearing layers in the core package's tests
// are built directly from raptor.Pattern values instead.
package gtfsfixture

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/patrickbr/gtfsparser"
	"github.com/patrickbr/gtfsparser/gtfs"

	"github.com/transitcore/raptor"
)

type stopTimeRow struct {
	stopID string
	seq    int
	arr    int
	dep    int
}

// BuildLayer flattens feed into a TransitLayer plus a stop-id -> stop-index
// map. Stops are assigned indices in sorted-ID order for determinism.
// Trips that share an identical ordered stop sequence are grouped into one
// Pattern: a unique ordered stop sequence shared by one or more trips.
//
// Parent-station transfers are expanded to every child-stop pair.
func BuildLayer(feed *gtfsparser.Feed, observeHolidays bool) (*raptor.TransitLayer, map[string]int, error) {
	stopIndex, childrenOf := indexStops(feed)

	serviceDefs, codeByServiceID, err := indexServices(feed)
	if err != nil {
		return nil, nil, err
	}
	calendar := raptor.NewServiceCalendar(serviceDefs, len(serviceDefs), observeHolidays)

	type group struct {
		stops []int
		trips []raptor.Trip
	}
	groups := map[string]*group{}
	var order []string

	for _, trip := range feed.Trips {
		rows, err := sortedStopTimes(trip)
		if err != nil {
			return nil, nil, fmt.Errorf("gtfsfixture: trip %s: %w", trip.Id, err)
		}
		if len(rows) == 0 {
			continue
		}

		stops := make([]int, len(rows))
		arrivals := make([]int, len(rows))
		departures := make([]int, len(rows))
		keyParts := make([]string, len(rows))
		for i, row := range rows {
			idx, ok := stopIndex[row.stopID]
			if !ok {
				return nil, nil, fmt.Errorf("gtfsfixture: trip %s references unknown stop %s", trip.Id, row.stopID)
			}
			stops[i] = idx
			arrivals[i] = row.arr
			departures[i] = row.dep
			keyParts[i] = strconv.Itoa(idx)
		}
		key := strings.Join(keyParts, ",")

		g, ok := groups[key]
		if !ok {
			g = &group{stops: stops}
			groups[key] = g
			order = append(order, key)
		}

		serviceID := ""
		if trip.Service != nil {
			serviceID = trip.Service.Id()
		}
		code, ok := codeByServiceID[serviceID]
		if !ok {
			return nil, nil, fmt.Errorf("gtfsfixture: trip %s references unindexed service %s", trip.Id, serviceID)
		}

		g.trips = append(g.trips, raptor.Trip{
			Arrivals:    arrivals,
			Departures:  departures,
			ServiceCode: code,
		})
	}

	sort.Strings(order)
	patterns := make([]raptor.Pattern, 0, len(order))
	patternsForStop := make([][]int, len(stopIndex))
	for pi, key := range order {
		g := groups[key]
		sortTripsByFirstDeparture(g.trips)
		active := raptor.NewBitSet(len(serviceDefs))
		for _, t := range g.trips {
			active.Set(t.ServiceCode)
		}
		patterns = append(patterns, raptor.Pattern{
			Stops:          g.stops,
			HasFrequencies: false,
			ActiveServices: active,
			Trips:          g.trips,
		})
		for _, s := range g.stops {
			patternsForStop[s] = append(patternsForStop[s], pi)
		}
	}

	transfersForStop := buildTransfers(feed, stopIndex, childrenOf)

	layer := raptor.NewTransitLayer(patterns, patternsForStop, transfersForStop, calendar)
	return layer, stopIndex, nil
}

func indexStops(feed *gtfsparser.Feed) (map[string]int, map[string][]string) {
	ids := make([]string, 0, len(feed.Stops))
	childrenOf := map[string][]string{}
	for id, stop := range feed.Stops {
		ids = append(ids, id)
		if stop.Parent_station != nil {
			childrenOf[stop.Parent_station.Id] = append(childrenOf[stop.Parent_station.Id], id)
		}
	}
	sort.Strings(ids)
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return index, childrenOf
}

// indexServices assigns each GTFS service a small, dense code and derives a
// weekday-bitmap ServiceDef from gtfsparser's RawDaymap service accessor.
func indexServices(feed *gtfsparser.Feed) ([]raptor.ServiceDef, map[string]int, error) {
	ids := make([]string, 0, len(feed.Services))
	for id := range feed.Services {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	defs := make([]raptor.ServiceDef, 0, len(ids))
	codeByID := make(map[string]int, len(ids))
	for code, id := range ids {
		svc := feed.Services[id]
		def := raptor.ServiceDef{
			Code: code,
			// gtfsparser's calendar.txt start/end accessors aren't used
			// here; this fixture adapter deliberately leaves the weekday
			// window wide open and relies on Added/Removed
			// (calendar_dates.txt exceptions, applied the same way by
			// ActiveServices) to narrow it when a caller populates them
			// directly.
			Start:              raptor.ServiceDate{Year: 1, Month: 1, Day: 1},
			End:                raptor.ServiceDate{Year: 9999, Month: 12, Day: 31},
			Added:              map[raptor.ServiceDate]bool{},
			Removed:            map[raptor.ServiceDate]bool{},
			HolidayServiceCode: -1,
		}
		daymap := svc.RawDaymap()
		// GTFS calendar.txt columns are monday..sunday (bit 0 = Monday);
		// time.Weekday is sunday=0..saturday=6, so remap bit i -> weekday (i+1)%7.
		for i := 0; i < 7; i++ {
			if daymap&(1<<uint(i)) != 0 {
				def.Weekday[(i+1)%7] = true
			}
		}
		defs = append(defs, def)
		codeByID[id] = code
	}
	return defs, codeByID, nil
}

func sortedStopTimes(trip *gtfs.Trip) ([]stopTimeRow, error) {
	rows := make([]stopTimeRow, 0, len(trip.StopTimes))
	for _, st := range trip.StopTimes {
		stop := st.Stop()
		if stop == nil {
			return nil, fmt.Errorf("stop time with no stop")
		}
		rows = append(rows, stopTimeRow{
			stopID: stop.Id,
			seq:    st.Sequence(),
			arr:    st.Arrival_time().SecondsSinceMidnight(),
			dep:    st.Departure_time().SecondsSinceMidnight(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	return rows, nil
}

func sortTripsByFirstDeparture(trips []raptor.Trip) {
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].Departures[0] < trips[j].Departures[0]
	})
}

// buildTransfers expands feed.Transfers (including parent-station
// transfers, which apply to every child-stop pair) into per-stop transfer
// lists. GTFS transfers.txt carries a minimum transfer time in seconds, not
// a distance; this adapter stores it as distance at a 1.3 m/s reference
// walk speed (RoundEngine's own default) so that a request whose
// WalkSpeedMetersPerSecond matches that default reproduces the feed's
// min_transfer_time exactly, and a faster or slower request scales it
// accordingly rather than ignoring it. This is a documented approximation:
// walk speed is fixed per-request on ProfileRequest, not on the network.
func buildTransfers(feed *gtfsparser.Feed, stopIndex map[string]int, childrenOf map[string][]string) [][]raptor.Transfer {
	const referenceWalkSpeed = 1.3
	out := make([][]raptor.Transfer, len(stopIndex))

	expand := func(stopID string) []string {
		if kids, ok := childrenOf[stopID]; ok && len(kids) > 0 {
			return kids
		}
		return []string{stopID}
	}

	for key, transfer := range feed.Transfers {
		for _, from := range expand(key.From_stop.Id) {
			for _, to := range expand(key.To_stop.Id) {
				if from == to {
					continue
				}
				fi, fok := stopIndex[from]
				ti, tok := stopIndex[to]
				if !fok || !tok {
					continue
				}
				seconds := transfer.Min_transfer_time
				if seconds <= 0 {
					continue
				}
				out[fi] = append(out[fi], raptor.Transfer{
					ToStop:         ti,
					DistanceMeters: float64(seconds) * referenceWalkSpeed,
				})
			}
		}
	}
	return out
}
