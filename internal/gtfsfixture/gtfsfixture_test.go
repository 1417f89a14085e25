package gtfsfixture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transitcore/raptor"
)

func TestSortTripsByFirstDeparture(t *testing.T) {
	trips := []raptor.Trip{
		{Departures: []int{900, 1000}},
		{Departures: []int{600, 700}},
		{Departures: []int{750, 850}},
	}
	sortTripsByFirstDeparture(trips)

	assert.Equal(t, 600, trips[0].Departures[0])
	assert.Equal(t, 750, trips[1].Departures[0])
	assert.Equal(t, 900, trips[2].Departures[0])
}
