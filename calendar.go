package raptor

import (
	"time"

	calpkg "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// ServiceDate is a calendar date in the transit agency's local time zone.
// Only the date components are meaningful; time-of-day is ignored.
type ServiceDate struct {
	Year, Month, Day int
}

func (d ServiceDate) toTime() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// ServiceCalendar resolves which service codes (GTFS calendar.txt /
// calendar_dates.txt rows, flattened to small integers by the out-of-scope
// ingestion layer) are active on a given date. A service is active when its
// weekday bit is set and the date isn't an explicit removal, or when the
// date is an explicit addition, mirroring standard GTFS calendar semantics.
//
// Holiday handling is layered on top: when a date falls on an agency
// holiday and the service has a configured HolidayServiceCode, that code is
// substituted for the weekday-derived one, the same gate
// OpenTransitTools-transitcast's aggregator uses to pick a holiday model
// feature for a trip.
type ServiceCalendar struct {
	Services   []ServiceDef
	NumCodes   int
	holidays   *calpkg.BusinessCalendar
	useHoliday bool
}

// ServiceDef describes one GTFS calendar row flattened to a small int code.
type ServiceDef struct {
	Code int
	// Weekday[i] is true when the service runs on time.Weekday(i).
	Weekday        [7]bool
	Start, End     ServiceDate
	Added, Removed map[ServiceDate]bool
	// HolidayServiceCode, if >= 0, replaces Code on an agency holiday.
	HolidayServiceCode int
}

// NewServiceCalendar builds a calendar from flattened GTFS service
// definitions. observeHolidays enables the rickar/cal-backed US federal
// holiday table; agencies that don't special-case holiday service can pass
// false and every ServiceDef.HolidayServiceCode is ignored.
func NewServiceCalendar(services []ServiceDef, numCodes int, observeHolidays bool) *ServiceCalendar {
	c := &ServiceCalendar{Services: services, NumCodes: numCodes, useHoliday: observeHolidays}
	if observeHolidays {
		cal := calpkg.NewBusinessCalendar()
		cal.AddHoliday(
			us.NewYear,
			us.MlkDay,
			us.MemorialDay,
			us.IndependenceDay,
			us.LaborDay,
			us.ThanksgivingDay,
			us.ChristmasDay,
			us.Juneteenth,
		)
		c.holidays = cal
	}
	return c
}

func (c *ServiceCalendar) isHoliday(d ServiceDate) bool {
	if !c.useHoliday || c.holidays == nil {
		return false
	}
	_, observed, _ := c.holidays.IsHoliday(d.toTime())
	return observed
}

// ActiveServices returns the bitset, sized NumCodes, of service codes
// running on date.
func (c *ServiceCalendar) ActiveServices(date ServiceDate) *BitSet {
	out := NewBitSet(c.NumCodes)
	holiday := c.isHoliday(date)
	for _, svc := range c.Services {
		code := svc.Code
		if holiday && svc.HolidayServiceCode >= 0 {
			code = svc.HolidayServiceCode
		}
		if svc.Removed[date] {
			continue
		}
		if svc.Added[date] {
			out.Set(code)
			continue
		}
		if dateBefore(date, svc.Start) || dateAfter(date, svc.End) {
			continue
		}
		wd := date.toTime().Weekday()
		if svc.Weekday[int(wd)] {
			out.Set(code)
		}
	}
	return out
}

func dateBefore(a, b ServiceDate) bool {
	return a.toTime().Before(b.toTime())
}

func dateAfter(a, b ServiceDate) bool {
	return a.toTime().After(b.toTime())
}
