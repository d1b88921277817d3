// Public domain.

// Package sky holds the celestial coordinate and time values shared by the
// observation codec and the filters.
//
// Angles are unit.Angle and unit.RA values from github.com/soniakeys/unit.
// Times are modified Julian dates.  Calendar conversions beyond the plain
// day count go through github.com/soniakeys/meeus/v3/julian.
package sky

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/angle"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"
)

// Coord is an equatorial coordinate.
type Coord struct {
	RA  unit.RA
	Dec unit.Angle
}

// CoordFromDeg constructs a Coord from decimal degrees.  RA is normalized
// to [0, 360).
func CoordFromDeg(ra, dec float64) Coord {
	return Coord{
		RA:  unit.RAFromRad(ra * math.Pi / 180),
		Dec: unit.AngleFromDeg(dec),
	}
}

// Deg returns RA and Dec in decimal degrees.
func (c Coord) Deg() (ra, dec float64) {
	return c.RA.Deg(), c.Dec.Deg()
}

// Separator computes the great circle distance between two coordinates.
type Separator interface {
	Sep(a, b Coord) unit.Angle
}

// Haversine is the default Separator.  It uses the haversine formulation,
// which stays accurate for small separations and near the poles.
type Haversine struct{}

// Sep implements Separator.
func (Haversine) Sep(a, b Coord) unit.Angle {
	return angle.SepHav(unit.Angle(a.RA), a.Dec, unit.Angle(b.RA), b.Dec)
}

// Sep returns the separation between a and b using Haversine.
func Sep(a, b Coord) unit.Angle {
	return Haversine{}.Sep(a, b)
}

// jdMJD is the Julian date of MJD 0.
const jdMJD = 2400000.5

// Time is a modified Julian date, UTC.
type Time float64

// TimeFromCalendar constructs a Time from a Gregorian calendar date with
// fractional day.  Day 1.0 is the start of the first day of the month.
func TimeFromCalendar(year, month int, day float64) Time {
	return Time(julian.CalendarGregorianToJD(year, month, day) - jdMJD)
}

// TimeFromTime converts a time.Time.
func TimeFromTime(t time.Time) Time {
	return Time(julian.TimeToJD(t) - jdMJD)
}

// TimeFromJD converts a Julian date.
func TimeFromJD(jd float64) Time {
	return Time(jd - jdMJD)
}

// MJD returns t as a float.
func (t Time) MJD() float64 { return float64(t) }

// JD returns the Julian date.
func (t Time) JD() float64 { return float64(t) + jdMJD }

// Time converts t to a time.Time in UTC.
func (t Time) Time() time.Time {
	return julian.JDToTime(t.JD())
}

// Calendar returns the Gregorian calendar date of t.
func (t Time) Calendar() (year, month int, day float64) {
	return julian.JDToCalendar(t.JD())
}

// Before reports whether t is earlier than u.
func (t Time) Before(u Time) bool { return t < u }

// Compare returns -1, 0, or +1 as t is before, equal to, or after u.
func (t Time) Compare(u Time) int {
	switch {
	case t < u:
		return -1
	case t > u:
		return 1
	}
	return 0
}

// DaysInMonth returns the number of days in a Gregorian month.
func DaysInMonth(year, month int) int {
	switch month {
	case 2:
		if julian.LeapYearGregorian(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	}
	return 31
}
