// Copyright 2012 Sonia Keys
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mpc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"

	"github.com/soniakeys/obs80/sky"
)

// maxDigits keeps Decimal.Units within int64.
const maxDigits = 18

var errNotNumeric = errors.New("not a non-negative number")

// Decimal is an exact fixed point value, Units / 10^Places.
//
// Fields of the 80 column format are decimal literals of varying
// precision.  Holding them as Decimal rather than float64 keeps the written
// precision, so a value can be formatted back the way it was read.
type Decimal struct {
	Units  int64
	Places int
}

// ParseDecimal parses a non-negative decimal literal such as "05.03484".
// Leading and trailing blanks are ignored.  Signs and exponents are not
// accepted.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	ip, fp, dot := strings.Cut(s, ".")
	if ip == "" || len(ip)+len(fp) > maxDigits || !allDigits(ip) ||
		(dot && !allDigits(fp)) {
		return Decimal{}, fmt.Errorf("%q %w", s, errNotNumeric)
	}
	var u int64
	for i := 0; i < len(ip); i++ {
		u = u*10 + int64(ip[i]-'0')
	}
	for i := 0; i < len(fp); i++ {
		u = u*10 + int64(fp[i]-'0')
	}
	return Decimal{Units: u, Places: len(fp)}, nil
}

// DecimalFromFloat rounds v to the given number of decimal places.
func DecimalFromFloat(v float64, places int) Decimal {
	return Decimal{
		Units:  int64(math.Round(v * pow10(places))),
		Places: places,
	}
}

func pow10(n int) float64 {
	return math.Pow10(n)
}

func ipow10(n int) int64 {
	p := int64(1)
	for ; n > 0; n-- {
		p *= 10
	}
	return p
}

// Float returns d as a float64.
func (d Decimal) Float() float64 {
	return float64(d.Units) / pow10(d.Places)
}

// Int returns the integer part of d.
func (d Decimal) Int() int64 {
	return d.Units / ipow10(d.Places)
}

// Cmp compares d with e by value: -1, 0 or +1.
func (d Decimal) Cmp(e Decimal) int {
	a, b := d.Units, e.Units
	switch {
	case d.Places < e.Places:
		a *= ipow10(e.Places - d.Places)
	case d.Places > e.Places:
		b *= ipow10(d.Places - e.Places)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String formats d with no padding.
func (d Decimal) String() string {
	return d.format(1, '0')
}

// format writes the integer part padded to intWidth with pad, then the
// fraction with exactly d.Places digits.
func (d Decimal) format(intWidth int, pad byte) string {
	p := ipow10(d.Places)
	ip := strconv.FormatInt(d.Units/p, 10)
	if n := intWidth - len(ip); n > 0 {
		ip = strings.Repeat(string(pad), n) + ip
	}
	if d.Places == 0 {
		return ip
	}
	fp := strconv.FormatInt(d.Units%p, 10)
	return ip + "." + strings.Repeat("0", d.Places-len(fp)) + fp
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoiField parses a blank padded unsigned integer sub-field.
func atoiField(s string) (int, error) {
	t := strings.TrimSpace(s)
	if t == "" || !allDigits(t) {
		return 0, fmt.Errorf("%q %w", s, errNotNumeric)
	}
	return strconv.Atoi(t)
}

// Date is an observation date as written: year, month, and fractional day.
type Date struct {
	Year, Month int
	Day         Decimal
}

// Validate checks month range and that 1 <= Day < days in month + 1.
func (d Date) Validate() error {
	if d.Year < 0 || d.Year > 9999 {
		return fmt.Errorf("year %d out of range", d.Year)
	}
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("month %d out of range", d.Month)
	}
	if f := d.Day.Float(); f < 1 || f >= float64(sky.DaysInMonth(d.Year, d.Month)+1) {
		return fmt.Errorf("day %s out of range for %04d-%02d", d.Day, d.Year, d.Month)
	}
	return nil
}

// Time returns the date as a sky.Time.
func (d Date) Time() sky.Time {
	return sky.TimeFromCalendar(d.Year, d.Month, d.Day.Float())
}

// String formats the date as the three date sub-fields, "2003 01 05.5".
func (d Date) String() string {
	return fmt.Sprintf("%04d %02d %s", d.Year, d.Month, d.Day.format(2, '0'))
}

// RA is right ascension as written: hours, minutes, and seconds.
type RA struct {
	Hour, Min int
	Sec       Decimal
}

// Validate checks that RA is within [0h, 24h).
func (r RA) Validate() error {
	if r.Hour < 0 || r.Hour > 23 || r.Min < 0 || r.Min > 59 ||
		r.Sec.Units < 0 || r.Sec.Float() >= 60 {
		return fmt.Errorf("%s out of range", r)
	}
	return nil
}

// Angle returns r as a unit.RA.
func (r RA) Angle() unit.RA {
	return unit.NewRA(r.Hour, r.Min, r.Sec.Float())
}

func (r RA) String() string {
	return fmt.Sprintf("%02d %02d %s", r.Hour, r.Min, r.Sec.format(2, '0'))
}

// RAFromAngle converts an angle to sexagesimal hours, rounding seconds to
// the given number of places.
func RAFromAngle(ra unit.RA, places int) RA {
	s := DecimalFromFloat(ra.Hour()*3600, places)
	p := ipow10(places)
	day := 24 * 3600 * p
	u := s.Units % day
	secs := u / p
	return RA{
		Hour: int(secs / 3600),
		Min:  int(secs / 60 % 60),
		Sec:  Decimal{Units: u - (secs-secs%60)*p, Places: places},
	}
}

// Dec is declination as written: sign, degrees, minutes, and seconds.
type Dec struct {
	Neg      bool
	Deg, Min int
	Sec      Decimal
}

// Validate checks that Dec is within [-90, +90].
func (d Dec) Validate() error {
	if d.Deg < 0 || d.Deg > 90 || d.Min < 0 || d.Min > 59 ||
		d.Sec.Units < 0 || d.Sec.Float() >= 60 ||
		(d.Deg == 90 && (d.Min != 0 || d.Sec.Units != 0)) {
		return fmt.Errorf("%s out of range", d)
	}
	return nil
}

// Angle returns d as a unit.Angle.
func (d Dec) Angle() unit.Angle {
	var neg byte = '+'
	if d.Neg {
		neg = '-'
	}
	return unit.NewAngle(neg, d.Deg, d.Min, d.Sec.Float())
}

func (d Dec) sign() byte {
	if d.Neg {
		return '-'
	}
	return '+'
}

func (d Dec) String() string {
	return fmt.Sprintf("%c%02d %02d %s", d.sign(), d.Deg, d.Min, d.Sec.format(2, '0'))
}

// DecFromAngle converts an angle to sexagesimal degrees, rounding seconds
// to the given number of places.
func DecFromAngle(a unit.Angle, places int) Dec {
	deg := a.Deg()
	d := Dec{Neg: deg < 0}
	s := DecimalFromFloat(math.Abs(deg)*3600, places)
	p := ipow10(places)
	secs := s.Units / p
	d.Deg = int(secs / 3600)
	d.Min = int(secs / 60 % 60)
	d.Sec = Decimal{Units: s.Units - (secs-secs%60)*p, Places: places}
	return d
}

// Mag is an observed magnitude.  A blank magnitude field decodes to the
// zero Mag, which is valid and means no magnitude was reported.
type Mag struct {
	Value Decimal
	Valid bool
}

func (m Mag) String() string {
	if !m.Valid {
		return ""
	}
	return m.Value.String()
}
