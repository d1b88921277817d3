// Copyright 2012 Sonia Keys
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mpc

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind classifies a Designation.
type Kind int

const (
	// Numbered is a permanently numbered minor planet.
	Numbered Kind = iota + 1
	// Provisional is a provisional minor planet designation, including
	// the Palomar-Leiden and Trojan survey designations.
	Provisional
	// Comet is a numbered periodic comet or a comet provisional
	// designation.
	Comet
	// Temporary is an observer assigned designation, accepted only
	// when Decoder.Temporary is set.
	Temporary
)

var kindNames = [...]string{"", "numbered", "provisional", "comet", "temporary"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Designation is a decoded object designation, columns 1-12 of the
// 80 column format.
type Designation struct {
	Kind Kind
	// Number is the minor planet number or periodic comet number,
	// 0 if not numbered.
	Number int
	// Orbit is the comet orbit type, one of PCDXIA, or 0 for minor planets.
	Orbit byte
	// Provisional is the unpacked provisional designation, such as
	// "2003 AB1", "2040 P-L", or for comets "1995 O1".
	Provisional string
	// Temporary is the observer assigned designation.
	Temporary string
}

// ErrDesignation is wrapped by all designation decoding errors.
var ErrDesignation = errors.New("invalid designation")

func desigErr(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDesignation, fmt.Sprintf(format, a...))
}

// Key returns the logical designation used for identity comparison.
// Designations with textually different packed fields but the same
// identity have the same Key.
func (d Designation) Key() string {
	switch d.Kind {
	case Numbered:
		return "(" + strconv.Itoa(d.Number) + ")"
	case Comet:
		if d.Number > 0 {
			return strconv.Itoa(d.Number) + string(d.Orbit)
		}
		return string(d.Orbit) + "/" + d.Provisional
	case Provisional:
		return d.Provisional
	case Temporary:
		return d.Temporary
	}
	return ""
}

func (d Designation) String() string {
	return d.Key()
}

// Pack returns the 12 column packed form.
func (d Designation) Pack() (string, error) {
	var num, prov string
	var err error
	switch d.Kind {
	case Numbered:
		if num, err = packNumber(d.Number); err != nil {
			return "", err
		}
	case Comet:
		if strings.IndexByte(cometOrbits, d.Orbit) < 0 || d.Orbit == 0 {
			return "", desigErr("comet orbit type %q", d.Orbit)
		}
		switch {
		case d.Number == 0:
			num = "    " + string(d.Orbit)
		case d.Number < 10000:
			num = fmt.Sprintf("%04d%c", d.Number, d.Orbit)
		default:
			return "", desigErr("comet number %d", d.Number)
		}
	case Provisional:
	case Temporary:
		if len(d.Temporary) > 7 {
			return "", desigErr("temporary designation %q too long", d.Temporary)
		}
		return fmt.Sprintf("%5s%-7s", "", d.Temporary), nil
	default:
		return "", desigErr("kind %v", d.Kind)
	}
	if num == "" {
		num = "     "
	}
	switch {
	case d.Provisional == "":
		if d.Kind == Provisional || (d.Kind == Comet && d.Number == 0) {
			return "", desigErr("missing provisional designation")
		}
		prov = "       "
	case d.Kind == Comet:
		prov, err = packCometProvisional(d.Provisional)
	default:
		prov, err = packProvisional(d.Provisional)
	}
	if err != nil {
		return "", err
	}
	return num + prov, nil
}

// base 62 digits used by packed numbers and packed cycle counts.
const b62 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const cometOrbits = "PCDXIA"

func b62Val(c byte) int {
	return strings.IndexByte(b62, c)
}

func packNumber(n int) (string, error) {
	switch {
	case n <= 0:
		return "", desigErr("number %d", n)
	case n < 100000:
		return fmt.Sprintf("%05d", n), nil
	case n < 620000:
		return fmt.Sprintf("%c%04d", b62[n/10000], n%10000), nil
	case n < 620000+62*62*62*62:
		n -= 620000
		b := []byte{'~', 0, 0, 0, 0}
		for i := 4; i > 0; i-- {
			b[i] = b62[n%62]
			n /= 62
		}
		return string(b), nil
	}
	return "", desigErr("number %d too large", n)
}

// unpackNumber decodes columns 1-5 as a minor planet number.
func unpackNumber(f string) (int, bool) {
	switch {
	case allDigits(f):
		n, _ := strconv.Atoi(f)
		return n, n > 0
	case f[0] == '~':
		n := 0
		for i := 1; i < 5; i++ {
			v := b62Val(f[i])
			if v < 0 {
				return 0, false
			}
			n = n*62 + v
		}
		return n + 620000, true
	case allDigits(f[1:]):
		v := b62Val(f[0])
		if v < 10 {
			return 0, false
		}
		n, _ := strconv.Atoi(f[1:])
		return v*10000 + n, true
	}
	return 0, false
}

var centuries = map[byte]int{'I': 18, 'J': 19, 'K': 20}

func centuryLetter(year int) (byte, bool) {
	for c, v := range centuries {
		if v == year/100 {
			return c, true
		}
	}
	return 0, false
}

func halfMonth(c byte) bool {
	return c >= 'A' && c <= 'Y' && c != 'I'
}

func orderLetter(c byte) bool {
	return c >= 'A' && c <= 'Z' && c != 'I'
}

var surveys = map[string]string{
	"PLS": "P-L",
	"T1S": "T-1",
	"T2S": "T-2",
	"T3S": "T-3",
}

// unpackYearCycle decodes the shared leading part of packed provisional
// designations: century, year, half-month, and cycle count.
func unpackYearCycle(p string) (year int, half byte, cycle int, ok bool) {
	c, ok := centuries[p[0]]
	if !ok || !allDigits(p[1:3]) || !halfMonth(p[3]) {
		return 0, 0, 0, false
	}
	yy, _ := strconv.Atoi(p[1:3])
	tens := b62Val(p[4])
	if tens < 0 || p[5] < '0' || p[5] > '9' {
		return 0, 0, 0, false
	}
	return c*100 + yy, p[3], tens*10 + int(p[5]-'0'), true
}

// unpackProvisional decodes a 7 character packed minor planet provisional
// designation.
func unpackProvisional(p string) (string, bool) {
	if s, ok := surveys[p[:3]]; ok {
		if !allDigits(p[3:]) {
			return "", false
		}
		return p[3:] + " " + s, true
	}
	year, half, cycle, ok := unpackYearCycle(p)
	if !ok || !orderLetter(p[6]) {
		return "", false
	}
	s := fmt.Sprintf("%d %c%c", year, half, p[6])
	if cycle > 0 {
		s += strconv.Itoa(cycle)
	}
	return s, true
}

// unpackCometProvisional decodes a 7 character packed comet provisional
// designation.  The last column is '0' or a lower case fragment letter.
// An upper case last column is a minor planet style designation given to
// a comet.
func unpackCometProvisional(p string) (string, bool) {
	if orderLetter(p[6]) {
		return unpackProvisional(p)
	}
	year, half, cycle, ok := unpackYearCycle(p)
	if !ok || cycle == 0 {
		return "", false
	}
	s := fmt.Sprintf("%d %c%d", year, half, cycle)
	switch f := p[6]; {
	case f == '0':
	case f >= 'a' && f <= 'z':
		s += "-" + strings.ToUpper(string(f))
	default:
		return "", false
	}
	return s, true
}

var (
	rxProv   = regexp.MustCompile(`^(\d{4}) ([A-Z])([A-Z])(\d*)$`)
	rxSurvey = regexp.MustCompile(`^(\d{4}) (P-L|T-[123])$`)
	rxComet  = regexp.MustCompile(`^(\d{4}) ([A-Z])(\d+)(?:-([A-Z]))?$`)
)

func packYearCycle(year int, half byte, cycle int) (string, error) {
	c, ok := centuryLetter(year)
	if !ok || !halfMonth(half) {
		return "", desigErr("year %d, half month %q", year, half)
	}
	if cycle < 0 || cycle >= 620 {
		return "", desigErr("cycle count %d", cycle)
	}
	return fmt.Sprintf("%c%02d%c%c%d", c, year%100, half, b62[cycle/10], cycle%10), nil
}

// packProvisional packs an unpacked minor planet provisional designation.
func packProvisional(s string) (string, error) {
	if m := rxSurvey.FindStringSubmatch(s); m != nil {
		for k, v := range surveys {
			if v == m[2] {
				return k + m[1], nil
			}
		}
	}
	m := rxProv.FindStringSubmatch(s)
	if m == nil || !orderLetter(m[3][0]) {
		return "", desigErr("provisional designation %q", s)
	}
	year, _ := strconv.Atoi(m[1])
	cycle := 0
	if m[4] != "" {
		var err error
		if cycle, err = strconv.Atoi(m[4]); err != nil || cycle == 0 {
			return "", desigErr("provisional designation %q", s)
		}
	}
	yc, err := packYearCycle(year, m[2][0], cycle)
	if err != nil {
		return "", err
	}
	return yc + m[3], nil
}

// packCometProvisional packs an unpacked comet provisional designation.
func packCometProvisional(s string) (string, error) {
	m := rxComet.FindStringSubmatch(s)
	if m == nil {
		return packProvisional(s)
	}
	year, _ := strconv.Atoi(m[1])
	cycle, err := strconv.Atoi(m[3])
	if err != nil || cycle == 0 {
		return "", desigErr("comet designation %q", s)
	}
	yc, err := packYearCycle(year, m[2][0], cycle)
	if err != nil {
		return "", err
	}
	if m[4] == "" {
		return yc + "0", nil
	}
	return yc + strings.ToLower(m[4]), nil
}

// unpackDesig decodes the 12 column designation field.  Observer assigned
// designations are accepted only if temp is true.
func unpackDesig(f string, temp bool) (Designation, error) {
	var d Designation
	num, prov := f[:5], f[5:12]
	blankNum := strings.TrimSpace(num) == ""
	blankProv := strings.TrimSpace(prov) == ""
	switch {
	case blankNum:
	case strings.IndexByte(cometOrbits, num[4]) >= 0 &&
		(allDigits(num[:4]) || num[:4] == "    "):
		d.Kind = Comet
		d.Orbit = num[4]
		if num[:4] != "    " {
			d.Number, _ = strconv.Atoi(num[:4])
			if d.Number == 0 {
				return d, desigErr("comet number %q", num)
			}
		}
	default:
		n, ok := unpackNumber(num)
		if !ok {
			return d, desigErr("packed number %q", num)
		}
		d.Kind = Numbered
		d.Number = n
	}
	if blankProv {
		if d.Kind == 0 || (d.Kind == Comet && d.Number == 0) {
			return d, desigErr("blank designation %q", f)
		}
		return d, nil
	}
	if d.Kind == Comet {
		p, ok := unpackCometProvisional(prov)
		if !ok {
			return d, desigErr("packed comet designation %q", prov)
		}
		d.Provisional = p
		return d, nil
	}
	if p, ok := unpackProvisional(prov); ok {
		d.Provisional = p
		if d.Kind == 0 {
			d.Kind = Provisional
		}
		return d, nil
	}
	if temp && d.Kind == 0 && prov[0] != ' ' {
		d.Kind = Temporary
		d.Temporary = strings.TrimRight(prov, " ")
		return d, nil
	}
	return d, desigErr("packed provisional designation %q", prov)
}

var (
	rxNumbered  = regexp.MustCompile(`^\(?(\d+)\)?$`)
	rxCometNum  = regexp.MustCompile(`^(\d+)([PCDXIA])$`)
	rxCometProv = regexp.MustCompile(`^([PCDXIA])/(.+)$`)
)

// ParseDesignation parses a designation as a user would write it, either
// unpacked ("(433)", "433", "2003 AB1", "2040 P-L", "1P", "C/1995 O1") or
// packed in 5, 7, or 12 columns ("00433", "K03A01B").  Anything else that
// fits in 7 columns is taken as a temporary designation.
func ParseDesignation(s string) (Designation, error) {
	t := strings.TrimSpace(s)
	if m := rxNumbered.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Designation{}, desigErr("number %q", t)
		}
		return Designation{Kind: Numbered, Number: n}, nil
	}
	if m := rxCometNum.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Designation{}, desigErr("comet number %q", t)
		}
		return Designation{Kind: Comet, Number: n, Orbit: m[2][0]}, nil
	}
	if m := rxCometProv.FindStringSubmatch(t); m != nil {
		d := Designation{Kind: Comet, Orbit: m[1][0], Provisional: m[2]}
		return canonical(d)
	}
	if rxProv.MatchString(t) || rxSurvey.MatchString(t) {
		return canonical(Designation{Kind: Provisional, Provisional: t})
	}
	if len(s) == 12 {
		return unpackDesig(s, true)
	}
	switch len(t) {
	case 5:
		if d, err := unpackDesig(t+"       ", false); err == nil {
			return d, nil
		}
	case 7:
		if d, err := unpackDesig("     "+t, false); err == nil {
			return d, nil
		}
	}
	if t != "" && len(t) <= 7 {
		return Designation{Kind: Temporary, Temporary: t}, nil
	}
	return Designation{}, desigErr("%q", s)
}

// canonical normalizes d by packing and unpacking it.
func canonical(d Designation) (Designation, error) {
	p, err := d.Pack()
	if err != nil {
		return Designation{}, err
	}
	return unpackDesig(p, false)
}
