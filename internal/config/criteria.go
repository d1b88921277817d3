// Public domain.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/unit"
	"gopkg.in/yaml.v3"

	"github.com/soniakeys/obs80/filter"
	"github.com/soniakeys/obs80/sky"
)

// CriteriaFile is the YAML form of filter.Criteria.
//
//	center: [10, 5]          # RA, Dec degrees
//	radius: 1                # degrees
//	from: "2003-01-01"       # RFC 3339, YYYY-MM-DD, or mjd:N
//	to: "mjd:52700"
//	designations: ["433", "2003 AB1"]
//	pattern: "2003 A*"
//	obscodes: ["568", "704"]
//	mag_min: 15
//	mag_max: 20
//	box: {ra_min: 350, ra_max: 10, dec_min: -5, dec_max: 5}
type CriteriaFile struct {
	Center       []float64 `yaml:"center"`
	Radius       float64   `yaml:"radius"`
	From         string    `yaml:"from"`
	To           string    `yaml:"to"`
	Designations []string  `yaml:"designations"`
	Pattern      string    `yaml:"pattern"`
	Obscodes     []string  `yaml:"obscodes"`
	MagMin       *float64  `yaml:"mag_min"`
	MagMax       *float64  `yaml:"mag_max"`
	Box          *BoxFile  `yaml:"box"`
}

// BoxFile is the YAML form of filter.Box.
type BoxFile struct {
	RAMin  float64 `yaml:"ra_min"`
	RAMax  float64 `yaml:"ra_max"`
	DecMin float64 `yaml:"dec_min"`
	DecMax float64 `yaml:"dec_max"`
}

// LoadCriteria reads a criteria file.  Unknown keys are an error.
func LoadCriteria(path string) (*CriteriaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cf := &CriteriaFile{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("criteria file %s: %w", path, err)
	}
	return cf, nil
}

// Criteria converts cf to filter.Criteria.
func (cf *CriteriaFile) Criteria() (filter.Criteria, error) {
	c := filter.Criteria{
		Designations: cf.Designations,
		Pattern:      cf.Pattern,
		Obscodes:     cf.Obscodes,
		MagMin:       cf.MagMin,
		MagMax:       cf.MagMax,
	}
	switch len(cf.Center) {
	case 0:
		if cf.Radius != 0 {
			return c, errors.New("radius given without center")
		}
	case 2:
		p := sky.CoordFromDeg(cf.Center[0], cf.Center[1])
		c.Center = &p
		c.Radius = unit.AngleFromDeg(cf.Radius)
	default:
		return c, fmt.Errorf("center %v: want [ra, dec]", cf.Center)
	}
	if cf.From != "" {
		t, err := ParseTime(cf.From)
		if err != nil {
			return c, err
		}
		c.From = &t
	}
	if cf.To != "" {
		t, err := ParseTime(cf.To)
		if err != nil {
			return c, err
		}
		c.To = &t
	}
	if b := cf.Box; b != nil {
		c.Box = &filter.Box{RAMin: b.RAMin, RAMax: b.RAMax, DecMin: b.DecMin, DecMax: b.DecMax}
	}
	return c, nil
}

// ParseTime parses a time bound: an RFC 3339 timestamp, a date
// YYYY-MM-DD meaning 0h UTC, or mjd:N for a modified Julian date.
func ParseTime(s string) (sky.Time, error) {
	if m, ok := strings.CutPrefix(s, "mjd:"); ok {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, fmt.Errorf("time %q: %w", s, err)
		}
		return sky.Time(f), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return sky.TimeFromCalendar(t.Year(), int(t.Month()), float64(t.Day())), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("time %q: want RFC 3339, YYYY-MM-DD, or mjd:N", s)
	}
	return sky.TimeFromTime(t.UTC()), nil
}

// ParseCenter parses "ra,dec" in degrees.
func ParseCenter(s string) ([]float64, error) {
	ra, dec, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("center %q: want ra,dec", s)
	}
	r, err := strconv.ParseFloat(strings.TrimSpace(ra), 64)
	if err != nil {
		return nil, fmt.Errorf("center %q: %w", s, err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(dec), 64)
	if err != nil {
		return nil, fmt.Errorf("center %q: %w", s, err)
	}
	return []float64{r, d}, nil
}

// ParseBox parses "ra_min,ra_max,dec_min,dec_max" in degrees.
func ParseBox(s string) (*BoxFile, error) {
	f := strings.Split(s, ",")
	if len(f) != 4 {
		return nil, fmt.Errorf("box %q: want ra_min,ra_max,dec_min,dec_max", s)
	}
	var v [4]float64
	for i, t := range f {
		x, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, fmt.Errorf("box %q: %w", s, err)
		}
		v[i] = x
	}
	return &BoxFile{RAMin: v[0], RAMax: v[1], DecMin: v[2], DecMax: v[3]}, nil
}
