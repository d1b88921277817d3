// Public domain.

// Package filter selects observations by position, time, object identity,
// observatory, magnitude, and RA/Dec box.
//
// Criteria are compiled once into a Filter.  A Filter tests records one at
// a time, so it can be applied to a stream as it is read with
// Filter.Reader, or to a Catalog already in memory with Select.
//
// Categories combine with AND.  Values within a category, such as several
// observatory codes, combine with OR.
package filter

import (
	"errors"
	"fmt"
	"path"

	"github.com/soniakeys/unit"

	"github.com/soniakeys/obs80/mpc"
	"github.com/soniakeys/obs80/sky"
)

// Box is a rectangle in RA and Dec, in degrees, bounds inclusive.
//
// When RAMin > RAMax the range wraps through 0, so RAMin 350, RAMax 10
// selects a 20 degree strip.
type Box struct {
	RAMin, RAMax   float64
	DecMin, DecMax float64
}

// Criteria are the selection options.  The zero value selects everything.
type Criteria struct {
	// Center and Radius select a cone.  A nil Center disables the cone.
	Center *sky.Coord
	Radius unit.Angle

	// From and To select the half open window From <= t < To.  Either
	// bound may be nil.
	From, To *sky.Time

	// Designations are matched on decoded identity, so "K03A01B",
	// "2003 AB1" and "2003 AB01" all select the same object.  Pattern is a
	// path.Match glob on the designation key as returned by
	// mpc.Designation.Key, for example "2003 A*" or "(43?)".  A record
	// matching either is selected.
	Designations []string
	Pattern      string

	// Obscodes are observatory codes, matched exactly.
	Obscodes []string

	// MagMin and MagMax bound the magnitude, inclusive.  When either is
	// set, records with no magnitude are not selected.
	MagMin, MagMax *float64

	Box *Box
}

// ErrCriteria is wrapped by all errors from Compile.
var ErrCriteria = errors.New("invalid criteria")

func criteriaErr(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCriteria, fmt.Sprintf(format, a...))
}

type predicate struct {
	name  string
	match func(*mpc.Record) bool
}

// Filter is a compiled set of criteria.  It is safe for concurrent use.
type Filter struct {
	preds []predicate
}

// Compile validates c and returns a Filter.  Predicates are ordered
// cheapest first: observatory, designation, magnitude, time, box, cone.
// If sep is nil sky.Haversine is used for the cone.
func (c Criteria) Compile(sep sky.Separator) (*Filter, error) {
	if sep == nil {
		sep = sky.Haversine{}
	}
	f := &Filter{}
	if len(c.Obscodes) > 0 {
		codes := make(map[string]bool, len(c.Obscodes))
		for _, code := range c.Obscodes {
			if !mpc.ValidObscode(code) {
				return nil, criteriaErr("observatory code %q", code)
			}
			codes[code] = true
		}
		f.add("observatory", func(r *mpc.Record) bool {
			return codes[r.Obscode()]
		})
	}
	if len(c.Designations) > 0 || c.Pattern != "" {
		keys := make(map[string]bool, len(c.Designations))
		for _, s := range c.Designations {
			d, err := mpc.ParseDesignation(s)
			if err != nil {
				return nil, criteriaErr("designation %q, %v", s, err)
			}
			keys[d.Key()] = true
		}
		pat := c.Pattern
		if pat != "" {
			if _, err := path.Match(pat, ""); err != nil {
				return nil, criteriaErr("pattern %q, %v", pat, err)
			}
		}
		f.add("designation", func(r *mpc.Record) bool {
			k := r.Designation().Key()
			if keys[k] {
				return true
			}
			if pat == "" {
				return false
			}
			ok, _ := path.Match(pat, k)
			return ok
		})
	}
	if c.MagMin != nil || c.MagMax != nil {
		if c.MagMin != nil && c.MagMax != nil && *c.MagMin > *c.MagMax {
			return nil, criteriaErr("magnitude range %g > %g", *c.MagMin, *c.MagMax)
		}
		lo, hi := c.MagMin, c.MagMax
		f.add("magnitude", func(r *mpc.Record) bool {
			m := r.Mag()
			if !m.Valid {
				return false
			}
			v := m.Value.Float()
			return (lo == nil || v >= *lo) && (hi == nil || v <= *hi)
		})
	}
	if c.From != nil || c.To != nil {
		if c.From != nil && c.To != nil && c.To.Before(*c.From) {
			return nil, criteriaErr("time window ends before it starts")
		}
		from, to := c.From, c.To
		f.add("time", func(r *mpc.Record) bool {
			t := r.Time()
			return (from == nil || !t.Before(*from)) && (to == nil || t.Before(*to))
		})
	}
	if b := c.Box; b != nil {
		switch {
		case b.DecMin > b.DecMax:
			return nil, criteriaErr("box Dec range %g > %g", b.DecMin, b.DecMax)
		case b.DecMin < -90 || b.DecMax > 90:
			return nil, criteriaErr("box Dec range outside [-90, 90]")
		case b.RAMin < 0 || b.RAMin > 360 || b.RAMax < 0 || b.RAMax > 360:
			return nil, criteriaErr("box RA range outside [0, 360]")
		}
		box := *b
		f.add("box", func(r *mpc.Record) bool {
			ra, dec := r.Coord().Deg()
			if dec < box.DecMin || dec > box.DecMax {
				return false
			}
			if box.RAMin <= box.RAMax {
				return ra >= box.RAMin && ra <= box.RAMax
			}
			return ra >= box.RAMin || ra <= box.RAMax
		})
	}
	if c.Center != nil {
		if c.Radius < 0 {
			return nil, criteriaErr("negative radius")
		}
		center, radius := *c.Center, c.Radius
		f.add("cone", func(r *mpc.Record) bool {
			return sep.Sep(center, r.Coord()) <= radius
		})
	}
	return f, nil
}

func (f *Filter) add(name string, match func(*mpc.Record) bool) {
	f.preds = append(f.preds, predicate{name, match})
}

// Match reports whether r satisfies every criterion.
func (f *Filter) Match(r *mpc.Record) bool {
	for _, p := range f.preds {
		if !p.match(r) {
			return false
		}
	}
	return true
}

// Names returns the names of the active predicates in evaluation order.
func (f *Filter) Names() []string {
	n := make([]string, len(f.preds))
	for i, p := range f.preds {
		n[i] = p.name
	}
	return n
}

// Reader returns a Source that reads src and returns only matching
// records.  Line errors and the final io.EOF or other error of src are
// passed through.
func (f *Filter) Reader(src mpc.Source) mpc.Source {
	return &reader{f, src}
}

type reader struct {
	f   *Filter
	src mpc.Source
}

func (r *reader) Read() (*mpc.Record, error) {
	for {
		o, err := r.src.Read()
		if err != nil || r.f.Match(o) {
			return o, err
		}
	}
}

// Select returns the records of c that match, in order.  The records are
// shared with c, not copied.
func (f *Filter) Select(c mpc.Catalog) mpc.Catalog {
	var s mpc.Catalog
	for _, r := range c {
		if f.Match(r) {
			s = append(s, r)
		}
	}
	return s
}

// Select compiles crit with the default Separator and applies it to c.
func Select(c mpc.Catalog, crit Criteria) (mpc.Catalog, error) {
	f, err := crit.Compile(nil)
	if err != nil {
		return nil, err
	}
	return f.Select(c), nil
}
