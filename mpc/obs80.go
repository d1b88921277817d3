// Copyright 2012 Sonia Keys
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package mpc decodes and encodes observations in the MPC 80 column format.
//
// The format is documented at
// https://www.minorplanetcenter.net/iau/info/OpticalObs.html.  This is an
// ASCII encoded format.  There is no allowance for non-ASCII characters.
//
// Decode turns a line into a Record, Encode turns a Record back into a line.
// An unedited Record encodes to exactly the line it was decoded from.
// Reader reads a stream of lines as a lazy sequence of Records, reporting
// bad lines as LineErrors without stopping.  Writer writes Records back out.
package mpc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soniakeys/obs80/sky"
)

// LineLen is the length of an observation line, not counting the line
// terminator.
const LineLen = 80

// Column ranges, 0-based and half-open.
const (
	colDesig    = 0  // 0:12 number and provisional designation
	colDisc     = 12 // discovery asterisk
	colNote1    = 13
	colNote2    = 14
	colYear     = 15 // 15:19
	colMonth    = 20 // 20:22
	colDay      = 23 // 23:32
	colRAH      = 32 // 32:34
	colRAM      = 35 // 35:37
	colRAS      = 38 // 38:44
	colDecSign  = 44
	colDecD     = 45 // 45:47
	colDecM     = 48 // 48:50
	colDecS     = 51 // 51:56
	colMag      = 65 // 65:70
	colBand     = 70
	colRef      = 71 // 71:77
	colObscode  = 77 // 77:80
	widthDay    = 9
	widthRASec  = 6
	widthDecSec = 5
	widthMag    = 5
	widthRef    = 6
)

// Field identifies a field of the 80 column format.
type Field int

// Fields, in column order.  FieldLength is not a field but the line as a
// whole.
const (
	FieldLength Field = iota
	FieldDesignation
	FieldNotes
	FieldDate
	FieldRA
	FieldDec
	FieldMag
	FieldReference
	FieldObscode
)

var fieldNames = [...]string{
	"line length",
	"designation",
	"notes",
	"date",
	"RA",
	"Dec",
	"magnitude",
	"reference",
	"observatory code",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// DecodeError reports a field that could not be decoded.
type DecodeError struct {
	Field Field
	Text  string // the field text as found in the line
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("obs80: invalid %s (%s), %v", e.Field, e.Text, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrLineLength is wrapped by DecodeErrors for lines that are not LineLen
// characters.
var ErrLineLength = errors.New("line must be 80 characters")

// edit bits record which fields of a Record differ from its raw line.
type edits uint16

func (e edits) has(f Field) bool { return e&(1<<uint(f)) != 0 }

func (e edits) with(f Field) edits { return e | 1<<uint(f) }

const allEdits edits = 1<<uint(FieldObscode+1) - 2

// Record is a single decoded observation.  Records are immutable.
// The With methods return edited copies.
type Record struct {
	desig   Designation
	disc    byte
	note1   byte
	note2   byte
	date    Date
	ra      RA
	dec     Dec
	mag     Mag
	band    byte
	ref     string
	obscode string

	// derived
	t   sky.Time
	pos sky.Coord

	raw    string
	edited edits
}

// Designation returns the decoded object designation.
func (r *Record) Designation() Designation { return r.desig }

// Discovery returns the discovery asterisk column, '*' or ' '.
func (r *Record) Discovery() byte { return r.disc }

// Note1 returns the note 1 column.
func (r *Record) Note1() byte { return r.note1 }

// Note2 returns the note 2 column, the observation method.
func (r *Record) Note2() byte { return r.note2 }

// Date returns the observation date as written.
func (r *Record) Date() Date { return r.date }

// Time returns the observation time.
func (r *Record) Time() sky.Time { return r.t }

// RA returns right ascension as written.
func (r *Record) RA() RA { return r.ra }

// Dec returns declination as written.
func (r *Record) Dec() Dec { return r.dec }

// Coord returns the observed position.
func (r *Record) Coord() sky.Coord { return r.pos }

// Mag returns the observed magnitude, which may be absent.
func (r *Record) Mag() Mag { return r.mag }

// Band returns the magnitude band column.
func (r *Record) Band() byte { return r.band }

// Reference returns columns 72-77, the catalog code and reference, verbatim.
func (r *Record) Reference() string { return r.ref }

// Obscode returns the three character observatory code.
func (r *Record) Obscode() string { return r.obscode }

// Raw returns the line the record was decoded from, or "" for a record
// constructed with New.
func (r *Record) Raw() string { return r.raw }

// Edited reports whether any field differs from the raw line.
func (r *Record) Edited() bool { return r.edited != 0 }

// Decoder decodes observation lines.  The zero Decoder is strict and
// accepts only packed MPC designations.
type Decoder struct {
	// Temporary accepts observer assigned temporary designations in
	// columns 6-12 when no packed designation is present.
	Temporary bool
}

// Decode decodes a line with the zero Decoder.
func Decode(line string) (*Record, error) {
	return Decoder{}.Decode(line)
}

// Decode decodes a single line observation in the MPC 80 column format.
//
// Input line must be a string of 80 characters.  Other lengths are an error.
// Any field that cannot be decoded fails the whole line with a
// *DecodeError.
func (d Decoder) Decode(line string) (*Record, error) {
	if len(line) != LineLen {
		return nil, &DecodeError{FieldLength, fmt.Sprint(len(line)), ErrLineLength}
	}
	r := &Record{raw: line}

	var err error
	if r.desig, err = unpackDesig(line[colDesig:colDisc], d.Temporary); err != nil {
		return nil, &DecodeError{FieldDesignation, line[colDesig:colDisc], err}
	}
	r.disc, r.note1, r.note2 = line[colDisc], line[colNote1], line[colNote2]

	if r.date, err = decodeDate(line[colYear : colDay+widthDay]); err != nil {
		return nil, &DecodeError{FieldDate, line[colYear : colDay+widthDay], err}
	}
	if r.ra, err = decodeRA(line[colRAH : colRAS+widthRASec]); err != nil {
		return nil, &DecodeError{FieldRA, line[colRAH : colRAS+widthRASec], err}
	}
	if r.dec, err = decodeDec(line[colDecSign : colDecS+widthDecSec]); err != nil {
		return nil, &DecodeError{FieldDec, line[colDecSign : colDecS+widthDecSec], err}
	}
	if ts := strings.TrimSpace(line[colMag : colMag+widthMag]); ts != "" {
		if r.mag.Value, err = ParseDecimal(ts); err != nil {
			return nil, &DecodeError{FieldMag, line[colMag : colMag+widthMag], err}
		}
		r.mag.Valid = true
	}
	r.band = line[colBand]
	r.ref = line[colRef : colRef+widthRef]
	r.obscode = line[colObscode:]
	if !ValidObscode(r.obscode) {
		return nil, &DecodeError{FieldObscode, r.obscode, errObscode}
	}
	r.derive()
	return r, nil
}

func (r *Record) derive() {
	r.t = r.date.Time()
	r.pos = sky.Coord{RA: r.ra.Angle(), Dec: r.dec.Angle()}
}

// decodeDate decodes columns 16-32, "YYYY MM DD.dddddd".
func decodeDate(f string) (d Date, err error) {
	const y, m, day = colYear - colYear, colMonth - colYear, colDay - colYear
	if !allDigits(f[y : y+4]) {
		return d, fmt.Errorf("year %q %w", f[y:y+4], errNotNumeric)
	}
	if d.Year, err = atoiField(f[y : y+4]); err != nil {
		return
	}
	if d.Month, err = atoiField(f[m : m+2]); err != nil {
		return
	}
	if d.Day, err = ParseDecimal(f[day:]); err != nil {
		return
	}
	return d, d.Validate()
}

// decodeRA decodes columns 33-44, "HH MM SS.sss".
func decodeRA(f string) (ra RA, err error) {
	const h, m, s = colRAH - colRAH, colRAM - colRAH, colRAS - colRAH
	if ra.Hour, err = atoiField(f[h : h+2]); err != nil {
		return
	}
	if ra.Min, err = atoiField(f[m : m+2]); err != nil {
		return
	}
	if ra.Sec, err = ParseDecimal(f[s:]); err != nil {
		return
	}
	return ra, ra.Validate()
}

// decodeDec decodes columns 45-56, "sDD MM SS.ss".  The sign is taken only
// from its own column and must be present.
func decodeDec(f string) (dec Dec, err error) {
	const d, m, s = colDecD - colDecSign, colDecM - colDecSign, colDecS - colDecSign
	switch f[0] {
	case '+':
	case '-':
		dec.Neg = true
	default:
		return dec, fmt.Errorf("sign %q must be + or -", f[0])
	}
	if dec.Deg, err = atoiField(f[d : d+2]); err != nil {
		return
	}
	if dec.Min, err = atoiField(f[m : m+2]); err != nil {
		return
	}
	if dec.Sec, err = ParseDecimal(f[s:]); err != nil {
		return
	}
	return dec, dec.Validate()
}

// Encode returns the 80 column text of r.  Fields that were not edited
// are copied from the raw line, so an unedited record encodes to exactly
// the line it was decoded from.
func Encode(r *Record) string {
	if r.edited == 0 {
		return r.raw
	}
	b := []byte(r.raw)
	if len(b) != LineLen {
		b = []byte(strings.Repeat(" ", LineLen))
	}
	r.encode(b, r.edited)
	return string(b)
}

// Format returns the canonical 80 column text of r, formatting every field
// from its decoded value and ignoring the raw line.  Columns that hold no
// field, and fields the format leaves to the observer such as the
// reference, come out as decoded.
func Format(r *Record) string {
	b := []byte(strings.Repeat(" ", LineLen))
	r.encode(b, allEdits)
	return string(b)
}

func (r *Record) encode(b []byte, e edits) {
	if e.has(FieldDesignation) {
		// desig was validated when it was set
		p, _ := r.desig.Pack()
		copy(b[colDesig:], p)
	}
	if e.has(FieldNotes) {
		b[colDisc], b[colNote1], b[colNote2] = r.disc, r.note1, r.note2
	}
	if e.has(FieldDate) {
		putField(b, colYear, colDay+widthDay,
			fmt.Sprintf("%04d %02d %s", r.date.Year, r.date.Month, r.date.Day.format(2, '0')))
	}
	if e.has(FieldRA) {
		putField(b, colRAH, colRAS+widthRASec, r.ra.String())
	}
	if e.has(FieldDec) {
		putField(b, colDecSign, colDecS+widthDecSec, r.dec.String())
	}
	if e.has(FieldMag) {
		m := ""
		if r.mag.Valid {
			m = r.mag.Value.format(2, ' ')
		}
		putField(b, colMag, colMag+widthMag, m)
		b[colBand] = r.band
	}
	if e.has(FieldReference) {
		putField(b, colRef, colRef+widthRef, r.ref)
	}
	if e.has(FieldObscode) {
		copy(b[colObscode:], r.obscode)
	}
}

// putField writes s left justified in b[start:end], blank filled.
func putField(b []byte, start, end int, s string) {
	n := copy(b[start:end], s)
	for i := start + n; i < end; i++ {
		b[i] = ' '
	}
}

// New constructs a record from field values.  The record has no raw line;
// Encode formats every field.
func New(d Designation, date Date, ra RA, dec Dec, obscode string) (*Record, error) {
	r := &Record{
		disc:   ' ',
		note1:  ' ',
		note2:  ' ',
		band:   ' ',
		ref:    strings.Repeat(" ", widthRef),
		edited: allEdits,
	}
	var err error
	if r, err = r.WithDesignation(d); err != nil {
		return nil, err
	}
	if r, err = r.WithDate(date); err != nil {
		return nil, err
	}
	if r, err = r.WithPosition(ra, dec); err != nil {
		return nil, err
	}
	return r.WithObscode(obscode)
}

func (r *Record) edit(f Field) *Record {
	c := *r
	c.edited = c.edited.with(f)
	return &c
}

// WithDesignation returns a copy of r with designation d.
func (r *Record) WithDesignation(d Designation) (*Record, error) {
	if _, err := d.Pack(); err != nil {
		return nil, &DecodeError{FieldDesignation, d.Key(), err}
	}
	c := r.edit(FieldDesignation)
	c.desig = d
	return c, nil
}

// WithNotes returns a copy of r with the discovery asterisk and note
// columns replaced.
func (r *Record) WithNotes(disc, note1, note2 byte) *Record {
	c := r.edit(FieldNotes)
	c.disc, c.note1, c.note2 = disc, note1, note2
	return c
}

// WithDate returns a copy of r with date d.
func (r *Record) WithDate(d Date) (*Record, error) {
	if err := d.Validate(); err != nil {
		return nil, &DecodeError{FieldDate, d.String(), err}
	}
	if d.Day.Places > widthDay-3 {
		return nil, &DecodeError{FieldDate, d.String(), errors.New("too many decimal places")}
	}
	c := r.edit(FieldDate)
	c.date = d
	c.derive()
	return c, nil
}

// WithPosition returns a copy of r with position ra, dec.
func (r *Record) WithPosition(ra RA, dec Dec) (*Record, error) {
	if err := ra.Validate(); err != nil {
		return nil, &DecodeError{FieldRA, ra.String(), err}
	}
	if ra.Sec.Places > widthRASec-3 {
		return nil, &DecodeError{FieldRA, ra.String(), errors.New("too many decimal places")}
	}
	if err := dec.Validate(); err != nil {
		return nil, &DecodeError{FieldDec, dec.String(), err}
	}
	if dec.Sec.Places > widthDecSec-3 {
		return nil, &DecodeError{FieldDec, dec.String(), errors.New("too many decimal places")}
	}
	c := r.edit(FieldRA)
	c.edited = c.edited.with(FieldDec)
	c.ra, c.dec = ra, dec
	c.derive()
	return c, nil
}

// WithMag returns a copy of r with magnitude m and band.  Pass the zero
// Mag to clear the magnitude.
func (r *Record) WithMag(m Mag, band byte) (*Record, error) {
	if m.Valid && len(m.Value.format(2, ' ')) > widthMag {
		return nil, &DecodeError{FieldMag, m.String(), errors.New("does not fit")}
	}
	c := r.edit(FieldMag)
	c.mag, c.band = m, band
	return c, nil
}

// WithObscode returns a copy of r with observatory code code.
func (r *Record) WithObscode(code string) (*Record, error) {
	if !ValidObscode(code) {
		return nil, &DecodeError{FieldObscode, code, errObscode}
	}
	c := r.edit(FieldObscode)
	c.obscode = code
	return c, nil
}
