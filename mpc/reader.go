// Copyright 2012 Sonia Keys
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mpc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LineErrorKind classifies a LineError.
type LineErrorKind int

const (
	// Empty is a blank line.
	Empty LineErrorKind = iota
	// Truncated is a line shorter than LineLen.
	Truncated
	// Malformed is a line of any other length, or of the right length
	// with a field that does not decode.  Err holds the *DecodeError.
	Malformed
)

var lineErrorKindNames = [...]string{"empty", "truncated", "malformed"}

func (k LineErrorKind) String() string {
	if k < 0 || int(k) >= len(lineErrorKindNames) {
		return fmt.Sprintf("LineErrorKind(%d)", int(k))
	}
	return lineErrorKindNames[k]
}

// LineError reports a line that did not produce a Record.  It is not
// fatal; a Reader continues with the next line.
type LineError struct {
	Line int // 1-based line number
	Text string
	Kind LineErrorKind
	Err  error
}

func (e *LineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("line %d: %s", e.Line, e.Kind)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Kind, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// IsLineError reports whether err is or wraps a *LineError.
func IsLineError(err error) bool {
	var le *LineError
	return errors.As(err, &le)
}

// Source is a sequence of records.  Read returns the next record, a
// *LineError for a line that did not decode, io.EOF after the last line,
// or any other error, which ends the sequence.
type Source interface {
	Read() (*Record, error)
}

// DecodeLine decodes line number n.  Errors are returned as *LineError.
func (d Decoder) DecodeLine(n int, text string) (*Record, error) {
	switch {
	case strings.TrimSpace(text) == "":
		return nil, &LineError{Line: n, Text: text, Kind: Empty}
	case len(text) < LineLen:
		return nil, &LineError{Line: n, Text: text, Kind: Truncated,
			Err: &DecodeError{FieldLength, fmt.Sprint(len(text)), ErrLineLength}}
	}
	r, err := d.Decode(text)
	if err != nil {
		return nil, &LineError{Line: n, Text: text, Kind: Malformed, Err: err}
	}
	return r, nil
}

// overlongCap is how much of an overlong line a LineError keeps.
const overlongCap = 2 * LineLen

// LineScanner splits a stream into numbered lines.  A line of any length
// is consumed whole, so a single overlong line never ends the scan.
type LineScanner struct {
	br     *bufio.Reader
	n      int
	text   string
	length int
	err    error
}

// NewLineScanner returns a LineScanner reading r.
func NewLineScanner(r io.Reader) *LineScanner {
	return &LineScanner{br: bufio.NewReader(r)}
}

// Scan advances to the next line.  It returns false at the end of input
// or on a read error; Err distinguishes the two.
func (s *LineScanner) Scan() bool {
	if s.err != nil {
		return false
	}
	var buf []byte
	total := 0
	for {
		b, more, err := s.br.ReadLine()
		if err != nil {
			s.err = err
			if err == io.EOF && total > 0 {
				break
			}
			return false
		}
		total += len(b)
		if room := overlongCap - len(buf); room > 0 {
			if len(b) > room {
				b = b[:room]
			}
			buf = append(buf, b...)
		}
		if !more {
			break
		}
	}
	s.n++
	s.text = string(buf)
	if total == len(buf) {
		s.text = strings.TrimSuffix(s.text, "\r")
		total = len(s.text)
	}
	s.length = total
	return true
}

// Line returns the 1-based number of the current line.
func (s *LineScanner) Line() int { return s.n }

// Text returns the current line, without its terminator.  Text of an
// overlong line is cut short; see Overlong.
func (s *LineScanner) Text() string { return s.text }

// Overlong returns a Malformed *LineError if the current line was too
// long to keep whole, or nil otherwise.
func (s *LineScanner) Overlong() *LineError {
	if s.length == len(s.text) {
		return nil
	}
	return &LineError{Line: s.n, Text: s.text, Kind: Malformed,
		Err: &DecodeError{FieldLength, fmt.Sprint(s.length), ErrLineLength}}
}

// Err returns the read error that ended the scan, or nil at the end of
// input.
func (s *LineScanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// Reader reads observations from a line oriented source.  It is lazy,
// forward only, and decodes each line once, when it is read.
type Reader struct {
	dec Decoder
	s   *LineScanner
	err error
}

// NewReader returns a Reader using the zero Decoder.
func NewReader(r io.Reader) *Reader {
	return Decoder{}.NewReader(r)
}

// NewReader returns a Reader using d.
func (d Decoder) NewReader(r io.Reader) *Reader {
	return &Reader{dec: d, s: NewLineScanner(r)}
}

// Line returns the number of lines read so far.
func (r *Reader) Line() int { return r.s.Line() }

// Read returns the next record.  See Source.
//
// Lines of any length are read.  An error from the underlying reader ends
// the sequence.
func (r *Reader) Read() (*Record, error) {
	if r.err != nil {
		return nil, r.err
	}
	if !r.s.Scan() {
		r.err = r.s.Err()
		if r.err == nil {
			r.err = io.EOF
		} else {
			r.err = fmt.Errorf("obs80: reading line %d: %w", r.s.Line()+1, r.err)
		}
		return nil, r.err
	}
	if le := r.s.Overlong(); le != nil {
		return nil, le
	}
	return r.dec.DecodeLine(r.s.Line(), r.s.Text())
}

// Catalog is an ordered sequence of records, in input order.
type Catalog []*Record

// ReadAll reads src to the end, returning the records and the line errors
// separately, each in input order.  Any other error stops the read and is
// returned with what was read so far.
func ReadAll(src Source) (Catalog, []*LineError, error) {
	var c Catalog
	var lerrs []*LineError
	for {
		r, err := src.Read()
		var le *LineError
		switch {
		case err == nil:
			c = append(c, r)
		case err == io.EOF:
			return c, lerrs, nil
		case errors.As(err, &le):
			lerrs = append(lerrs, le)
		default:
			return c, lerrs, err
		}
	}
}

// Source returns a Source reading the records of c in order.
func (c Catalog) Source() Source {
	return &catalogSource{c: c}
}

type catalogSource struct {
	c Catalog
	i int
}

func (s *catalogSource) Read() (*Record, error) {
	if s.i == len(s.c) {
		return nil, io.EOF
	}
	s.i++
	return s.c[s.i-1], nil
}
