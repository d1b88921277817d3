// Copyright 2012 Sonia Keys
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mpc

import (
	"errors"
	"fmt"
	"io"
)

// WriteError reports a failure of the destination of a Writer.
type WriteError struct {
	N   int // records written before the failure
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("obs80: write failed after %d records: %v", e.N, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Writer writes records as 80 column lines, each followed by a newline.
//
// Each record is written with a single Write call on the destination, so
// buffering, if wanted, is up to the caller.  After a failure all further
// writes return the same *WriteError.
type Writer struct {
	w   io.Writer
	n   int
	err error
	buf []byte
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, LineLen+1)}
}

// Write writes r with Encode.
func (w *Writer) Write(r *Record) error {
	if w.err != nil {
		return w.err
	}
	w.buf = append(append(w.buf[:0], Encode(r)...), '\n')
	if _, err := w.w.Write(w.buf); err != nil {
		w.err = &WriteError{N: w.n, Err: err}
		return w.err
	}
	w.n++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int { return w.n }

// WriteSubset writes the records of src to dst in order and returns the
// number written.  Line errors from src are skipped.  A write failure
// returns a *WriteError; any other error from src is returned as is.
func WriteSubset(dst io.Writer, src Source) (int, error) {
	w := NewWriter(dst)
	for {
		r, err := src.Read()
		var le *LineError
		switch {
		case err == nil:
			if err = w.Write(r); err != nil {
				return w.n, err
			}
		case err == io.EOF:
			return w.n, nil
		case errors.As(err, &le):
		default:
			return w.n, err
		}
	}
}
