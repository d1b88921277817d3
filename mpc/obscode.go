// Copyright 2012 Sonia Keys
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mpc

import (
	"errors"
	"fmt"

	"github.com/soniakeys/mpcformat"
	"github.com/soniakeys/observation"
)

var errObscode = errors.New("must be 3 digits or upper case letters")

// ValidObscode reports whether code is a well formed observatory code:
// exactly three characters, each a digit or upper case letter.
//
// Codes are not checked against any list of known observatories.
func ValidObscode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		c := code[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// Sites is a table of known observatory codes, as listed in the MPC file
// known as obscode.dat.
//
// The table is for reporting only.  Decoding never rejects a code because
// it is missing from the table.
type Sites struct {
	ocd observation.ParallaxMap
}

// NewSites wraps a parallax map as read by mpcformat.
func NewSites(ocd observation.ParallaxMap) Sites {
	return Sites{ocd}
}

// ReadSites reads an obscode.dat file.
//
// Files obtained from the MPC have column headings and an enclosing <pre>
// tag.  These are quietly ignored.
func ReadSites(ocdFile string) (Sites, error) {
	ocd, err := mpcformat.ReadObscodeDatFile(ocdFile)
	if err != nil {
		return Sites{}, fmt.Errorf("reading observatory codes: %w", err)
	}
	return Sites{ocd}, nil
}

// FetchSites gets a fresh copy of obscode.dat from the MPC and writes it
// to ocdFile.
func FetchSites(ocdFile string) error {
	if err := mpcformat.FetchObscodeDat(ocdFile); err != nil {
		return fmt.Errorf("fetching observatory codes: %w", err)
	}
	return nil
}

// Known reports whether code is in the table.
func (s Sites) Known(code string) bool {
	_, ok := s.ocd[code]
	return ok
}

// Space reports whether code is known and has no parallax constants,
// as is the case for space based and roving observers.
func (s Sites) Space(code string) bool {
	p, ok := s.ocd[code]
	return ok && p == nil
}

// Len returns the number of codes in the table.
func (s Sites) Len() int { return len(s.ocd) }
