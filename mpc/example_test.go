// Copyright 2012 Sonia Keys
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mpc_test

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/soniakeys/obs80/mpc"
)

func ExampleDecode() {
	r, err := mpc.Decode(
		"00433         C2003 01 06.12345 12 40 00.00 -05 00 00.0                r     704")
	if err != nil {
		fmt.Println(err)
		return
	}
	ra, dec := r.Coord().Deg()
	fmt.Println(r.Designation().Key(), r.Obscode())
	fmt.Printf("MJD %.5f  RA %.3f  Dec %.3f\n", r.Time().MJD(), ra, dec)
	// Output:
	// (433) 704
	// MJD 52645.12345  RA 190.000  Dec -5.000
}

func ExampleReader() {
	in := `     K03A01B  C2003 01 05.5     00 40 00.00 +05 00 00.0          18.5 V      568
00433         C2003 01 06.12345 12 40 00.00 -05 00 00.0                r     704
00433J98S01A*KC1998 09 27.23456 23 59 59`
	r := mpc.NewReader(strings.NewReader(in))
	for {
		o, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(o.Designation().Key())
	}
	// Output:
	// 2003 AB1
	// (433)
	// line 3: truncated: obs80: invalid line length (40), line must be 80 characters
}

func ExampleRecord_WithMag() {
	r, _ := mpc.Decode(
		"00433         C2003 01 06.12345 12 40 00.00 -05 00 00.0                r     704")
	m, _ := mpc.ParseDecimal("17.25")
	r, _ = r.WithMag(mpc.Mag{Value: m, Valid: true}, 'V')
	w := mpc.NewWriter(os.Stdout)
	w.Write(r)
	// Output:
	// 00433         C2003 01 06.12345 12 40 00.00 -05 00 00.0          17.25Vr     704
}
