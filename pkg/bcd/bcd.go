// Package bcd encodes decimal digits for the BCD-to-7-segment decoder chips
// connected to the two 4 bit display buses.
package bcd

import (
	"segcount/pkg/port"
)

// Bus identifies one of the 4 bit output buses.
type Bus int

const (
	// Bus1 is wired to port lines 0..3 (decoder 1 inputs A..D).
	Bus1 Bus = 1
	// Bus2 is wired to port lines 4..7 (decoder 2 inputs A..D).
	Bus2 Bus = 2
)

// Pattern holds the levels of the decoder inputs A, B, C, D.
type Pattern [4]port.Level

// Setter drives a single port line.
type Setter interface {
	Set(line int, l port.Level) error
}

var (
	lo = port.Low
	hi = port.High

	// patterns is fixed by the wiring between port and decoder chips.
	patterns = [10]Pattern{
		{lo, lo, lo, lo},
		{hi, lo, lo, lo},
		{lo, hi, lo, lo},
		{hi, hi, lo, lo},
		{lo, lo, hi, lo},
		{hi, lo, hi, lo},
		{lo, hi, hi, lo},
		{hi, hi, hi, lo},
		{lo, lo, lo, hi},
		{hi, lo, lo, hi},
	}

	// fallback is shown for values outside 0..9.
	fallback = Pattern{lo, lo, lo, hi}

	// wiring maps each bus to its port lines A, B, C, D.
	wiring = map[Bus][4]int{
		Bus1: {0, 1, 2, 3},
		Bus2: {4, 5, 6, 7},
	}
)

// Encode returns the decoder pattern of digit d.
func Encode(d int) Pattern {
	if d < 0 || d > 9 {
		return fallback
	}
	return patterns[d]
}

// String returns the pattern in A,B,C,D order, e.g. "1000" for 1.
func (p Pattern) String() string {
	b := make([]byte, len(p))
	for i, l := range p {
		b[i] = l.String()[0]
	}
	return string(b)
}

// Decoder writes digits to the display buses.
type Decoder struct {
	out Setter
}

// New returns a decoder writing to out.
func New(out Setter) *Decoder {
	return &Decoder{out: out}
}

// Display writes the pattern of value to the four lines of bus.
// Each line of the bus is written once, the other bus is not touched.
// An unknown bus is ignored.
func (d *Decoder) Display(value int, bus Bus) error {
	lines, ok := wiring[bus]
	if !ok {
		return nil
	}

	p := Encode(value)
	for i, line := range lines {
		if err := d.out.Set(line, p[i]); err != nil {
			return err
		}
	}

	return nil
}
