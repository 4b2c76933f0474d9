package gcode

import (
	"strconv"
)

// Word is a letter with its argument. Text, when set, is written instead
// of Arg; tool numbers keep their digits that way.
type Word struct {
	W    byte
	Arg  float64
	Text string
}

// FormatFloat returns the shortest decimal text that parses back to f exactly.
// Integral values have no fraction and no exponent is ever used.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (w Word) String() string {
	if w.Text != "" {
		return string(w.W) + w.Text
	}
	s := FormatFloat(w.Arg)
	if w.W == 'G' && len(s) == 1 {
		// G00..G09 are always written with two digits
		s = "0" + s
	}
	return string(w.W) + s
}
