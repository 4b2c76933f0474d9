package post

import (
	"errors"
	"strconv"

	"github.com/mastercactapus/clpost/gcode"
)

var (
	ErrLineStep  = errors.New("line number step must be positive")
	ErrLineStart = errors.New("line number start must not be negative")
)

// CircleError aborts a translation when a CIRCLE statement uses operands
// that are not supported. Both must be zero.
type CircleError struct {
	C1, C2 float64
	Line   int
}

func (e *CircleError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": unsupported CIRCLE values c1: " +
		gcode.FormatFloat(e.C1) + ", c2: " + gcode.FormatFloat(e.C2)
}
