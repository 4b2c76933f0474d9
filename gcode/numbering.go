package gcode

import (
	"fmt"
	"strconv"
)

// LineNumbers hands out N-words for emitted blocks.
//
// The digit width is fixed when created from an estimate of the highest
// number that may be needed; later numbers are still emitted if the
// estimate was too low, only wider.
type LineNumbers struct {
	next  int
	step  int
	width int
}

// NewLineNumbers sizes the numbering for a file with lineCount physical lines.
func NewLineNumbers(start, step, lineCount int) *LineNumbers {
	return &LineNumbers{
		next:  start,
		step:  step,
		width: len(strconv.Itoa(Estimate(start, step, lineCount))),
	}
}

// Estimate is the upper bound used for the digit width.
func Estimate(start, step, lineCount int) int {
	return lineCount*step + start
}

func (n *LineNumbers) Width() int { return n.width }

// Next returns the formatted number, e.g. N007, and advances by step.
func (n *LineNumbers) Next() string {
	s := fmt.Sprintf("N%0*d", n.width, n.next)
	n.next += n.step
	return s
}

// Line numbers b and renders it as one output line.
func (n *LineNumbers) Line(b Block) string {
	return n.Next() + " " + b.String()
}
