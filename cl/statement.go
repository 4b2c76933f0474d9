package cl

import "github.com/mastercactapus/clpost/coord"

// Statement is one classified CL statement.
type Statement interface {
	Kind() Kind
}

type Kind int

const (
	KindUnprocessed Kind = iota
	KindGoto
	KindRapid
	KindLoadTool
	KindFeedRate
	KindCircle
)

func (k Kind) String() string {
	switch k {
	case KindGoto:
		return "GOTO"
	case KindRapid:
		return "RAPID"
	case KindLoadTool:
		return "LOADTL"
	case KindFeedRate:
		return "FEDRAT"
	case KindCircle:
		return "CIRCLE"
	}
	return "unprocessed"
}

// Goto moves the tool to Point.
type Goto struct {
	coord.Point
}

// Rapid makes the next Goto a rapid move.
type Rapid struct{}

// LoadTool selects tool N, kept as the digits written in the CL file.
type LoadTool struct {
	N string
}

type FeedUnit string

const (
	InchesPerMinute      FeedUnit = "IPM"
	MillimetersPerMinute FeedUnit = "MMPM"
)

// FeedRate sets the programmed feed.
type FeedRate struct {
	Value float64
	Unit  FeedUnit
}

// Direction of an arc as encoded by the CIRCLE statement.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

// Circle makes the next Goto an arc around Center.
//
// C1 and C2 are operands this translator does not understand; only
// zero is accepted for them.
type Circle struct {
	Center    coord.Point
	C1, C2    float64
	Direction Direction
	Radius    float64
}

// Unprocessed is any statement that is not recognized.
type Unprocessed struct {
	Text string
}

func (Goto) Kind() Kind        { return KindGoto }
func (Rapid) Kind() Kind       { return KindRapid }
func (LoadTool) Kind() Kind    { return KindLoadTool }
func (FeedRate) Kind() Kind    { return KindFeedRate }
func (Circle) Kind() Kind      { return KindCircle }
func (Unprocessed) Kind() Kind { return KindUnprocessed }

func (d Direction) String() string {
	if d == CounterClockwise {
		return "ccw"
	}
	return "cw"
}
