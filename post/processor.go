// Package post translates CL files into numbered DIN G-code.
package post

import (
	"io"
	"log/slog"

	"github.com/mastercactapus/clpost/cl"
	"github.com/mastercactapus/clpost/coord"
	"github.com/mastercactapus/clpost/gcode"
	"github.com/mastercactapus/clpost/sink"
)

// Options configure a translation.
type Options struct {
	LineStart  int
	LineStep   int
	NoComments bool

	Logger *slog.Logger
}

// DefaultOptions number lines N1, N2, ... and emit comments.
func DefaultOptions() Options {
	return Options{LineStart: 1, LineStep: 1}
}

func (opt Options) Validate() error {
	if opt.LineStep <= 0 {
		return ErrLineStep
	}
	if opt.LineStart < 0 {
		return ErrLineStart
	}
	return nil
}

func (opt Options) logger() *slog.Logger {
	if opt.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return opt.Logger
}

// Stats summarize one translation.
type Stats struct {
	Statements  int `json:"statements"`
	Lines       int `json:"lines"`
	Unprocessed int `json:"unprocessed"`
}

// State is the motion state carried from one statement to the next.
type State struct {
	Pos coord.Point

	// Rapid makes the next GOTO a G00.
	Rapid bool

	Feed    float64
	HasFeed bool

	// Arc makes the next GOTO a G02/G03 around ArcCenter.
	Arc       bool
	ArcCenter coord.Point
	ArcDir    cl.Direction
	ArcRadius float64
}

// Processor is the motion state machine for a single file.
type Processor struct {
	opt   Options
	log   *slog.Logger
	out   sink.Sink
	n     *gcode.LineNumbers
	state State
	stats Stats
}

// NewProcessor creates a processor writing to out. lineCount is the number
// of physical input lines, used to size the line numbers.
func NewProcessor(out sink.Sink, lineCount int, opt Options) *Processor {
	p := &Processor{
		opt: opt,
		log: opt.logger(),
		out: out,
		n:   gcode.NewLineNumbers(opt.LineStart, opt.LineStep, lineCount),
	}
	p.log.Debug("line numbers",
		"max", gcode.Estimate(opt.LineStart, opt.LineStep, lineCount),
		"width", p.n.Width(),
	)
	return p
}

func (p *Processor) State() State { return p.state }
func (p *Processor) Stats() Stats { return p.stats }

func (p *Processor) emit(b gcode.Block) error {
	p.stats.Lines++
	return p.out.WriteLine(p.n.Line(b))
}

func (p *Processor) comment(text string) error {
	if p.opt.NoComments {
		return nil
	}
	p.stats.Lines++
	return p.out.WriteLine(gcode.Comment(text))
}

// Begin writes the program start block.
func (p *Processor) Begin() error {
	return p.emit(gcode.Block{{W: 'G', Arg: 90}, {W: 'G', Arg: 71}})
}

// End writes the program end block.
func (p *Processor) End() error {
	return p.emit(gcode.Block{{W: 'M', Arg: 30}})
}

// Step applies one classified statement. line is the input line it ended
// on, used for error reporting.
func (p *Processor) Step(s cl.Statement, line int) error {
	p.stats.Statements++
	switch s := s.(type) {
	case cl.Goto:
		return p.goTo(s.Point)
	case cl.Rapid:
		p.state.Rapid = true
		return nil
	case cl.LoadTool:
		return p.emit(gcode.Block{{W: 'T', Text: s.N}, {W: 'M', Arg: 6}})
	case cl.FeedRate:
		if p.state.HasFeed && s.Value == p.state.Feed {
			return nil
		}
		p.state.Feed = s.Value
		p.state.HasFeed = true
		return p.emit(gcode.Block{{W: 'F', Arg: s.Value}})
	case cl.Circle:
		return p.circle(s, line)
	case cl.Unprocessed:
		p.stats.Unprocessed++
		p.log.Info("unprocessed: " + s.Text)
		return p.comment("unprocessed: " + s.Text)
	}
	return nil
}

func (p *Processor) circle(c cl.Circle, line int) error {
	p.log.Debug("circle",
		"x", c.Center.X, "y", c.Center.Y, "z", c.Center.Z,
		"dir", c.Direction, "r", c.Radius,
	)
	p.state.ArcCenter = c.Center
	p.state.ArcDir = c.Direction
	p.state.ArcRadius = c.Radius

	err := p.comment("circle radius: " + gcode.FormatFloat(c.Radius))
	if err != nil {
		return err
	}
	if c.C1 != 0 || c.C2 != 0 {
		return &CircleError{C1: c.C1, C2: c.C2, Line: line}
	}
	p.state.Arc = true
	return nil
}

func (p *Processor) goTo(pos coord.Point) error {
	last := p.state.Pos
	p.state.Pos = pos

	b := gcode.Block{
		{W: 'G', Arg: 1},
		{W: 'X', Arg: pos.X},
		{W: 'Y', Arg: pos.Y},
		{W: 'Z', Arg: pos.Z},
	}
	switch {
	case p.state.Arc:
		p.state.Arc = false
		b[0].Arg = 2
		if p.state.ArcDir == cl.CounterClockwise {
			b[0].Arg = 3
		}
		off := p.state.ArcCenter.Sub(last)
		b = append(b,
			gcode.Word{W: 'I', Arg: off.X},
			gcode.Word{W: 'J', Arg: off.Y},
			gcode.Word{W: 'K', Arg: off.Z},
		)
	case p.state.Rapid:
		p.state.Rapid = false
		b[0].Arg = 0
	}

	return p.emit(b)
}
