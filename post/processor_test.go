package post

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mastercactapus/clpost/cl"
	"github.com/mastercactapus/clpost/coord"
	"github.com/mastercactapus/clpost/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `PARTNO TEST
LOADTL / 1
FEDRAT / 100, IPM
RAPID
GOTO / 1, 2, 3
FEDRAT / 100, IPM
GOTO / 4, 5, 6
CIRCLE / 10, 5, 6, 0, 0, 1, 6
GOTO / 16, 5, 6
CIRCLE / 10, 5, 6, 0, 0, -1, $
    6
GOTO / 4, 5, 6
`

func transform(t *testing.T, src string, opt Options) ([]string, Stats, error) {
	t.Helper()
	out := &sink.Lines{}
	stats, err := Transform(strings.NewReader(src), out, opt)
	assert.False(t, out.Closed)
	return out.Lines, stats, err
}

func TestTransform(t *testing.T) {
	lines, stats, err := transform(t, program, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"N01 G90 G71",
		"( unprocessed: PARTNO TEST )",
		"N02 T1 M6",
		"N03 F100",
		"N04 G00 X1 Y2 Z3",
		"N05 G01 X4 Y5 Z6",
		"( circle radius: 6 )",
		"N06 G03 X16 Y5 Z6 I6 J0 K0",
		"( circle radius: 6 )",
		"N07 G02 X4 Y5 Z6 I-6 J0 K0",
		"N08 M30",
	}, lines)
	assert.Equal(t, Stats{Statements: 11, Lines: 11, Unprocessed: 1}, stats)
}

func TestTransform_NoComments(t *testing.T) {
	opt := DefaultOptions()
	opt.NoComments = true
	opt.LineStart = 100
	opt.LineStep = 10

	lines, _, err := transform(t, program, opt)
	require.NoError(t, err)

	// 12 lines * 10 + 100 = 220, three digits
	assert.Equal(t, []string{
		"N100 G90 G71",
		"N110 T1 M6",
		"N120 F100",
		"N130 G00 X1 Y2 Z3",
		"N140 G01 X4 Y5 Z6",
		"N150 G03 X16 Y5 Z6 I6 J0 K0",
		"N160 G02 X4 Y5 Z6 I-6 J0 K0",
		"N170 M30",
	}, lines)
}

func TestTransform_Empty(t *testing.T) {
	lines, _, err := transform(t, "", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"N1 G90 G71", "N2 M30"}, lines)
}

func TestTransform_FeedRate(t *testing.T) {
	lines, _, err := transform(t, "FEDRAT / 50, IPM\nFEDRAT / 50, MMPM\nFEDRAT / 75.5, MMPM\nFEDRAT / 50, IPM\n", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"N1 G90 G71", "N2 F50", "N3 F75.5", "N4 F50", "N5 M30"}, lines)
}

func TestTransform_Circle(t *testing.T) {
	lines, _, err := transform(t, "CIRCLE / 1,2,3, 5,0, 1, 10\nGOTO / 1, 1, 1\n", DefaultOptions())

	var cerr *CircleError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 5.0, cerr.C1)
	assert.Equal(t, 0.0, cerr.C2)
	assert.Equal(t, 1, cerr.Line)
	assert.EqualError(t, err, "line 1: unsupported CIRCLE values c1: 5, c2: 0")

	// partial output stays, no end block
	assert.Equal(t, []string{"N1 G90 G71", "( circle radius: 10 )"}, lines)
}

func TestTransform_CircleSecondOperand(t *testing.T) {
	_, _, err := transform(t, "GOTO / 0, 0, 0\nCIRCLE / 1, 2, 3, 0, 0.5, 1, 10\n", DefaultOptions())

	var cerr *CircleError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 0.5, cerr.C2)
	assert.Equal(t, 2, cerr.Line)
}

func TestTransform_Continuation(t *testing.T) {
	src := "GOTO / 1, $\n 2, $\n 3\nLOADTL / $\n"
	lines, _, err := transform(t, src, DefaultOptions())
	require.NoError(t, err)

	// the trailing fragment is dropped
	assert.Equal(t, []string{"N1 G90 G71", "N2 G01 X1 Y2 Z3", "N3 M30"}, lines)
}

func TestTransform_BlankLine(t *testing.T) {
	lines, stats, err := transform(t, "\nGOTO / 1, 2, 3\n", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"N1 G90 G71", "( unprocessed:  )", "N2 G01 X1 Y2 Z3", "N3 M30"}, lines)
	assert.Equal(t, 1, stats.Unprocessed)
}

func TestTransform_BadOptions(t *testing.T) {
	_, _, err := transform(t, program, Options{LineStart: 1})
	assert.Equal(t, ErrLineStep, err)

	_, _, err = transform(t, program, Options{LineStart: -1, LineStep: 1})
	assert.Equal(t, ErrLineStart, err)
}

func TestTransform_LogsUnprocessed(t *testing.T) {
	var buf bytes.Buffer
	opt := DefaultOptions()
	opt.NoComments = true
	opt.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	lines, _, err := transform(t, "SPINDL / 1200\n", opt)
	require.NoError(t, err)
	assert.Equal(t, []string{"N1 G90 G71", "N2 M30"}, lines)
	assert.Contains(t, buf.String(), "unprocessed: SPINDL / 1200")
}

func TestProcessor_ArcBeforeRapid(t *testing.T) {
	out := &sink.Lines{}
	p := NewProcessor(out, 10, DefaultOptions())

	require.NoError(t, p.Step(cl.Rapid{}, 1))
	require.NoError(t, p.Step(cl.Circle{Center: coord.Point{X: 5}, Radius: 5}, 2))
	require.NoError(t, p.Step(cl.Goto{Point: coord.Point{X: 10}}, 3))

	// the rapid is still pending after the arc used the move
	assert.True(t, p.State().Rapid)
	require.NoError(t, p.Step(cl.Goto{Point: coord.Point{X: 0, Y: 1}}, 4))
	assert.False(t, p.State().Rapid)

	assert.Equal(t, []string{
		"( circle radius: 5 )",
		"N01 G02 X10 Y0 Z0 I5 J0 K0",
		"N02 G00 X0 Y1 Z0",
	}, out.Lines)
}

func TestProcessor_CircleOverwrite(t *testing.T) {
	out := &sink.Lines{}
	opt := DefaultOptions()
	opt.NoComments = true
	p := NewProcessor(out, 3, opt)

	require.NoError(t, p.Step(cl.Circle{Center: coord.Point{X: 1, Y: 1}, Direction: cl.CounterClockwise, Radius: 1}, 1))
	require.NoError(t, p.Step(cl.Circle{Center: coord.Point{X: 2, Y: 2}, Radius: 2}, 2))
	assert.Equal(t, 2.0, p.State().ArcRadius)
	require.NoError(t, p.Step(cl.Goto{Point: coord.Point{X: 4, Y: 2}}, 3))

	assert.Equal(t, []string{"N1 G02 X4 Y2 Z0 I2 J2 K0"}, out.Lines)
	assert.False(t, p.State().Arc)
	assert.Equal(t, coord.Point{X: 4, Y: 2}, p.State().Pos)
}

func TestProcessor_ToolDigits(t *testing.T) {
	lines, _, err := transform(t, "LOADTL / 01\nLOADTL / 99999999999999999999\n", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"N1 G90 G71", "N2 T01 M6", "N3 T99999999999999999999 M6", "N4 M30"}, lines)
}

func TestProcessor_RapidConsumesNoNumber(t *testing.T) {
	out := &sink.Lines{}
	p := NewProcessor(out, 3, DefaultOptions())

	require.NoError(t, p.Begin())
	require.NoError(t, p.Step(cl.Rapid{}, 1))
	require.NoError(t, p.Step(cl.Goto{Point: coord.Point{X: -0.5, Y: 2.25, Z: 10}}, 2))
	require.NoError(t, p.End())

	assert.Equal(t, []string{"N1 G90 G71", "N2 G00 X-0.5 Y2.25 Z10", "N3 M30"}, out.Lines)
}
