package cl

import (
	"regexp"
	"strconv"

	"github.com/mastercactapus/clpost/coord"
)

const num = `(-?\d+(?:\.\d+)?)`

// sep is the operand separator; a comma followed by optional blanks.
const sep = `,\s*`

// Patterns only anchor at the start, trailing operands are ignored.
var (
	rxGoto   = regexp.MustCompile(`^GOTO\s*/\s*` + num + sep + num + sep + num)
	rxRapid  = regexp.MustCompile(`^RAPID`)
	rxLoadTL = regexp.MustCompile(`^LOADTL\s*/\s*(\d+)`)
	rxFedRat = regexp.MustCompile(`^FEDRAT\s*/\s*(\d+(?:\.\d+)?)` + sep + `(IPM|MMPM)`)
	rxCircle = regexp.MustCompile(`^CIRCLE\s*/\s*` + num + sep + num + sep + num + sep + num + sep + num + sep + num + sep + num)
)

type matcher struct {
	rx    *regexp.Regexp
	build func(m []string) Statement
}

// in priority order, first match wins
var matchers = []matcher{
	{rxGoto, func(m []string) Statement {
		return Goto{Point: point(m[1:4])}
	}},
	{rxRapid, func([]string) Statement { return Rapid{} }},
	{rxLoadTL, func(m []string) Statement { return LoadTool{N: m[1]} }},
	{rxFedRat, func(m []string) Statement {
		return FeedRate{Value: parse(m[1]), Unit: FeedUnit(m[2])}
	}},
	{rxCircle, func(m []string) Statement {
		c := Circle{
			Center: point(m[1:4]),
			C1:     parse(m[4]),
			C2:     parse(m[5]),
			Radius: parse(m[7]),
		}
		if parse(m[6]) == 1 {
			c.Direction = CounterClockwise
		}
		return c
	}},
}

// Classify matches a logical statement against the known statement shapes.
// Anything else is returned as Unprocessed carrying the text unchanged.
func Classify(text string) Statement {
	for _, m := range matchers {
		res := m.rx.FindStringSubmatch(text)
		if res == nil {
			continue
		}
		if s := m.build(res); s != nil {
			return s
		}
	}
	return Unprocessed{Text: text}
}

// the patterns only admit valid decimal literals
func parse(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func point(m []string) coord.Point {
	return coord.Point{X: parse(m[0]), Y: parse(m[1]), Z: parse(m[2])}
}
