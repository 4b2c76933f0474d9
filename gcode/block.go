package gcode

import (
	"strings"
)

type Block []Word

func (b Block) String() string {
	parts := make([]string, len(b))
	for i, g := range b {
		parts[i] = g.String()
	}
	return strings.Join(parts, " ")
}

// Comment formats text as a parenthesized comment line.
func Comment(text string) string {
	return "( " + text + " )"
}
