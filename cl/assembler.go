// Package cl reads CL (cutter location) files as written by an APT style
// CAM post and classifies their statements.
package cl

import (
	"bufio"
	"io"
	"strings"
)

// Continuation marks a physical line that is continued on the next one.
const Continuation = "$\n"

// Assembler joins physical lines into logical statements.
type Assembler struct {
	buf     string
	pending bool
}

// Feed consumes one physical line, including its trailing newline if it had
// one. It returns the completed statement, or ok == false if the line was
// buffered as a continuation fragment.
func (a *Assembler) Feed(line string) (stmt string, ok bool) {
	if strings.HasSuffix(line, Continuation) {
		frag := strings.TrimSpace(strings.TrimSuffix(line, Continuation))
		if a.pending {
			a.buf = strings.TrimSpace(a.buf + " " + frag)
		} else {
			a.buf = frag
		}
		a.pending = true
		return "", false
	}

	stmt = strings.TrimSpace(a.buf + " " + strings.TrimSpace(line))
	a.buf = ""
	a.pending = false
	return stmt, true
}

// Pending reports whether a continuation fragment is buffered. A fragment
// still pending at the end of a file never becomes a statement.
func (a *Assembler) Pending() bool { return a.pending }

// ReadLines returns the physical lines of r, each with its newline kept.
// CRLF endings are read as LF. A final line without a newline is returned
// as is.
func ReadLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		s, err := br.ReadString('\n')
		if s != "" {
			if strings.HasSuffix(s, "\r\n") {
				s = strings.TrimSuffix(s, "\r\n") + "\n"
			}
			lines = append(lines, s)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
