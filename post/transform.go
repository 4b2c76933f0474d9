package post

import (
	"fmt"
	"io"
	"os"

	"github.com/mastercactapus/clpost/cl"
	"github.com/mastercactapus/clpost/sink"
)

// Transform translates the CL statements read from r and writes the G-code
// to out. Lines already written stay written when an error aborts the
// translation. out is not closed.
func Transform(r io.Reader, out sink.Sink, opt Options) (Stats, error) {
	err := opt.Validate()
	if err != nil {
		return Stats{}, err
	}
	lines, err := cl.ReadLines(r)
	if err != nil {
		return Stats{}, err
	}

	p := NewProcessor(out, len(lines), opt)
	err = p.Begin()
	if err != nil {
		return p.Stats(), err
	}

	var a cl.Assembler
	for i, l := range lines {
		text, ok := a.Feed(l)
		if !ok {
			continue
		}
		err = p.Step(cl.Classify(text), i+1)
		if err != nil {
			return p.Stats(), err
		}
	}
	if a.Pending() {
		p.log.Debug("dropping unterminated continuation at end of file")
	}

	err = p.End()
	return p.Stats(), err
}

// TransformFile translates the file name to out and closes out.
func TransformFile(name string, out sink.Sink, opt Options) (stats Stats, err error) {
	defer func() {
		cerr := out.Close()
		if err == nil && cerr != nil {
			err = fmt.Errorf("%s: close output: %w", name, cerr)
		}
	}()

	f, err := os.Open(name)
	if err != nil {
		return stats, err
	}
	defer f.Close()

	stats, err = Transform(f, out, opt)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", name, err)
	}
	opt.logger().Info("translated", "file", name,
		"statements", stats.Statements,
		"lines", stats.Lines,
		"unprocessed", stats.Unprocessed,
	)
	return stats, nil
}
