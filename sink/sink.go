// Package sink provides destinations for translated G-code lines.
package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// A Sink receives finished output lines.
type Sink interface {
	WriteLine(text string) error
	Close() error
}

// File writes lines to a file, truncating it on creation.
type File struct {
	name string
	f    *os.File
	w    *bufio.Writer
}

var _ Sink = &File{}

func NewFile(name string) (*File, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return &File{name: name, f: f, w: bufio.NewWriter(f)}, nil
}

func (f *File) Name() string { return f.name }

func (f *File) WriteLine(text string) error {
	_, err := f.w.WriteString(text + "\n")
	return err
}

func (f *File) Close() error {
	err := f.w.Flush()
	cerr := f.f.Close()
	if err != nil {
		return err
	}
	return cerr
}

// Console writes lines to standard output, or another writer.
// Closing it does nothing.
type Console struct {
	w io.Writer
}

var _ Sink = &Console{}

func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) WriteLine(text string) error {
	_, err := fmt.Fprintln(c.w, text)
	return err
}

func (c *Console) Close() error { return nil }

// Dual writes every line to both of its sinks.
type Dual struct {
	A, B Sink
}

var _ Sink = &Dual{}

func NewDual(a, b Sink) *Dual { return &Dual{A: a, B: b} }

func (d *Dual) WriteLine(text string) error {
	err := d.A.WriteLine(text)
	if berr := d.B.WriteLine(text); err == nil {
		err = berr
	}
	return err
}

func (d *Dual) Close() error {
	err := d.A.Close()
	if berr := d.B.Close(); err == nil {
		err = berr
	}
	return err
}

// Lines collects lines in memory.
type Lines struct {
	Lines  []string
	Closed bool
}

var _ Sink = &Lines{}

func (l *Lines) WriteLine(text string) error {
	l.Lines = append(l.Lines, text)
	return nil
}

func (l *Lines) Close() error {
	l.Closed = true
	return nil
}
