package grbl

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
)

// bufferSize is the size of the Grbl serial receive buffer.
const bufferSize = 128

// ErrGrblReset will be returned from write methods if a reset is encountered
// before all lines are acknowledged.
var ErrGrblReset = errors.New("grbl reset")

// ErrLineTooLong is returned for a line that can never fit the receive buffer.
var ErrLineTooLong = errors.New("line exceeds grbl receive buffer")

// Conn represents a direct connection to a Grbl controller.
//
// Lines are streamed with character counting: a line is only sent when it
// fits into what is left of the controller's receive buffer. ReadLine must be
// called continuously from another goroutine so acknowledgements arrive.
type Conn struct {
	rw io.ReadWriter

	scan      *bufio.Scanner
	ackCh     chan error
	resetCh   chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once

	// stopCh is closed once the device stops sending; readErr says why.
	stopCh   chan struct{}
	stopOnce sync.Once
	readErr  error

	mx  sync.Mutex
	wMx sync.Mutex

	deviceBuf int
	lineSize  []int

	wroteLines int64
	readLines  int64
}

// NewConn creates a new Conn using the provided ReadWriter for data.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		scan:    bufio.NewScanner(rw),
		rw:      rw,
		ackCh:   make(chan error, bufferSize),
		resetCh: make(chan struct{}, 1),
		closeCh: make(chan struct{}),
		stopCh:  make(chan struct{}),
	}
}

// Close will abort any in-progress writes and close the
// underlying ReadWriter, if it implements io.Closer.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		if closer, ok := c.rw.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return err
}

func (c *Conn) stop(err error) {
	c.stopOnce.Do(func() {
		c.readErr = err
		close(c.stopCh)
	})
}

func (c *Conn) recordBufferSpace(n int) int64 {
	c.deviceBuf += n
	c.wroteLines++
	c.lineSize = append(c.lineSize, n)
	return c.wroteLines
}

func (c *Conn) waitForBufferSpace(n int) error {
	for c.deviceBuf+n > bufferSize {
		ack, err := c.next()
		if err != nil {
			return err
		}
		if ack != nil {
			return ack
		}
	}

	return nil
}

func (c *Conn) ack(e error) error {
	if len(c.lineSize) == 0 {
		// stray answer with nothing in flight
		return nil
	}
	c.readLines++
	c.deviceBuf -= c.lineSize[0]
	c.lineSize = c.lineSize[1:]
	return e
}

// next waits for one acknowledgement. ack is the controller's answer for the
// line, err is set when no further acknowledgement can arrive.
func (c *Conn) next() (ack, err error) {
	select {
	case <-c.closeCh:
		return nil, io.ErrClosedPipe
	default:
	}

	select {
	case <-c.resetCh:
		c.reset()
		return nil, ErrGrblReset
	default:
	}

	select {
	case <-c.closeCh:
		return nil, io.ErrClosedPipe
	case <-c.resetCh:
		c.reset()
		return nil, ErrGrblReset
	case e := <-c.ackCh:
		return c.ack(e), nil
	case <-c.stopCh:
		select {
		case e := <-c.ackCh:
			return c.ack(e), nil
		default:
			return nil, c.readErr
		}
	}
}

func (c *Conn) reset() {
	c.deviceBuf = 0
	c.lineSize = nil
	c.readLines = c.wroteLines
}

func (c *Conn) waitForLine(id int64) (first error) {
	for c.readLines < id {
		ack, err := c.next()
		if err != nil {
			return err
		}
		if first == nil {
			first = ack
		}
	}
	return first
}

// writeLine will block until line has been written to the serial device in full.
//
// It returns the line index.
func (c *Conn) writeLine(line []byte) (id int64, err error) {
	if len(line) > bufferSize {
		return 0, ErrLineTooLong
	}
	if c.deviceBuf == 0 {
		// nothing in flight, a banner seen before now is not our concern
		select {
		case <-c.resetCh:
		default:
		}
	}
	err = c.waitForBufferSpace(len(line))
	if err != nil {
		return 0, err
	}
	c.mx.Lock()
	_, err = c.rw.Write(line)
	c.mx.Unlock()
	if err != nil {
		return 0, err
	}
	id = c.recordBufferSpace(len(line))
	return id, nil
}

// WriteLine sends one line, appending the newline, without waiting for it
// to be executed. An error acknowledged for an earlier line is returned.
func (c *Conn) WriteLine(line string) error {
	c.wMx.Lock()
	defer c.wMx.Unlock()
	select {
	case <-c.closeCh:
		return io.ErrClosedPipe
	default:
	}

	_, err := c.writeLine([]byte(strings.TrimRight(line, "\r\n") + "\n"))
	return err
}

// Flush blocks until every line written so far is acknowledged. It returns
// the first error reported by the controller, or io.ErrUnexpectedEOF (or the
// read error) if the device went away with lines still unacknowledged.
func (c *Conn) Flush() error {
	c.wMx.Lock()
	defer c.wMx.Unlock()
	return c.waitForLine(c.wroteLines)
}

// ReadLine returns the next line from the device, recording acknowledgements
// and resets. When the device stops sending, the error is returned here and
// from every pending or later write.
func (c *Conn) ReadLine() (string, error) {
	select {
	case <-c.closeCh:
		return "", io.ErrClosedPipe
	default:
	}

	if !c.scan.Scan() {
		err := c.scan.Err()
		select {
		case <-c.closeCh:
			err = io.ErrClosedPipe
		default:
		}
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		c.stop(err)
		return "", err
	}
	line := strings.TrimSpace(c.scan.Text())

	var ack chan<- error
	var e error
	switch {
	case line == "ok":
		ack = c.ackCh
	case strings.HasPrefix(line, "error:"):
		ack, e = c.ackCh, errors.New(line)
	case strings.HasPrefix(line, "Grbl"):
		select {
		case c.resetCh <- struct{}{}:
		default:
		}
	}
	if ack != nil {
		select {
		case ack <- e:
		case <-c.closeCh:
			return line, io.ErrClosedPipe
		}
	}
	return line, nil
}
