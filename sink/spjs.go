package sink

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mastercactapus/clpost/spjs"
)

// batchSize is the number of lines per sendjson frame.
const batchSize = 100

// ErrWipedQueue is returned when the bridge drops queued lines.
var ErrWipedQueue = errors.New("spjs: wiped queue")

// ErrTimeout is returned by Close when the bridge does not confirm in time.
var ErrTimeout = errors.New("spjs: timed out waiting for completion")

// SPJS sends lines to a serial port through a Serial Port JSON Server.
// It owns the client and closes it on Close.
type SPJS struct {
	// Timeout bounds the wait in Close; zero waits forever.
	Timeout time.Duration

	c    *spjs.Client
	port string
	log  *slog.Logger

	pending []spjs.Data
	waits   []chan error

	register chan waiter
	done     chan struct{}
}

type waiter struct {
	id string
	ch chan error
}

var _ Sink = &SPJS{}

func NewSPJS(c *spjs.Client, port string, logger *slog.Logger) *SPJS {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &SPJS{
		c:        c,
		port:     port,
		log:      logger,
		register: make(chan waiter),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *SPJS) loop() {
	waiting := make(map[string]chan error)
	for {
		select {
		case <-s.done:
			return
		case w := <-s.register:
			waiting[w.id] = w.ch
		case resp := <-s.c.Messages():
			switch msg := resp.(type) {
			case *spjs.CmdStatus:
				switch msg.Cmd {
				case "WipedQueue":
					for key, ch := range waiting {
						ch <- ErrWipedQueue
						delete(waiting, key)
					}
				case "Complete":
					if ch := waiting[msg.ID]; ch != nil {
						ch <- nil
						delete(waiting, msg.ID)
					}
				}
			case *spjs.SerialPortList:
				for _, port := range msg.SerialPorts {
					if port.Name != s.port || port.IsOpen {
						continue
					}
					s.log.Info("opening port", "port", s.port)
					if err := s.c.WriteString("open " + s.port + " grbl 115200"); err != nil {
						s.log.Error("open port", "port", s.port, "err", err)
					}
				}
			case *spjs.ErrorMessage:
				s.log.Warn("spjs: " + msg.Error)
			case *spjs.DataFrame:
				s.log.Debug("spjs data", "port", msg.Port, "data", msg.Data)
			}
		}
	}
}

func (s *SPJS) flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	j := spjs.JSON{Port: s.port, Data: s.pending}
	s.pending = nil

	ch := make(chan error, 1)
	s.register <- waiter{id: j.Data[len(j.Data)-1].ID, ch: ch}
	s.waits = append(s.waits, ch)
	return s.c.SendJSON(j)
}

func (s *SPJS) WriteLine(text string) error {
	s.pending = append(s.pending, spjs.Data{Data: text + "\n", ID: spjs.NextID()})
	if len(s.pending) < batchSize {
		return nil
	}
	return s.flush()
}

func (s *SPJS) Close() error {
	err := s.flush()
	if err == nil {
		err = s.wait()
	}
	close(s.done)
	cerr := s.c.Close()
	if err != nil {
		return err
	}
	return cerr
}

func (s *SPJS) wait() error {
	var timeout <-chan time.Time
	if s.Timeout > 0 {
		timeout = time.After(s.Timeout)
	}
	var err error
	for _, ch := range s.waits {
		select {
		case e := <-ch:
			if err == nil {
				err = e
			}
		case <-timeout:
			return ErrTimeout
		}
	}
	return err
}
