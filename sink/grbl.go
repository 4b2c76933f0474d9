package sink

import (
	"io"
	"log/slog"
	"strings"

	"github.com/mastercactapus/clpost/grbl"
)

// Grbl streams lines to a Grbl controller. Close blocks until every line
// has been acknowledged and returns the first controller error.
type Grbl struct {
	conn *grbl.Conn
	log  *slog.Logger
	done chan struct{}
}

var _ Sink = &Grbl{}

func NewGrbl(rw io.ReadWriter, logger *slog.Logger) *Grbl {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := &Grbl{
		conn: grbl.NewConn(rw),
		log:  logger,
		done: make(chan struct{}),
	}
	go g.readLoop()
	return g
}

func (g *Grbl) readLoop() {
	defer close(g.done)
	for {
		data, err := g.conn.ReadLine()
		if err != nil {
			if err != io.ErrClosedPipe {
				g.log.Error("grbl connection lost", "err", err)
			}
			return
		}
		switch {
		case grbl.IsStatus(data):
			stat, err := grbl.ParseStatus(data)
			if err != nil {
				g.log.Warn("parse grbl status", "err", err)
				continue
			}
			g.log.Debug("grbl status", "state", stat.State, "x", stat.MPos.X, "y", stat.MPos.Y, "z", stat.MPos.Z)
		case strings.HasPrefix(data, "["), strings.HasPrefix(data, "Grbl"):
			g.log.Info("grbl: " + data)
		}
	}
}

func (g *Grbl) WriteLine(text string) error {
	return g.conn.WriteLine(text)
}

func (g *Grbl) Close() error {
	err := g.conn.Flush()
	cerr := g.conn.Close()
	if err != nil {
		return err
	}
	return cerr
}
