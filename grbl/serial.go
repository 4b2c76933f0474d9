package grbl

import (
	"io"

	"github.com/tarm/serial"
)

// DefaultBaud is the Grbl 1.x serial rate.
const DefaultBaud = 115200

// Open opens the serial port name at baud.
func Open(name string, baud int) (io.ReadWriteCloser, error) {
	if baud == 0 {
		baud = DefaultBaud
	}
	return serial.OpenPort(&serial.Config{Name: name, Baud: baud})
}
