package grbl

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mastercactapus/clpost/coord"
)

// Status is a parsed Grbl status report.
type Status struct {
	State string
	MPos  coord.Point
	WCO   coord.Point
}

func parseCoords(data string) (p coord.Point, err error) {
	parts := strings.Split(data, ",")
	if len(parts) != 3 {
		return p, errors.New("invalid number of elements")
	}
	p.X, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return p, err
	}
	p.Y, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return p, err
	}
	p.Z, err = strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return p, err
	}
	return p, nil
}

// IsStatus reports whether data looks like a status report.
func IsStatus(data string) bool {
	return strings.HasPrefix(strings.TrimSpace(data), "<")
}

// ParseStatus parses a report like <Idle|MPos:0.000,0.000,0.000|FS:0,0>.
// Fields other than MPos and WCO are ignored.
func ParseStatus(data string) (*Status, error) {
	data = strings.TrimSpace(data)
	if !strings.HasPrefix(data, "<") || !strings.HasSuffix(data, ">") {
		return nil, errors.New("not a status report: " + data)
	}
	data = strings.TrimPrefix(data, "<")
	data = strings.TrimSuffix(data, ">")
	parts := strings.Split(data, "|")
	var stat Status
	stat.State = parts[0]
	var err error
	for _, s := range parts[1:] {
		sParts := strings.SplitN(s, ":", 2)
		if len(sParts) != 2 {
			continue
		}
		switch sParts[0] {
		case "MPos":
			stat.MPos, err = parseCoords(sParts[1])
		case "WCO":
			stat.WCO, err = parseCoords(sParts[1])
		}
		if err != nil {
			return nil, err
		}
	}
	return &stat, nil
}
