// pkg/rotator/rotatortest/simulator.go
package rotatortest

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DegreesPerStep is the simulated motor resolution.
const DegreesPerStep = 0.1

// Simulator emulates rotator firmware. Positions are kept in device
// coordinates, so the horizontal axis is the negation of what a client
// reports.
type Simulator struct {
	mutex sync.Mutex

	Firmware             string
	Vertical             float64
	Horizontal           float64
	VerticalCalibrated   bool
	HorizontalCalibrated bool
	Moving               map[string]bool
	Halted               bool
}

// NewSimulator creates an uncalibrated simulator at the origin.
func NewSimulator() *Simulator {
	return &Simulator{
		Firmware: "sim-1.0.0",
		Moving:   make(map[string]bool),
	}
}

// Responder returns a Responder backed by the simulator.
func (s *Simulator) Responder() Responder {
	return func(request string) Reply {
		echo := strings.TrimSuffix(request, "\n")
		return Reply{echo + "\n" + s.handle(strings.Fields(echo)) + "\n"}
	}
}

func (s *Simulator) handle(fields []string) string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(fields) == 0 {
		return "ERR empty command"
	}
	verb, args := fields[0], fields[1:]

	switch verb {
	case "DVER", "DHOR":
		if len(args) != 1 {
			return "ERR missing argument"
		}
		degrees, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return "ERR invalid argument"
		}
		if !s.VerticalCalibrated || !s.HorizontalCalibrated {
			return "ERR not calibrated"
		}
		if verb == "DVER" {
			s.Vertical = degrees
		} else {
			s.Horizontal = degrees
		}
		return "OK"

	case "CALV":
		if len(args) == 1 && args[0] == "SET" {
			s.Vertical = 0
		}
		s.VerticalCalibrated = true
		return "OK"

	case "CALH":
		s.Horizontal = 0
		s.HorizontalCalibrated = true
		return "OK"

	case "MOVC":
		if len(args) != 1 {
			return "ERR missing direction"
		}
		switch args[0] {
		case "UP", "DN":
			s.Moving["vertical"] = true
		case "LT", "RT":
			s.Moving["horizontal"] = true
		case "SV":
			delete(s.Moving, "vertical")
		case "SH":
			delete(s.Moving, "horizontal")
		default:
			return "ERR unknown direction"
		}
		return "OK"

	case "MOVV", "MOVH":
		if len(args) != 1 {
			return "ERR missing steps"
		}
		steps, err := strconv.Atoi(args[0])
		if err != nil {
			return "ERR invalid steps"
		}
		if verb == "MOVV" {
			s.Vertical += float64(steps) * DegreesPerStep
		} else {
			s.Horizontal += float64(steps) * DegreesPerStep
		}
		return "OK"

	case "GETP":
		return fmt.Sprintf("OK %.3f %.3f", s.Vertical, s.Horizontal)

	case "GETC":
		return "OK " + strconv.FormatBool(s.VerticalCalibrated && s.HorizontalCalibrated)

	case "VERS":
		return "OK " + s.Firmware

	case "HALT":
		s.Moving = make(map[string]bool)
		s.Halted = true
		return "OK"

	default:
		return "ERR unknown command"
	}
}
