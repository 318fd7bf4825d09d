// pkg/rotator/command.go
package rotator

import (
	"fmt"
	"strings"
)

// Command is a protocol verb accepted by the rotator
type Command uint8

const (
	DegreesVertical Command = iota
	DegreesHorizontal

	CalibrateVertical
	CalibrateHorizontal

	Movement
	MoveVerticalSteps
	MoveHorizontalSteps

	GetPosition
	GetCalibrated
	GetVersion

	Halt
)

var commandTokens = [...]string{
	DegreesVertical:     "DVER",
	DegreesHorizontal:   "DHOR",
	CalibrateVertical:   "CALV",
	CalibrateHorizontal: "CALH",
	Movement:            "MOVC",
	MoveVerticalSteps:   "MOVV",
	MoveHorizontalSteps: "MOVH",
	GetPosition:         "GETP",
	GetCalibrated:       "GETC",
	GetVersion:          "VERS",
	Halt:                "HALT",
}

// Valid reports whether c is one of the known commands
func (c Command) Valid() bool {
	return int(c) < len(commandTokens)
}

// String returns the 4-character wire token
func (c Command) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Command(%d)", uint8(c))
	}
	return commandTokens[c]
}

// Direction is the argument of the Movement command
type Direction uint8

const (
	// Vertical
	Up Direction = iota
	Down
	StopVertical

	// Horizontal
	Left
	Right
	StopHorizontal
)

var directionTokens = [...]string{
	Up:             "UP",
	Down:           "DN",
	StopVertical:   "SV",
	Left:           "LT",
	Right:          "RT",
	StopHorizontal: "SH",
}

var directionNames = [...]string{
	Up:             "up",
	Down:           "down",
	StopVertical:   "stop-vertical",
	Left:           "left",
	Right:          "right",
	StopHorizontal: "stop-horizontal",
}

// Valid reports whether d is one of the known directions
func (d Direction) Valid() bool {
	return int(d) < len(directionTokens)
}

// String returns the 2-character wire token
func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionTokens[d]
}

// Name returns the human readable name used by the HTTP and CLI front-ends
func (d Direction) Name() string {
	if !d.Valid() {
		return d.String()
	}
	return directionNames[d]
}

// ParseDirection accepts either a wire token ("UP", "SV") or a name ("up",
// "stop-vertical"), case-insensitive.
func ParseDirection(s string) (Direction, error) {
	s = strings.TrimSpace(s)
	for i := range directionTokens {
		if strings.EqualFold(s, directionTokens[i]) || strings.EqualFold(s, directionNames[i]) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
