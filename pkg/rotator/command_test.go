// pkg/rotator/command_test.go
package rotator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTokens(t *testing.T) {
	tests := map[Command]string{
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

	for cmd, token := range tests {
		assert.True(t, cmd.Valid())
		assert.Equal(t, token, cmd.String())
		assert.Len(t, cmd.String(), 4)
	}

	assert.False(t, Command(200).Valid())
	assert.Equal(t, "Command(200)", Command(200).String())
}

func TestDirectionTokens(t *testing.T) {
	tests := []struct {
		dir   Direction
		token string
		name  string
	}{
		{Up, "UP", "up"},
		{Down, "DN", "down"},
		{StopVertical, "SV", "stop-vertical"},
		{Left, "LT", "left"},
		{Right, "RT", "right"},
		{StopHorizontal, "SH", "stop-horizontal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.token, tt.dir.String())
			assert.Equal(t, tt.name, tt.dir.Name())

			parsed, err := ParseDirection(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.dir, parsed)

			parsed, err = ParseDirection(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.dir, parsed)
		})
	}
}

func TestParseDirection_CaseInsensitive(t *testing.T) {
	d, err := ParseDirection(" Stop-Horizontal ")
	require.NoError(t, err)
	assert.Equal(t, StopHorizontal, d)

	d, err = ParseDirection("dn")
	require.NoError(t, err)
	assert.Equal(t, Down, d)
}

func TestParseDirection_Unknown(t *testing.T) {
	_, err := ParseDirection("sideways")
	assert.Error(t, err)

	assert.False(t, Direction(9).Valid())
	assert.Equal(t, "Direction(9)", Direction(9).Name())
}
