// pkg/rotator/request_test.go
package rotator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		args []string
		want string
	}{
		{"no args", Halt, nil, "HALT\n"},
		{"empty args", GetPosition, []string{}, "GETP\n"},
		{"one arg", DegreesVertical, []string{"30.000"}, "DVER 30.000\n"},
		{"two args", CalibrateVertical, []string{"SET", "X"}, "CALV SET X\n"},
		{"direction", Movement, []string{"UP"}, "MOVC UP\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildRequest(tt.cmd, tt.args...))
		})
	}
}

func TestBuildRequest_EveryCommand(t *testing.T) {
	for cmd := Command(0); cmd.Valid(); cmd++ {
		assert.Equal(t, cmd.String()+"\n", BuildRequest(cmd))
		assert.Equal(t, cmd.String()+" a b\n", BuildRequest(cmd, "a", "b"))
	}
}
