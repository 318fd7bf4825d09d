// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rotator-service/pkg/rotator"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.GetServerAddr())
	assert.Equal(t, "serial", cfg.Rotator.ConnectionType)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Rotator.Serial.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Rotator.ReadTimeout)
	assert.Equal(t, rotator.FramingIdle, cfg.Rotator.FramingPolicy())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsDebugEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
app:
  environment: production
rotator:
  connection_type: tcp
  read_timeout: 750ms
  framing: terminated
  tcp:
    host: 10.0.0.5
    port: 2000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddr())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "tcp", cfg.Rotator.ConnectionType)
	assert.Equal(t, 750*time.Millisecond, cfg.Rotator.ReadTimeout)
	assert.Equal(t, rotator.FramingTerminated, cfg.Rotator.FramingPolicy())
	assert.Equal(t, "10.0.0.5", cfg.Rotator.TCP.Host)
	assert.Equal(t, 2000, cfg.Rotator.TCP.Port)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "rotator:\n  serial:\n    port: /dev/ttyACM0\n")
	t.Setenv("ROTATOR_SERVICE_ROTATOR_SERIAL_PORT", "/dev/ttyS3")
	t.Setenv("ROTATOR_SERVICE_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyS3", cfg.Rotator.Serial.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := map[string]string{
		"bad level":        "logging:\n  level: verbose\n",
		"bad format":       "logging:\n  format: xml\n",
		"bad environment":  "app:\n  environment: moon\n",
		"bad type":         "rotator:\n  connection_type: usb\n",
		"zero timeout":     "rotator:\n  read_timeout: 0s\n",
		"bad framing":      "rotator:\n  framing: length\n",
		"bad parity":       "rotator:\n  serial:\n    parity: mark\n",
		"missing ws url":   "rotator:\n  connection_type: websocket\n",
		"http ws url":      "rotator:\n  connection_type: websocket\n  websocket:\n    url: http://bridge\n",
		"tls without cert": "server:\n  tls:\n    enabled: true\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestRotatorConfig_ValidWebSocket(t *testing.T) {
	rc := RotatorConfig{
		ConnectionType: "websocket",
		ReadTimeout:    time.Second,
		WebSocket:      WebSocketPortConfig{URL: "wss://bridge.local/serial"},
	}
	assert.NoError(t, rc.Validate())
}
