// internal/utils/logger_test.go
package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"rotator-service/internal/config"
	"rotator-service/pkg/rotator"
)

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rotator.log")
	logger, err := NewLogger(&config.LoggingConfig{
		Level:   "info",
		Format:  "json",
		Output:  path,
		MaxSize: 1,
	})
	require.NoError(t, err)

	logger.Info("hello", zap.String("axis", "vertical"))
	require.NoError(t, CloseLogger(logger))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"axis":"vertical"`)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	for _, level := range []string{"chatty", "panic", "dpanic"} {
		_, err := NewLogger(&config.LoggingConfig{Level: level, Output: "stdout"})
		assert.Error(t, err, level)
	}

	logger, err := NewLogger(&config.LoggingConfig{Level: "warn", Output: "stdout"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
}

func TestRotatorLogger_LogTransaction(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rl := NewRotatorLogger(zap.New(core), "serial", "/dev/ttyUSB0")

	id := uuid.New()
	rl.LogTransaction("halt", id, 20*time.Millisecond, nil)
	rl.LogTransaction("position", id, 500*time.Millisecond, errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "Rotator transaction completed", entries[0].Message)
	assert.Equal(t, "halt", entries[0].ContextMap()["operation"])
	assert.Equal(t, "serial", entries[0].ContextMap()["connection_type"])
	assert.Equal(t, id.String(), entries[0].ContextMap()["transaction_id"])

	assert.Equal(t, "Rotator transaction failed", entries[1].Message)
	assert.Equal(t, false, entries[1].ContextMap()["success"])
	assert.NotContains(t, entries[1].ContextMap(), "device_message")

	rl.LogTransaction("set_vertical", id, time.Millisecond, fmt.Errorf("set failed: %w", &rotator.ResponseError{Message: "not calibrated"}))
	assert.Equal(t, "not calibrated", logs.All()[2].ContextMap()["device_message"])
}

func TestServiceLogger_LogServiceStart(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sl := NewServiceLogger(zap.New(core), "rotator-service")

	sl.LogServiceStart("1.2.3", &config.Config{
		Server:  config.ServerConfig{Host: "0.0.0.0", Port: "8000"},
		App:     config.AppConfig{Environment: "test"},
		Rotator: config.RotatorConfig{ConnectionType: "serial", Framing: "terminated", ReadTimeout: 50 * time.Millisecond},
	})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "1.2.3", fields["version"])
	assert.Equal(t, "0.0.0.0:8000", fields["listen_addr"])
	assert.Equal(t, "serial", fields["connection_type"])
	assert.Equal(t, rotator.FramingTerminated.String(), fields["framing"])
}

func TestServiceLogger_LogAPIRequestLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sl := NewServiceLogger(zap.New(core), "http-server")

	sl.LogAPIRequest("GET", "/", "test", "127.0.0.1", "abc", 200, time.Millisecond)
	sl.LogAPIRequest("GET", "/x", "test", "127.0.0.1", "abc", 404, time.Millisecond)
	sl.LogAPIRequest("POST", "/y", "test", "127.0.0.1", "abc", 503, time.Millisecond)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
}
