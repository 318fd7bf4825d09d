// cmd/rotatorctl/commands_test.go
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"rotator-service/internal/config"
	"rotator-service/internal/model"
	"rotator-service/internal/protocol"
	"rotator-service/pkg/rotator"
	"rotator-service/pkg/rotator/rotatortest"
)

// serveSimulator accepts one rotatorctl connection after another
func serveSimulator(t *testing.T) string {
	t.Helper()

	sim := rotatortest.NewSimulator()
	responder := sim.Responder()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			reader := bufio.NewReader(conn)
			for {
				line, err := reader.ReadString('\n')
				if err != nil {
					break
				}
				for _, burst := range responder(line) {
					conn.Write([]byte(burst))
				}
			}
			conn.Close()
		}
	}()

	return listener.Addr().String()
}

func run(t *testing.T, address string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--address", address, "--read-timeout", "50ms", "--timeout", "5s"}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestRotatorctl_Session(t *testing.T) {
	address := serveSimulator(t)

	out, err := run(t, address, "version")
	require.NoError(t, err)
	assert.Equal(t, "sim-1.0.0\n", out)

	out, err = run(t, address, "calibrated")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	for _, args := range [][]string{
		{"calibrate-vertical"},
		{"calibrate-horizontal"},
		{"set-vertical", "12.5"},
		{"set-horizontal", "--", "-45"},
		{"steps-vertical", "10"},
		{"move", "up"},
		{"halt"},
	} {
		out, err = run(t, address, args...)
		require.NoError(t, err, args)
		assert.Equal(t, "OK\n", out, args)
	}

	out, err = run(t, address, "calibrated")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = run(t, address, "position")
	require.NoError(t, err)
	assert.Equal(t, "vertical:   13.500\nhorizontal: -45.000\n", out)
}

func TestRotatorctl_DeviceError(t *testing.T) {
	address := serveSimulator(t)

	_, err := run(t, address, "set-vertical", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not calibrated")
}

func TestRotatorctl_BadArguments(t *testing.T) {
	tests := [][]string{
		{"move", "sideways"},
		{"set-vertical", "north"},
		{"steps-horizontal", "3.5"},
		{"steps-vertical", "99999999999"},
		{"halt", "now"},
	}

	for _, args := range tests {
		_, err := run(t, "127.0.0.1:1", args...)
		assert.Error(t, err, args)
	}
}

func TestRotatorConfig(t *testing.T) {
	opts := &options{address: "10.0.0.5:4001", framing: "terminated"}
	rc, err := opts.rotatorConfig()
	require.NoError(t, err)
	assert.Equal(t, string(model.ConnectionTypeTCP), rc.ConnectionType)
	assert.Equal(t, "10.0.0.5", rc.TCP.Host)
	assert.Equal(t, 4001, rc.TCP.Port)
	assert.Equal(t, "terminated", rc.Framing)

	opts = &options{url: "ws://bridge.local/rotator"}
	rc, err = opts.rotatorConfig()
	require.NoError(t, err)
	assert.Equal(t, string(model.ConnectionTypeWebSocket), rc.ConnectionType)

	opts = &options{port: "/dev/ttyACM1"}
	rc, err = opts.rotatorConfig()
	require.NoError(t, err)
	assert.Equal(t, string(model.ConnectionTypeSerial), rc.ConnectionType)
	assert.Equal(t, "/dev/ttyACM1", rc.Serial.Port)

	_, err = (&options{address: "no-port"}).rotatorConfig()
	assert.Error(t, err)

	_, err = (&options{connType: "websocket", url: "http://bridge.local"}).rotatorConfig()
	assert.Error(t, err)
}

// brokenConnection opens fine but fails to close
type brokenConnection struct {
	*rotatortest.Device
}

func (bc *brokenConnection) Open(ctx context.Context) error          { return nil }
func (bc *brokenConnection) Close() error                            { return errors.New("port busy") }
func (bc *brokenConnection) IsOpen() bool                            { return true }
func (bc *brokenConnection) GetConnectionType() model.ConnectionType { return model.ConnectionTypeSerial }
func (bc *brokenConnection) GetAddress() string                      { return "/dev/ttyUSB9" }
func (bc *brokenConnection) GetStats() protocol.ProtocolStats        { return protocol.ProtocolStats{} }

func TestOpenClient_ConfigureFailureLogsClose(t *testing.T) {
	baudErr := errors.New("unsupported baud rate")
	device := rotatortest.NewDevice(nil)
	device.BaudErr = baudErr

	core, logs := observer.New(zap.InfoLevel)
	rc := &config.RotatorConfig{ConnectionType: string(model.ConnectionTypeSerial), ReadTimeout: rotator.DefaultReadTimeout}

	client, err := openClient(context.Background(), &brokenConnection{Device: device}, rc, zap.New(core))
	assert.Nil(t, client)
	assert.ErrorIs(t, err, baudErr)

	closeEntries := logs.FilterField(zap.String("action", "close")).All()
	require.Len(t, closeEntries, 1)
	assert.Equal(t, "port busy", closeEntries[0].ContextMap()["error"])
	assert.Equal(t, "/dev/ttyUSB9", closeEntries[0].ContextMap()["address"])
}
