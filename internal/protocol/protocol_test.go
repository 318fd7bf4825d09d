// internal/protocol/protocol_test.go
package protocol

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.uber.org/zap/zaptest"

	"rotator-service/internal/config"
	"rotator-service/internal/model"
	"rotator-service/pkg/rotator"
	"rotator-service/pkg/rotator/rotatortest"
)

const testReadTimeout = 50 * time.Millisecond

// serveTCP answers every line received on a single connection with responder
func serveTCP(t *testing.T, responder rotatortest.Responder) (string, int) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			for _, burst := range responder(line) {
				if _, err := conn.Write([]byte(burst)); err != nil {
					return
				}
			}
		}
	}()

	addr := listener.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

// serveWebSocket answers every message with responder, one message per burst
func serveWebSocket(t *testing.T, responder rotatortest.Responder) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			for _, burst := range responder(string(data)) {
				if err := conn.WriteMessage(websocket.BinaryMessage, []byte(burst)); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestSerialMode(t *testing.T) {
	mode := serialMode(&SerialConfig{BaudRate: rotator.BaudRate, DataBits: 8, StopBits: 2, Parity: "even"})
	assert.Equal(t, rotator.BaudRate, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.TwoStopBits, mode.StopBits)
	assert.Equal(t, serial.EvenParity, mode.Parity)

	mode = serialMode(&SerialConfig{BaudRate: 9600, DataBits: 7, StopBits: 1, Parity: "none"})
	assert.Equal(t, serial.OneStopBit, mode.StopBits)
	assert.Equal(t, serial.NoParity, mode.Parity)

	mode = serialMode(&SerialConfig{Parity: "odd"})
	assert.Equal(t, serial.OddParity, mode.Parity)
}

func TestSerialConnection_NotOpen(t *testing.T) {
	conn := NewSerialConnection(&SerialConfig{Port: "/dev/does-not-exist"}, zaptest.NewLogger(t))

	assert.False(t, conn.IsOpen())
	assert.NoError(t, conn.SetBaudRate(rotator.BaudRate))
	assert.NoError(t, conn.SetReadTimeout(time.Second))

	_, err := conn.Write([]byte("VERS\n"))
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = conn.Read(make([]byte, 8))
	assert.ErrorIs(t, err, ErrNotOpen)

	assert.Error(t, conn.Open(context.Background()))
	assert.NoError(t, conn.Close())
	assert.Equal(t, "/dev/does-not-exist", conn.GetAddress())
	assert.Equal(t, model.ConnectionTypeSerial, conn.GetConnectionType())
}

func TestTCPConnection_RoundTrip(t *testing.T) {
	sim := rotatortest.NewSimulator()
	host, port := serveTCP(t, sim.Responder())

	conn := NewTCPConnection(&TCPConfig{Host: host, Port: port, DialTimeout: time.Second}, zaptest.NewLogger(t))
	require.NoError(t, conn.Open(context.Background()))
	defer conn.Close()
	assert.True(t, conn.IsOpen())

	client, err := rotator.New(conn, rotator.WithReadTimeout(testReadTimeout))
	require.NoError(t, err)

	ctx := context.Background()
	version, err := client.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, sim.Firmware, version)

	require.NoError(t, client.CalibrateVertical(ctx, true))
	require.NoError(t, client.CalibrateHorizontal(ctx))
	require.NoError(t, client.SetPositionVertical(ctx, 12.5))
	require.NoError(t, client.SetPositionHorizontal(ctx, 30))

	position, err := client.Position(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, position.Vertical, 1e-9)
	assert.InDelta(t, 30, position.Horizontal, 1e-9)

	stats := conn.GetStats()
	assert.True(t, stats.IsConnected)
	assert.Positive(t, stats.BytesWritten)
	assert.Positive(t, stats.BytesRead)
	assert.Positive(t, stats.IdleReads)
	assert.Equal(t, net.JoinHostPort(host, strconv.Itoa(port)), conn.GetAddress())

	require.NoError(t, conn.Close())
	assert.False(t, conn.IsOpen())
	assert.False(t, conn.GetStats().IsConnected)
}

func TestTCPConnection_IdleReadReturnsZero(t *testing.T) {
	host, port := serveTCP(t, rotatortest.Silent())

	conn := NewTCPConnection(&TCPConfig{Host: host, Port: port, ReadTimeout: testReadTimeout}, zaptest.NewLogger(t))
	require.NoError(t, conn.Open(context.Background()))
	defer conn.Close()

	n, err := conn.Read(make([]byte, 16))
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestTCPConnection_DialFailure(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	conn := NewTCPConnection(&TCPConfig{Host: "127.0.0.1", Port: port, DialTimeout: time.Second}, zaptest.NewLogger(t))
	assert.Error(t, conn.Open(context.Background()))
	assert.False(t, conn.IsOpen())

	_, err = conn.Write([]byte("HALT\n"))
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestWebSocketConnection_RoundTrip(t *testing.T) {
	url := serveWebSocket(t, rotatortest.Echo("OK true"))

	conn := NewWebSocketConnection(&WebSocketConfig{URL: url, HandshakeTimeout: time.Second}, zaptest.NewLogger(t))
	require.NoError(t, conn.Open(context.Background()))
	defer conn.Close()

	client, err := rotator.New(conn, rotator.WithReadTimeout(testReadTimeout))
	require.NoError(t, err)

	calibrated, err := client.Calibrated(context.Background())
	require.NoError(t, err)
	assert.True(t, calibrated)

	assert.Equal(t, model.ConnectionTypeWebSocket, conn.GetConnectionType())
	assert.Equal(t, url, conn.GetAddress())
	assert.Positive(t, conn.GetStats().BytesRead)
}

func TestWebSocketConnection_SplitAcrossReads(t *testing.T) {
	url := serveWebSocket(t, rotatortest.Fixed("GETP\nOK 1.000 -2.000\n"))

	conn := NewWebSocketConnection(&WebSocketConfig{URL: url, ReadTimeout: testReadTimeout}, zaptest.NewLogger(t))
	require.NoError(t, conn.Open(context.Background()))
	defer conn.Close()

	_, err := conn.Write([]byte("GETP\n"))
	require.NoError(t, err)

	var received strings.Builder
	buffer := make([]byte, 4)
	for {
		n, err := conn.Read(buffer)
		require.NoError(t, err)
		if n == 0 {
			break
		}
		received.Write(buffer[:n])
	}
	assert.Equal(t, "GETP\nOK 1.000 -2.000\n", received.String())
}

func TestWebSocketConnection_ClosedByPeer(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer server.Close()

	conn := NewWebSocketConnection(&WebSocketConfig{
		URL:         "ws" + strings.TrimPrefix(server.URL, "http"),
		ReadTimeout: time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, conn.Open(context.Background()))
	defer conn.Close()

	_, err := conn.Read(make([]byte, 16))
	assert.Error(t, err)
	assert.Equal(t, int64(1), conn.GetStats().ErrorCount)
}

func TestCreateConnection(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name     string
		cfg      config.RotatorConfig
		wantType model.ConnectionType
		wantErr  bool
	}{
		{
			name:     "serial",
			cfg:      config.RotatorConfig{ConnectionType: "serial", ReadTimeout: time.Second, Serial: config.SerialPortConfig{Port: "/dev/ttyUSB0"}},
			wantType: model.ConnectionTypeSerial,
		},
		{
			name:     "tcp",
			cfg:      config.RotatorConfig{ConnectionType: "tcp", TCP: config.TCPPortConfig{Host: "localhost", Port: 4001}},
			wantType: model.ConnectionTypeTCP,
		},
		{
			name:     "websocket",
			cfg:      config.RotatorConfig{ConnectionType: "websocket", WebSocket: config.WebSocketPortConfig{URL: "ws://localhost:8080/serial"}},
			wantType: model.ConnectionTypeWebSocket,
		},
		{
			name:    "serial without port",
			cfg:     config.RotatorConfig{ConnectionType: "serial"},
			wantErr: true,
		},
		{
			name:    "tcp port out of range",
			cfg:     config.RotatorConfig{ConnectionType: "tcp", TCP: config.TCPPortConfig{Host: "localhost", Port: 70000}},
			wantErr: true,
		},
		{
			name:    "websocket without url",
			cfg:     config.RotatorConfig{ConnectionType: "websocket"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			cfg:     config.RotatorConfig{ConnectionType: "bluetooth"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := CreateConnection(&tt.cfg, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, conn.GetConnectionType())
			assert.False(t, conn.IsOpen())
		})
	}
}

func TestCreateConnection_SerialDefaults(t *testing.T) {
	conn, err := CreateConnection(&config.RotatorConfig{
		ConnectionType: "serial",
		ReadTimeout:    250 * time.Millisecond,
		Serial:         config.SerialPortConfig{Port: "/dev/ttyACM0"},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	sc := conn.(*SerialConnection)
	assert.Equal(t, rotator.BaudRate, sc.mode.BaudRate)
	assert.Equal(t, 8, sc.mode.DataBits)
	assert.Equal(t, serial.NoParity, sc.mode.Parity)
	assert.Equal(t, 250*time.Millisecond, sc.config.Timeout)
}
