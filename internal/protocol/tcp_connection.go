// internal/protocol/tcp_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"rotator-service/internal/model"
)

// TCPConnection implements Connection for a serial device server that
// exposes the rotator line as a raw TCP stream
type TCPConnection struct {
	config   *TCPConfig
	conn     net.Conn
	baudRate int
	logger   *zap.Logger
	mutex    sync.RWMutex
	isOpen   bool
	stats    statsRecorder
}

// NewTCPConnection creates a new TCP connection
func NewTCPConnection(config *TCPConfig, logger *zap.Logger) *TCPConnection {
	return &TCPConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "tcp"),
			zap.String("host", config.Host),
			zap.Int("port", config.Port),
		),
	}
}

// Open dials the device server
func (tc *TCPConnection) Open(ctx context.Context) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.isOpen {
		return nil
	}

	tc.logger.Info("Opening TCP connection")

	dialer := &net.Dialer{
		Timeout:   tc.config.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	address := tc.GetAddress()
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		tc.logger.Error("Failed to open TCP connection", zap.Error(err))
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok && tc.config.KeepAlive {
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(30 * time.Second)
	}

	tc.conn = conn
	tc.isOpen = true
	tc.stats.setConnected(true)

	tc.logger.Info("TCP connection opened successfully")
	return nil
}

// Close closes the TCP connection
func (tc *TCPConnection) Close() error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if !tc.isOpen || tc.conn == nil {
		return nil
	}

	if err := tc.conn.Close(); err != nil {
		tc.logger.Error("Failed to close TCP connection", zap.Error(err))
		return fmt.Errorf("failed to close TCP connection: %w", err)
	}

	tc.conn = nil
	tc.isOpen = false
	tc.stats.setConnected(false)

	tc.logger.Info("TCP connection closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (tc *TCPConnection) IsOpen() bool {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.isOpen && tc.conn != nil
}

// SetBaudRate records the requested baud rate. The device server owns the
// serial line settings.
func (tc *TCPConnection) SetBaudRate(baud int) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.baudRate = baud
	tc.logger.Debug("Baud rate is managed by the device server", zap.Int("baud_rate", baud))
	return nil
}

// SetReadTimeout sets how long a read waits for data before returning 0 bytes
func (tc *TCPConnection) SetReadTimeout(timeout time.Duration) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.config.ReadTimeout = timeout
	return nil
}

// Write writes the whole buffer to the TCP connection
func (tc *TCPConnection) Write(data []byte) (int, error) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	if !tc.isOpen || tc.conn == nil {
		return 0, ErrNotOpen
	}

	if tc.config.WriteTimeout > 0 {
		tc.conn.SetWriteDeadline(time.Now().Add(tc.config.WriteTimeout))
	}

	startTime := time.Now()
	n, err := tc.conn.Write(data)
	if err != nil {
		tc.stats.recordError()
		tc.logger.Error("TCP write failed", zap.Error(err))
		return n, fmt.Errorf("failed to write to TCP connection: %w", err)
	}

	tc.stats.recordWrite(n, time.Since(startTime))
	tc.logger.Debug("TCP write completed", zap.Int("bytes", n))
	return n, nil
}

// Read reads what arrived within the read timeout; 0 bytes means idle
func (tc *TCPConnection) Read(buffer []byte) (int, error) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	if !tc.isOpen || tc.conn == nil {
		return 0, ErrNotOpen
	}

	if tc.config.ReadTimeout > 0 {
		tc.conn.SetReadDeadline(time.Now().Add(tc.config.ReadTimeout))
	}

	n, err := tc.conn.Read(buffer)
	if err != nil {
		var netErr net.Error
		switch {
		case errors.As(err, &netErr) && netErr.Timeout():
			// idle
		case errors.Is(err, io.EOF):
			// peer closed; report idle so the client sees what it got
		default:
			tc.stats.recordError()
			tc.logger.Error("TCP read failed", zap.Error(err))
			return n, fmt.Errorf("failed to read from TCP connection: %w", err)
		}
	}

	tc.stats.recordRead(n)
	return n, nil
}

// GetConnectionType returns the connection type
func (tc *TCPConnection) GetConnectionType() model.ConnectionType {
	return model.ConnectionTypeTCP
}

// GetAddress returns host:port of the device server
func (tc *TCPConnection) GetAddress() string {
	return net.JoinHostPort(tc.config.Host, fmt.Sprint(tc.config.Port))
}

// GetStats returns a snapshot of the connection statistics
func (tc *TCPConnection) GetStats() ProtocolStats {
	return tc.stats.snapshot()
}
