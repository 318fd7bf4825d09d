// internal/protocol/serial_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"rotator-service/internal/model"
)

// SerialConnection implements Connection for a local serial port
type SerialConnection struct {
	config *SerialConfig
	port   serial.Port
	mode   *serial.Mode
	logger *zap.Logger
	mutex  sync.RWMutex
	isOpen bool
	stats  statsRecorder
}

// NewSerialConnection creates a new serial connection
func NewSerialConnection(config *SerialConfig, logger *zap.Logger) *SerialConnection {
	return &SerialConnection{
		config: config,
		mode:   serialMode(config),
		logger: logger.With(
			zap.String("protocol", "serial"),
			zap.String("port", config.Port),
		),
	}
}

// serialMode converts the configuration into a serial.Mode
func serialMode(config *SerialConfig) *serial.Mode {
	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
	}

	switch config.StopBits {
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		mode.StopBits = serial.OneStopBit
	}

	switch config.Parity {
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}

	return mode
}

// Open opens the serial port
func (sc *SerialConnection) Open(ctx context.Context) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.isOpen {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	sc.logger.Info("Opening serial port",
		zap.Int("baud_rate", sc.mode.BaudRate),
		zap.Duration("read_timeout", sc.config.Timeout),
	)

	port, err := serial.Open(sc.config.Port, sc.mode)
	if err != nil {
		sc.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	if sc.config.Timeout > 0 {
		if err := port.SetReadTimeout(sc.config.Timeout); err != nil {
			port.Close()
			return fmt.Errorf("failed to set read timeout: %w", err)
		}
	}

	// Drop anything the device sent before we were listening
	if err := port.ResetInputBuffer(); err != nil {
		sc.logger.Warn("Failed to reset serial input buffer", zap.Error(err))
	}

	sc.port = port
	sc.isOpen = true
	sc.stats.setConnected(true)

	sc.logger.Info("Serial port opened successfully")
	return nil
}

// Close closes the serial port
func (sc *SerialConnection) Close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return nil
	}

	if err := sc.port.Close(); err != nil {
		sc.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	sc.port = nil
	sc.isOpen = false
	sc.stats.setConnected(false)

	sc.logger.Info("Serial port closed successfully")
	return nil
}

// IsOpen returns whether the port is open
func (sc *SerialConnection) IsOpen() bool {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.isOpen && sc.port != nil
}

// SetBaudRate changes the line speed, re-applying the mode if the port is open
func (sc *SerialConnection) SetBaudRate(baud int) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	sc.mode.BaudRate = baud
	if !sc.isOpen {
		return nil
	}

	if err := sc.port.SetMode(sc.mode); err != nil {
		return fmt.Errorf("failed to set baud rate %d: %w", baud, err)
	}

	sc.logger.Debug("Serial baud rate set", zap.Int("baud_rate", baud))
	return nil
}

// SetReadTimeout sets how long a read waits for data before returning 0 bytes
func (sc *SerialConnection) SetReadTimeout(timeout time.Duration) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	sc.config.Timeout = timeout
	if !sc.isOpen {
		return nil
	}

	if err := sc.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set read timeout: %w", err)
	}
	return nil
}

// Write writes the whole buffer to the serial port
func (sc *SerialConnection) Write(data []byte) (int, error) {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()

	if !sc.isOpen || sc.port == nil {
		return 0, ErrNotOpen
	}

	startTime := time.Now()
	n, err := sc.port.Write(data)
	if err != nil {
		sc.stats.recordError()
		sc.logger.Error("Serial write failed", zap.Error(err))
		return n, fmt.Errorf("failed to write to serial port: %w", err)
	}

	if n != len(data) {
		sc.stats.recordError()
		return n, fmt.Errorf("incomplete write: wrote %d of %d bytes: %w", n, len(data), io.ErrShortWrite)
	}

	sc.stats.recordWrite(n, time.Since(startTime))
	sc.logger.Debug("Serial write completed", zap.Int("bytes", n))
	return n, nil
}

// Read reads what arrived within the read timeout; 0 bytes means idle
func (sc *SerialConnection) Read(buffer []byte) (int, error) {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()

	if !sc.isOpen || sc.port == nil {
		return 0, ErrNotOpen
	}

	n, err := sc.port.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		sc.stats.recordError()
		sc.logger.Error("Serial read failed", zap.Error(err))
		return n, fmt.Errorf("failed to read from serial port: %w", err)
	}

	sc.stats.recordRead(n)
	return n, nil
}

// GetConnectionType returns the connection type
func (sc *SerialConnection) GetConnectionType() model.ConnectionType {
	return model.ConnectionTypeSerial
}

// GetAddress returns the serial device path
func (sc *SerialConnection) GetAddress() string {
	return sc.config.Port
}

// GetStats returns a snapshot of the connection statistics
func (sc *SerialConnection) GetStats() ProtocolStats {
	return sc.stats.snapshot()
}
