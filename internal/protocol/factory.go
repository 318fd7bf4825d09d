// internal/protocol/factory.go
package protocol

import (
	"fmt"

	"go.uber.org/zap"

	"rotator-service/internal/config"
	"rotator-service/internal/model"
	"rotator-service/pkg/rotator"
)

// CreateConnection creates the connection selected by the rotator configuration
func CreateConnection(cfg *config.RotatorConfig, logger *zap.Logger) (Connection, error) {
	switch model.ConnectionType(cfg.ConnectionType) {
	case model.ConnectionTypeSerial:
		return createSerialConnection(cfg, logger)
	case model.ConnectionTypeTCP:
		return createTCPConnection(cfg, logger)
	case model.ConnectionTypeWebSocket:
		return createWebSocketConnection(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported connection type: %s", cfg.ConnectionType)
	}
}

// createSerialConnection creates a serial connection
func createSerialConnection(cfg *config.RotatorConfig, logger *zap.Logger) (Connection, error) {
	if cfg.Serial.Port == "" {
		return nil, fmt.Errorf("serial port is required")
	}

	serialConfig := &SerialConfig{
		Port:     cfg.Serial.Port,
		BaudRate: rotator.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "none",
		Timeout:  cfg.ReadTimeout,
	}

	if cfg.Serial.DataBits > 0 {
		serialConfig.DataBits = cfg.Serial.DataBits
	}
	if cfg.Serial.StopBits > 0 {
		serialConfig.StopBits = cfg.Serial.StopBits
	}
	if cfg.Serial.Parity != "" {
		serialConfig.Parity = cfg.Serial.Parity
	}

	return NewSerialConnection(serialConfig, logger), nil
}

// createTCPConnection creates a TCP connection
func createTCPConnection(cfg *config.RotatorConfig, logger *zap.Logger) (Connection, error) {
	if cfg.TCP.Host == "" {
		return nil, fmt.Errorf("TCP host is required")
	}
	if cfg.TCP.Port <= 0 || cfg.TCP.Port > 65535 {
		return nil, fmt.Errorf("invalid TCP port: %d", cfg.TCP.Port)
	}

	tcpConfig := &TCPConfig{
		Host:         cfg.TCP.Host,
		Port:         cfg.TCP.Port,
		KeepAlive:    cfg.TCP.KeepAlive,
		DialTimeout:  cfg.TCP.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.TCP.WriteTimeout,
	}

	return NewTCPConnection(tcpConfig, logger), nil
}

// createWebSocketConnection creates a WebSocket connection
func createWebSocketConnection(cfg *config.RotatorConfig, logger *zap.Logger) (Connection, error) {
	if cfg.WebSocket.URL == "" {
		return nil, fmt.Errorf("WebSocket URL is required")
	}

	wsConfig := &WebSocketConfig{
		URL:              cfg.WebSocket.URL,
		HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
		ReadTimeout:      cfg.ReadTimeout,
	}

	return NewWebSocketConnection(wsConfig, logger), nil
}
