// internal/protocol/websocket_connection.go
package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rotator-service/internal/model"
)

// WebSocketConnection implements Connection for a serial-over-WebSocket
// bridge. Every message from the bridge is a chunk of bytes from the line.
type WebSocketConnection struct {
	config   *WebSocketConfig
	conn     *websocket.Conn
	baudRate int
	logger   *zap.Logger
	mutex    sync.RWMutex
	isOpen   bool
	stats    statsRecorder

	incoming chan []byte
	done     chan struct{}
	pumpErr  error
	leftover []byte
}

// NewWebSocketConnection creates a new WebSocket connection
func NewWebSocketConnection(config *WebSocketConfig, logger *zap.Logger) *WebSocketConnection {
	return &WebSocketConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "websocket"),
			zap.String("url", config.URL),
		),
	}
}

// Open performs the WebSocket handshake and starts the receive pump
func (wc *WebSocketConnection) Open(ctx context.Context) error {
	wc.mutex.Lock()
	defer wc.mutex.Unlock()

	if wc.isOpen {
		return nil
	}

	wc.logger.Info("Opening WebSocket connection")

	dialer := websocket.Dialer{HandshakeTimeout: wc.config.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, wc.config.URL, nil)
	if err != nil {
		wc.logger.Error("Failed to open WebSocket connection", zap.Error(err))
		return fmt.Errorf("failed to connect to %s: %w", wc.config.URL, err)
	}

	wc.conn = conn
	wc.incoming = make(chan []byte, 64)
	wc.done = make(chan struct{})
	wc.pumpErr = nil
	wc.leftover = nil
	wc.isOpen = true
	wc.stats.setConnected(true)

	go wc.pump(conn, wc.incoming, wc.done)

	wc.logger.Info("WebSocket connection opened successfully")
	return nil
}

// pump owns all reads from conn. gorilla/websocket does not allow a read to
// resume after a deadline expires, so timeouts are applied on the channel.
func (wc *WebSocketConnection) pump(conn *websocket.Conn, incoming chan<- []byte, done chan<- struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			wc.mutex.Lock()
			wc.pumpErr = err
			wc.mutex.Unlock()
			return
		}
		if len(data) > 0 {
			incoming <- data
		}
	}
}

// Close sends a close frame and closes the underlying connection
func (wc *WebSocketConnection) Close() error {
	wc.mutex.Lock()
	conn := wc.conn
	done := wc.done
	incoming := wc.incoming
	if !wc.isOpen || conn == nil {
		wc.mutex.Unlock()
		return nil
	}
	wc.conn = nil
	wc.isOpen = false
	wc.mutex.Unlock()

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second)); err != nil {
		wc.logger.Debug("Failed to send close frame", zap.Error(err))
	}

	err := conn.Close()

	// Unblock the pump if it is waiting on a full channel
	go func() {
		for range incoming {
		}
	}()
	<-done
	close(incoming)

	wc.stats.setConnected(false)

	if err != nil {
		wc.logger.Error("Failed to close WebSocket connection", zap.Error(err))
		return fmt.Errorf("failed to close WebSocket connection: %w", err)
	}

	wc.logger.Info("WebSocket connection closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (wc *WebSocketConnection) IsOpen() bool {
	wc.mutex.RLock()
	defer wc.mutex.RUnlock()
	return wc.isOpen && wc.conn != nil
}

// SetBaudRate records the requested baud rate. The bridge owns the serial
// line settings.
func (wc *WebSocketConnection) SetBaudRate(baud int) error {
	wc.mutex.Lock()
	defer wc.mutex.Unlock()

	wc.baudRate = baud
	wc.logger.Debug("Baud rate is managed by the bridge", zap.Int("baud_rate", baud))
	return nil
}

// SetReadTimeout sets how long a read waits for data before returning 0 bytes
func (wc *WebSocketConnection) SetReadTimeout(timeout time.Duration) error {
	wc.mutex.Lock()
	defer wc.mutex.Unlock()

	wc.config.ReadTimeout = timeout
	return nil
}

// Write sends the buffer as one binary message
func (wc *WebSocketConnection) Write(data []byte) (int, error) {
	wc.mutex.RLock()
	defer wc.mutex.RUnlock()

	if !wc.isOpen || wc.conn == nil {
		return 0, ErrNotOpen
	}

	startTime := time.Now()
	if err := wc.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		wc.stats.recordError()
		wc.logger.Error("WebSocket write failed", zap.Error(err))
		return 0, fmt.Errorf("failed to write to WebSocket connection: %w", err)
	}

	wc.stats.recordWrite(len(data), time.Since(startTime))
	wc.logger.Debug("WebSocket write completed", zap.Int("bytes", len(data)))
	return len(data), nil
}

// Read returns buffered bytes or waits up to the read timeout for the next
// message; 0 bytes means idle
func (wc *WebSocketConnection) Read(buffer []byte) (int, error) {
	wc.mutex.Lock()
	if !wc.isOpen || wc.conn == nil {
		wc.mutex.Unlock()
		return 0, ErrNotOpen
	}

	if len(wc.leftover) > 0 {
		n := copy(buffer, wc.leftover)
		wc.leftover = wc.leftover[n:]
		wc.mutex.Unlock()
		wc.stats.recordRead(n)
		return n, nil
	}

	incoming := wc.incoming
	done := wc.done
	timeout := wc.config.ReadTimeout
	wc.mutex.Unlock()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case data := <-incoming:
		return wc.deliver(buffer, data), nil
	case <-done:
		// The pump queues every message before it exits
		select {
		case data := <-incoming:
			return wc.deliver(buffer, data), nil
		default:
		}
		wc.mutex.RLock()
		err := wc.pumpErr
		wc.mutex.RUnlock()
		wc.stats.recordError()
		wc.logger.Error("WebSocket read failed", zap.Error(err))
		return 0, fmt.Errorf("failed to read from WebSocket connection: %w", err)
	case <-timer:
		wc.stats.recordRead(0)
		return 0, nil
	}
}

// deliver copies a message into buffer and keeps what does not fit
func (wc *WebSocketConnection) deliver(buffer, data []byte) int {
	n := copy(buffer, data)
	if n < len(data) {
		wc.mutex.Lock()
		wc.leftover = append(wc.leftover, data[n:]...)
		wc.mutex.Unlock()
	}
	wc.stats.recordRead(n)
	return n
}

// GetConnectionType returns the connection type
func (wc *WebSocketConnection) GetConnectionType() model.ConnectionType {
	return model.ConnectionTypeWebSocket
}

// GetAddress returns the bridge URL
func (wc *WebSocketConnection) GetAddress() string {
	return wc.config.URL
}

// GetStats returns a snapshot of the connection statistics
func (wc *WebSocketConnection) GetStats() ProtocolStats {
	return wc.stats.snapshot()
}
