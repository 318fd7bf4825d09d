// internal/protocol/protocol.go
package protocol

import (
	"context"
	"errors"
	"sync"
	"time"

	"rotator-service/internal/model"
	"rotator-service/pkg/rotator"
)

// ErrNotOpen is returned when a connection is used before Open or after Close
var ErrNotOpen = errors.New("connection not open")

// Connection is a rotator.Transport with a lifecycle
type Connection interface {
	rotator.Transport

	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Protocol information
	GetConnectionType() model.ConnectionType
	GetAddress() string

	// Diagnostics
	GetStats() ProtocolStats
}

// ProtocolStats provides protocol-level statistics
type ProtocolStats struct {
	BytesWritten   int64         `json:"bytes_written"`
	BytesRead      int64         `json:"bytes_read"`
	OperationCount int64         `json:"operation_count"`
	ErrorCount     int64         `json:"error_count"`
	IdleReads      int64         `json:"idle_reads"`
	LastActivity   time.Time     `json:"last_activity"`
	AverageLatency time.Duration `json:"average_latency"`
	IsConnected    bool          `json:"is_connected"`
}

// statsRecorder guards ProtocolStats separately from the connection lock so
// diagnostics never wait behind a blocking read
type statsRecorder struct {
	mutex sync.Mutex
	stats ProtocolStats
}

func (sr *statsRecorder) snapshot() ProtocolStats {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	return sr.stats
}

func (sr *statsRecorder) setConnected(connected bool) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	sr.stats.IsConnected = connected
	if connected {
		sr.stats.LastActivity = time.Now()
	}
}

func (sr *statsRecorder) recordWrite(n int, latency time.Duration) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	sr.stats.BytesWritten += int64(n)
	sr.stats.OperationCount++
	sr.stats.LastActivity = time.Now()
	sr.updateAverageLatency(latency)
}

func (sr *statsRecorder) recordRead(n int) {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	if n == 0 {
		sr.stats.IdleReads++
		return
	}
	sr.stats.BytesRead += int64(n)
	sr.stats.OperationCount++
	sr.stats.LastActivity = time.Now()
}

func (sr *statsRecorder) recordError() {
	sr.mutex.Lock()
	defer sr.mutex.Unlock()
	sr.stats.ErrorCount++
}

// updateAverageLatency updates the running average latency
func (sr *statsRecorder) updateAverageLatency(newLatency time.Duration) {
	if sr.stats.AverageLatency == 0 {
		sr.stats.AverageLatency = newLatency
	} else {
		sr.stats.AverageLatency = (sr.stats.AverageLatency + newLatency) / 2
	}
}
