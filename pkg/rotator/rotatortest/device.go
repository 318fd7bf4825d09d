// pkg/rotator/rotatortest/device.go

// Package rotatortest provides a scripted rotator.Transport for tests.
package rotatortest

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by a Device after Close.
var ErrClosed = errors.New("device closed")

// Reply is what the device sends back for one request. Each element is
// delivered as a burst; the device goes idle for one read between bursts
// and after the last one.
type Reply []string

// Responder produces the reply for a request line (including its newline).
type Responder func(request string) Reply

// Echo answers every request with its echo followed by status.
func Echo(status string) Responder {
	return func(request string) Reply {
		return Reply{request + status + "\n"}
	}
}

// Fixed answers every request with the same reply.
func Fixed(reply ...string) Responder {
	return func(string) Reply {
		return Reply(reply)
	}
}

// Silent never answers.
func Silent() Responder {
	return func(string) Reply {
		return nil
	}
}

// Device is an in-memory rotator.Transport. It is safe for concurrent use so
// tests can inspect it while a client is running.
type Device struct {
	mutex     sync.Mutex
	responder Responder
	pending   [][]byte
	requests  []string
	closed    bool

	// ChunkSize limits the bytes returned by a single Read; 0 means no limit.
	ChunkSize int

	ReadErr    error
	WriteErr   error
	BaudErr    error
	TimeoutErr error

	baudRate    int
	readTimeout time.Duration
}

// NewDevice creates a device answering with responder.
func NewDevice(responder Responder) *Device {
	if responder == nil {
		responder = Silent()
	}
	return &Device{responder: responder}
}

// Write records the request and queues the reply.
func (d *Device) Write(p []byte) (int, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	if d.WriteErr != nil {
		return 0, d.WriteErr
	}

	request := string(p)
	d.requests = append(d.requests, request)
	for _, burst := range d.responder(request) {
		d.pending = append(d.pending, []byte(burst))
	}
	return len(p), nil
}

// Read returns queued reply bytes, or 0 when idle.
func (d *Device) Read(p []byte) (int, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	if d.ReadErr != nil {
		return 0, d.ReadErr
	}
	if len(d.pending) == 0 {
		return 0, nil
	}

	head := d.pending[0]
	if len(head) == 0 {
		// end of a burst
		d.pending = d.pending[1:]
		return 0, nil
	}

	limit := len(p)
	if d.ChunkSize > 0 && d.ChunkSize < limit {
		limit = d.ChunkSize
	}
	n := copy(p[:limit], head)
	d.pending[0] = head[n:]
	return n, nil
}

// SetBaudRate records the baud rate.
func (d *Device) SetBaudRate(baud int) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.BaudErr != nil {
		return d.BaudErr
	}
	d.baudRate = baud
	return nil
}

// SetReadTimeout records the read timeout.
func (d *Device) SetReadTimeout(timeout time.Duration) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.TimeoutErr != nil {
		return d.TimeoutErr
	}
	d.readTimeout = timeout
	return nil
}

// Close marks the device closed.
func (d *Device) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.closed = true
	return nil
}

// Requests returns every request line written so far.
func (d *Device) Requests() []string {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return append([]string(nil), d.requests...)
}

// LastRequest returns the most recent request line, or "".
func (d *Device) LastRequest() string {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.requests) == 0 {
		return ""
	}
	return d.requests[len(d.requests)-1]
}

// BaudRate returns the configured baud rate.
func (d *Device) BaudRate() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.baudRate
}

// ReadTimeout returns the configured read timeout.
func (d *Device) ReadTimeout() time.Duration {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.readTimeout
}

// Closed reports whether Close was called.
func (d *Device) Closed() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.closed
}
