// pkg/rotator/transport.go
package rotator

import "time"

// Transport is the duplex byte channel a Client talks through. It is owned
// exclusively by one Client and is never used concurrently.
type Transport interface {
	// Write writes the whole buffer; a short write must return an error.
	Write(p []byte) (int, error)

	// Read returns 0 bytes and a nil error when nothing arrived within the
	// configured read timeout. io.EOF is treated the same way.
	Read(p []byte) (int, error)

	SetBaudRate(baud int) error
	SetReadTimeout(timeout time.Duration) error
}
