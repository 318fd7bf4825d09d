// internal/model/connection.go
package model

// ConnectionType represents how the rotator is reached
type ConnectionType string

const (
	ConnectionTypeSerial    ConnectionType = "serial"
	ConnectionTypeTCP       ConnectionType = "tcp"
	ConnectionTypeWebSocket ConnectionType = "websocket"
)

// ConnectionTypes lists every supported connection type
var ConnectionTypes = []ConnectionType{
	ConnectionTypeSerial,
	ConnectionTypeTCP,
	ConnectionTypeWebSocket,
}

// IsValid checks whether the connection type is supported
func (ct ConnectionType) IsValid() bool {
	for _, t := range ConnectionTypes {
		if ct == t {
			return true
		}
	}
	return false
}
