// pkg/rotator/errors.go
package rotator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResponse indicates a malformed response: too few lines, an
	// echo mismatch, an unknown status, non-UTF-8 bytes or a wrong number of
	// values. The link is probably out of sync.
	ErrInvalidResponse = errors.New("the response from the rotator was invalid")

	// ErrExpectedValue indicates an OK status without a required value.
	ErrExpectedValue = errors.New("expected a value from the rotator but none received")
)

// ResponseError is returned when the rotator answers with ERR.
type ResponseError struct {
	Message string
}

// Error implements error.
func (e *ResponseError) Error() string {
	return "the rotator returned an error: " + e.Message
}

// ParseError is returned when a value token is not valid for the requested type.
type ParseError struct {
	Value string
	Type  string
	Err   error
}

// Error implements error.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse value %q as %s: %v", e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("failed to parse value %q as %s", e.Value, e.Type)
}

// Unwrap returns the underlying parser error, if any.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func invalidResponse(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidResponse, fmt.Sprintf(format, args...))
}
