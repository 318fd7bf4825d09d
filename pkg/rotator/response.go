// pkg/rotator/response.go
package rotator

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	scratchSize = 2048

	// maxPartialIdles bounds how many extra idle periods FramingTerminated
	// waits for the rest of an incomplete response.
	maxPartialIdles = 3

	statusOK    = "OK"
	statusError = "ERR"
)

// Framing decides when a response is considered complete.
type Framing int

const (
	// FramingIdle ends a response at the first read that returns no data.
	FramingIdle Framing = iota

	// FramingTerminated ends a response at an idle read only once the echo
	// and status lines are complete, waiting up to maxPartialIdles extra
	// read timeouts otherwise.
	FramingTerminated
)

// String returns the configuration name of the framing policy
func (f Framing) String() string {
	switch f {
	case FramingIdle:
		return "idle"
	case FramingTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("Framing(%d)", int(f))
	}
}

// ParseFraming parses "idle" or "terminated"
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "idle":
		return FramingIdle, nil
	case "terminated":
		return FramingTerminated, nil
	default:
		return FramingIdle, fmt.Errorf("unknown framing %q", s)
	}
}

// Status is the outcome of a successful transaction.
type Status struct {
	Values []string
}

// readResponse drains the transport until it goes idle.
func readResponse(t Transport, framing Framing) (string, error) {
	var (
		scratch [scratchSize]byte
		text    strings.Builder
		waited  int
	)

	for {
		n, err := t.Read(scratch[:])
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read response: %w", err)
		}

		if n > 0 {
			chunk := scratch[:n]
			if !utf8.Valid(chunk) {
				return "", invalidResponse("received %d bytes that are not valid UTF-8", n)
			}
			text.Write(chunk)
			continue
		}

		if framing == FramingTerminated && !responseComplete(text.String()) && waited < maxPartialIdles {
			waited++
			continue
		}

		return text.String(), nil
	}
}

// responseComplete reports whether buffered text can be handed to the
// validator without waiting for more data.
func responseComplete(s string) bool {
	return s == "" || strings.Count(s, "\n") >= 2
}

// splitLines splits on newline terminators. A trailing newline does not
// produce an empty final line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// validate checks the echo line and parses the status line.
func validate(response, request string) (Status, error) {
	lines := splitLines(response)
	if len(lines) < 2 {
		return Status{}, invalidResponse("expected echo and status lines, got %d line(s)", len(lines))
	}

	if echo := strings.TrimSpace(request); lines[0] != echo {
		return Status{}, invalidResponse("echo %q does not match request %q", lines[0], echo)
	}

	status, payload, hasPayload := cutASCIISpace(lines[1])
	switch status {
	case statusOK:
		return Status{Values: strings.FieldsFunc(payload, isASCIISpace)}, nil
	case statusError:
		if !hasPayload || payload == "" {
			return Status{}, invalidResponse("ERR status without a message")
		}
		return Status{}, &ResponseError{Message: payload}
	default:
		return Status{}, invalidResponse("unknown status %q", status)
	}
}

// cutASCIISpace splits s around the first ASCII whitespace character.
func cutASCIISpace(s string) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if isASCIISpace(rune(s[i])) {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}
