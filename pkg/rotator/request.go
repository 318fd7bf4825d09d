// pkg/rotator/request.go
package rotator

import "strings"

// BuildRequest composes a newline-terminated request line. Arguments are
// written as-is and must not contain whitespace.
func BuildRequest(cmd Command, args ...string) string {
	var b strings.Builder
	b.WriteString(cmd.String())
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	b.WriteByte('\n')
	return b.String()
}
