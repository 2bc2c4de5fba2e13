package pharmbot

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitize makes server text safe to print to a terminal. Escape sequences
// are stripped, CRLF becomes LF and every other control character except
// tab and newline is dropped.
func sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || (r > 0x1F && r != 0x7F) {
			return r
		}
		return -1
	}, s)
}
