package display

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth is the console width assumed when a client never negotiates
// its own.
const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth.
func Wrap(text string) string {
	return WrapTo(text, DefaultWidth)
}

// WrapTo word-wraps text to the given width, preserving ANSI escape
// sequences. Widths below 20 are bumped up to keep tabular output readable.
func WrapTo(text string, width int) string {
	if width < 20 {
		width = 20
	}
	return wordwrap.String(text, width)
}

// CRLF rewrites bare newlines as \r\n for telnet-style terminals.
func CRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
