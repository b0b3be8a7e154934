package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fdWriter is implemented by *os.File
type fdWriter interface {
	Fd() uintptr
}

// IsTerminal reports whether w is an interactive terminal. Pipes, files,
// buffers and TERM=dumb all count as non-interactive.
func IsTerminal(w io.Writer) bool {
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the column count of the terminal behind w, or 0 when
// w is not a terminal or its size is unknown.
func TerminalWidth(w io.Writer) int {
	if !IsTerminal(w) {
		return 0
	}
	width, _, err := term.GetSize(int(w.(fdWriter).Fd()))
	if err != nil || width <= 0 {
		return 0
	}
	return width
}
