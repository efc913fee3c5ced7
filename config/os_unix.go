//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// CleanFileName drops separators and NUL bytes. Leading dots are removed so
// generated snapshot names never become hidden files.
func CleanFileName(in string) string {
	out := strings.Map(func(r rune) rune {
		if r == 0 || r == os.PathSeparator || r == os.PathListSeparator {
			return -1
		}
		return r
	}, in)
	if out = strings.TrimLeft(strings.TrimSpace(out), "."); out == "" {
		return "_bad_file_name_"
	}
	return out
}

// EnableColorOutput reports whether stream is attached to a terminal.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
