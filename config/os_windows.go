//go:build windows

package config

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

const reservedNameChars = `<>":/\|?*`

// CleanFileName drops characters Windows does not accept in file names and
// trailing dots and spaces.
func CleanFileName(in string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r < 32, strings.ContainsRune(reservedNameChars, r), r == os.PathListSeparator:
			return -1
		}
		return r
	}, in)
	if out = strings.TrimRight(strings.TrimSpace(out), ". "); out == "" {
		return "_bad_file_name_"
	}
	return out
}

// EnableColorOutput turns on VT sequence processing for console streams.
// Consoles that refuse the mode get plain output.
func EnableColorOutput(stream *os.File) bool {
	fd := stream.Fd()
	if !term.IsTerminal(int(fd)) {
		return false
	}
	var mode uint32
	h := windows.Handle(fd)
	if windows.GetConsoleMode(h, &mode) != nil {
		return false
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return true
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
