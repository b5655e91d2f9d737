//go:build windows

package config

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// reservedInFileName are characters NTFS and FAT do not accept in names.
const reservedInFileName = `<>":/\|?*`

func forbiddenInFileName(sym rune) bool {
	return sym == 0 || sym == os.PathListSeparator || strings.ContainsRune(reservedInFileName, sym)
}

// EnableColorOutput turns on VT100 sequence processing for console stream.
// Consoles without virtual terminal support refuse the mode.
func EnableColorOutput(stream *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok || !term.IsTerminal(int(stream.Fd())) {
		return false
	}
	h := windows.Handle(stream.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
