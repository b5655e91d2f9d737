//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

func forbiddenInFileName(sym rune) bool {
	return sym == 0 || sym == os.PathSeparator || sym == os.PathListSeparator
}

// EnableColorOutput reports whether stream is terminal and NO_COLOR is not
// set.
func EnableColorOutput(stream *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}
