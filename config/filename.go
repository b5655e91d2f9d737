package config

import (
	"strings"
	"unicode"
)

// maxFileNameRunes keeps names produced from page titles within limits of
// common file systems.
const maxFileNameRunes = 120

// CleanFileName removes not allowed characters from file name. Page titles
// often carry control characters and ideographic spaces pasted from
// marketplace back office, those are normalized as well.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		switch {
		case forbiddenInFileName(sym), unicode.IsControl(sym):
			return -1
		case unicode.IsSpace(sym):
			return ' '
		}
		return sym
	}, in)
	out = strings.TrimLeft(strings.TrimSpace(out), ".")
	if r := []rune(out); len(r) > maxFileNameRunes {
		out = strings.TrimSpace(string(r[:maxFileNameRunes]))
	}
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}
