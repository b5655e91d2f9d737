package css

import (
	"strconv"
	"strings"
)

// Legacy <font size> codes run from 1 to 7, 3 being browser default. Editor
// preview and desktop export render codes with these pixel sizes, mobile
// export emits codes directly, so relative order is the same everywhere.
const (
	MinSizeCode     = 1
	MaxSizeCode     = 7
	DefaultSizeCode = 3
)

var sizeCodePixels = [MaxSizeCode + 1]int{0, 12, 16, 20, 28, 36, 48, 64}

// SizeCodePixels returns pixel size for legacy size code, out of range codes
// are clamped.
func SizeCodePixels(code int) int {
	return sizeCodePixels[ClampSizeCode(code)]
}

// ClampSizeCode forces code into 1..7 range.
func ClampSizeCode(code int) int {
	return max(MinSizeCode, min(MaxSizeCode, code))
}

// PixelsToSizeCode maps CSS pixel font size to legacy size code.
func PixelsToSizeCode(px float64) int {
	switch {
	case px <= 10:
		return 1
	case px <= 12:
		return 2
	case px <= 14:
		return 3
	case px <= 18:
		return 4
	case px <= 24:
		return 5
	case px <= 36:
		return 6
	}
	return 7
}

// HeadingSizeCode maps heading level (h1 biggest) to legacy size code.
func HeadingSizeCode(level int) int {
	return ClampSizeCode(7 - level)
}

var keywordSizeCodes = map[string]int{
	"xx-small": 1, "x-small": 1, "small": 2, "medium": 3,
	"large": 4, "x-large": 5, "xx-large": 6, "xxx-large": 7,
}

// FontSizeCode interprets font-size value as legacy size code.
func FontSizeCode(v Value) (int, bool) {
	if code, ok := keywordSizeCodes[v.Keyword]; ok {
		return code, true
	}
	if v.Unit == "%" {
		return PixelsToSizeCode(16 * v.Value / 100), true
	}
	if px, ok := v.Pixels(); ok && px > 0 {
		return PixelsToSizeCode(px), true
	}
	return 0, false
}

// ParseSizeCode reads size code as stored in module configuration or <font
// size> attribute, relative values ("+1", "-2") are applied to default code.
func ParseSizeCode(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, false
	}
	if s[0] == '+' || s[0] == '-' {
		n += DefaultSizeCode
	}
	return ClampSizeCode(n), true
}
