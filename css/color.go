package css

import (
	"fmt"
	"strconv"
	"strings"
)

var namedColors = map[string]string{
	"black": "#000000", "white": "#ffffff", "red": "#ff0000", "green": "#008000",
	"blue": "#0000ff", "yellow": "#ffff00", "gray": "#808080", "grey": "#808080",
	"orange": "#ffa500", "purple": "#800080", "silver": "#c0c0c0", "maroon": "#800000",
	"navy": "#000080", "teal": "#008080", "olive": "#808000", "lime": "#00ff00",
	"aqua": "#00ffff", "fuchsia": "#ff00ff", "pink": "#ffc0cb", "brown": "#a52a2a",
}

// NormalizeColor converts CSS color to #rrggbb form legacy color attributes
// understand. Transparent, current and unknown colors are rejected.
func NormalizeColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return "", false
		}
		switch len(hex) {
		case 3, 4:
			return "#" + string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}), true
		case 6, 8:
			return "#" + hex[:6], true
		}
		return "", false
	}
	if args, ok := strings.CutPrefix(s, "rgb("); ok {
		return rgbToHex(strings.TrimSuffix(args, ")"))
	}
	if args, ok := strings.CutPrefix(s, "rgba("); ok {
		return rgbToHex(strings.TrimSuffix(args, ")"))
	}
	return "", false
}

func rgbToHex(args string) (string, bool) {
	parts := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) < 3 {
		return "", false
	}
	var rgb [3]int
	for i := range 3 {
		p := parts[i]
		if pct, ok := strings.CutSuffix(p, "%"); ok {
			f, err := strconv.ParseFloat(pct, 64)
			if err != nil {
				return "", false
			}
			rgb[i] = int(f*255/100 + 0.5)
		} else {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return "", false
			}
			rgb[i] = int(f + 0.5)
		}
		rgb[i] = max(0, min(255, rgb[i]))
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), true
}
