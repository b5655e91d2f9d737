package export

import (
	"strconv"
	"strings"

	"pagemaker/css"
	"pagemaker/dom"
)

// declarations is ordered inline style builder, empty values are skipped.
type declarations []string

func (d *declarations) add(prop, val string) {
	if val = strings.TrimSpace(val); val != "" {
		*d = append(*d, prop+": "+val)
	}
}

func (d declarations) attr() string {
	if len(d) == 0 {
		return ""
	}
	return ` style="` + dom.EscapeAttr(strings.Join(d, "; ")) + `"`
}

// color normalizes user color, def when it cannot be used.
func color(raw, def string) string {
	if c, ok := css.NormalizeColor(raw); ok {
		return c
	}
	return def
}

// optionalColor normalizes user color, empty when unusable or transparent.
func optionalColor(raw string) string {
	c, _ := css.NormalizeColor(raw)
	return c
}

// cssLength turns user width or size into CSS length, bare numbers are
// pixels. Anything not looking like length is rejected.
func cssLength(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "auto" {
		return ""
	}
	if pct, ok := strings.CutSuffix(raw, "%"); ok {
		if f, err := strconv.ParseFloat(pct, 64); err == nil && f > 0 && f <= 100 {
			return strconv.FormatFloat(f, 'f', -1, 64) + "%"
		}
		return ""
	}
	if px, ok := css.ParseLength(raw); ok && px > 0 {
		return strconv.Itoa(int(px+0.5)) + "px"
	}
	return ""
}

// attrLength turns user width into legacy width attribute value.
func attrLength(raw string) string {
	l := cssLength(raw)
	return strings.TrimSuffix(l, "px")
}

// legacyCode recognizes bare 1-7 and relative values as font size codes,
// other bare numbers are pixels.
func legacyCode(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(strings.TrimPrefix(raw, "+"))
	if err != nil {
		return 0, false
	}
	if raw[0] == '+' || raw[0] == '-' {
		return css.ParseSizeCode(raw)
	}
	if n >= css.MinSizeCode && n <= css.MaxSizeCode {
		return n, true
	}
	return 0, false
}

// sizeCode maps CSS font size to legacy size code.
func sizeCode(raw string, def int) int {
	if code, ok := legacyCode(raw); ok {
		return code
	}
	if v, ok := css.ParseStyle("font-size:" + raw).Get("font-size"); ok {
		if code, ok := css.FontSizeCode(v); ok {
			return code
		}
	}
	return def
}

// fontSize returns CSS font size for user value, pixel size of legacy code
// when value is a code.
func fontSize(raw string) string {
	if code, ok := legacyCode(raw); ok {
		return strconv.Itoa(css.SizeCodePixels(code)) + "px"
	}
	if v, ok := css.ParseStyle("font-size:" + raw).Get("font-size"); ok {
		if v.Unit == "%" || v.Unit == "em" || v.Unit == "rem" {
			return v.Raw
		}
		if px, ok := v.Pixels(); ok && px > 0 {
			return strconv.FormatFloat(px, 'f', -1, 64) + "px"
		}
		if _, ok := css.FontSizeCode(v); ok {
			return v.Keyword
		}
	}
	return ""
}

// fontFamily keeps only characters which cannot break out of style value.
func fontFamily(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '<', '>', ';', '{', '}', '\\':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}
