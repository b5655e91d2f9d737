package sanitize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"pagemaker/common"
)

// baseAttributes lists elements accepted by the marketplace in every area and
// attributes allowed on them.
var baseAttributes = map[string][]string{
	"table":  {"align", "bgcolor", "border", "bordercolor", "cellpadding", "cellspacing", "frame", "height", "rules", "width"},
	"tr":     {"align", "bgcolor", "bordercolor", "height", "valign"},
	"td":     {"align", "bgcolor", "bordercolor", "height", "valign", "width", "colspan", "rowspan", "axis", "headers"},
	"th":     {"align", "bgcolor", "bordercolor", "height", "valign", "width", "colspan", "rowspan", "axis", "headers"},
	"p":      {"align"},
	"br":     nil,
	"font":   {"color", "size"},
	"b":      nil,
	"strong": nil,
	"i":      nil,
	"u":      nil,
	"center": nil,
	"a":      {"href", "target"},
	"img":    {"src", "alt", "width", "height", "border"},
	"hr":     nil,
}

// pcAttributes are accepted on desktop pages only.
var pcAttributes = map[string][]string{
	"h1": {"align"}, "h2": {"align"}, "h3": {"align"},
	"h4": {"align"}, "h5": {"align"}, "h6": {"align"},
	"ul": nil, "ol": nil, "li": nil, "blockquote": nil,
}

// droppedWithContent elements never carry content worth keeping.
var droppedWithContent = map[string]bool{
	"script": true, "style": true, "iframe": true, "col": true, "colgroup": true,
	"noscript": true, "template": true, "object": true, "embed": true,
	"applet": true, "title": true, "head": true, "meta": true, "link": true,
	"base": true, "select": true, "textarea": true, "button": true,
	"input": true, "svg": true, "math": true, "canvas": true, "video": true,
	"audio": true, "frameset": true, "frame": true, "noframes": true,
}

var (
	reAlign   = regexp.MustCompile(`(?i)^(left|center|right|justify)$`)
	reVAlign  = regexp.MustCompile(`(?i)^(top|middle|bottom|baseline)$`)
	reColor   = regexp.MustCompile(`(?i)^(#[0-9a-f]{3,8}|[a-z]+|rgba?\([0-9.,%\s/]+\))$`)
	reLength  = regexp.MustCompile(`^\d+(\.\d+)?(%|px)?$`)
	reInteger = regexp.MustCompile(`^\d+$`)
	reSize    = regexp.MustCompile(`^[+-]?[1-7]$`)
	reTarget  = regexp.MustCompile(`^(_blank|_self|_top|_parent)$`)
	reToken   = regexp.MustCompile(`^[\w\s-]*$`)
)

var attrPatterns = map[string]*regexp.Regexp{
	"align":       reAlign,
	"valign":      reVAlign,
	"bgcolor":     reColor,
	"bordercolor": reColor,
	"color":       reColor,
	"width":       reLength,
	"height":      reLength,
	"border":      reInteger,
	"cellpadding": reInteger,
	"cellspacing": reInteger,
	"colspan":     reInteger,
	"rowspan":     reInteger,
	"size":        reSize,
	"target":      reTarget,
	"frame":       reToken,
	"rules":       reToken,
	"axis":        reToken,
	"headers":     reToken,
}

var urlSchemes = []string{"http", "https", "mailto", "tel"}

// allowList returns element to attribute mapping for the target area.
func allowList(target common.TargetArea) map[string][]string {
	out := make(map[string][]string, len(baseAttributes)+len(pcAttributes))
	for k, v := range baseAttributes {
		out[k] = v
	}
	if !target.IsMobile() {
		for k, v := range pcAttributes {
			out[k] = v
		}
	}
	return out
}

// newPolicy builds bluemonday policy enforcing allow list. Styles, classes,
// ids, data-*, aria-* and event handlers are never allowed.
func newPolicy(allowed map[string][]string) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowURLSchemes(urlSchemes...)
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	p.SkipElementsContent("script", "style", "iframe", "noscript", "template", "object", "title", "textarea", "select")

	for el, attrs := range allowed {
		p.AllowElements(el)
		for _, attr := range attrs {
			if re, ok := attrPatterns[attr]; ok {
				p.AllowAttrs(attr).Matching(re).OnElements(el)
			} else {
				p.AllowAttrs(attr).OnElements(el)
			}
		}
	}
	return p
}

// SafeURL reports whether link or image address uses allowed scheme or is
// relative. Policy applies the same rule to href and src.
func SafeURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n\r") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		return true
	}
	for _, s := range urlSchemes {
		if strings.EqualFold(u.Scheme, s) {
			return true
		}
	}
	return false
}

// attrAllowed checks attribute against allow list and value pattern.
func attrAllowed(allowed map[string][]string, el, attr, val string) bool {
	attrs, ok := allowed[el]
	if !ok {
		return false
	}
	for _, a := range attrs {
		if a != attr {
			continue
		}
		switch attr {
		case "href", "src":
			return SafeURL(val)
		}
		if re, ok := attrPatterns[attr]; ok {
			return re.MatchString(val)
		}
		return true
	}
	return false
}
