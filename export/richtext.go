package export

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"pagemaker/css"
	"pagemaker/dom"
	"pagemaker/sanitize"
)

// inlineTags maps formatting tag of rich text to tag emitted in desktop and
// mobile dialects, other tags are written out as literal escaped text. Empty
// name turns paragraph into line break since mobile text is already wrapped
// into paragraph.
var inlineTags = map[string][2]string{
	"b":      {"b", "b"},
	"strong": {"strong", "b"},
	"i":      {"i", "i"},
	"em":     {"em", "i"},
	"u":      {"u", "u"},
	"a":      {"a", "a"},
	"br":     {"br", "br"},
	"font":   {"font", "font"},
	"p":      {"p", ""},
	"div":    {"p", ""},
}

// richText re-emits user rich text keeping only known formatting markup.
// Newlines become line breaks, unclosed tags are closed at the end.
func richText(content string, mobile bool) string {
	dialect := 0
	if mobile {
		dialect = 1
	}

	var (
		b    strings.Builder
		open []string
	)
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			for i := len(open) - 1; i >= 0; i-- {
				b.WriteString("</" + open[i] + ">")
			}
			return b.String()
		case html.TextToken:
			b.WriteString(strings.ReplaceAll(dom.EscapeText(string(z.Text())), "\n", "<br>"))
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			names, ok := inlineTags[tok.Data]
			if !ok {
				b.WriteString(dom.EscapeText(raw))
				continue
			}
			name := names[dialect]
			if name == "" {
				continue
			}
			b.WriteString("<" + name + inlineAttrs(tok, name) + ">")
			if name != "br" && tt != html.SelfClosingTagToken {
				open = append(open, name)
			}
		case html.EndTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			names, ok := inlineTags[tok.Data]
			if !ok {
				b.WriteString(dom.EscapeText(raw))
				continue
			}
			name := names[dialect]
			if name == "br" || name == "" {
				b.WriteString("<br>")
				continue
			}
			at := -1
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == name {
					at = i
					break
				}
			}
			if at < 0 {
				continue
			}
			for i := len(open) - 1; i >= at; i-- {
				b.WriteString("</" + open[i] + ">")
			}
			open = open[:at]
		}
	}
}

// inlineAttrs returns validated attributes for emitted tag.
func inlineAttrs(tok html.Token, name string) string {
	var b strings.Builder
	write := func(key, val string) {
		b.WriteString(" " + key + `="` + dom.EscapeAttr(val) + `"`)
	}
	for _, a := range tok.Attr {
		switch {
		case name == "a" && a.Key == "href":
			if sanitize.SafeURL(a.Val) {
				write("href", strings.TrimSpace(a.Val))
			}
		case name == "a" && a.Key == "target":
			switch a.Val {
			case "_blank", "_top", "_self", "_parent":
				write("target", a.Val)
			}
		case name == "font" && a.Key == "color":
			if c := optionalColor(a.Val); c != "" {
				write("color", c)
			}
		case name == "font" && a.Key == "size":
			if code, ok := css.ParseSizeCode(a.Val); ok {
				write("size", strconv.Itoa(code))
			}
		case name == "p" && a.Key == "align":
			switch al := strings.ToLower(a.Val); al {
			case "left", "center", "right":
				write("align", al)
			}
		}
	}
	return b.String()
}
