package sanitize

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"pagemaker/common"
	"pagemaker/css"
	"pagemaker/dom"
)

// containers are generic block wrappers. Holding only inline content they
// become paragraphs, otherwise their wrapper is dropped.
var containers = map[string]bool{
	"div": true, "section": true, "article": true, "header": true,
	"footer": true, "main": true, "nav": true, "aside": true,
	"address": true, "figure": true, "figcaption": true, "dl": true,
	"dt": true, "dd": true, "pre": true, "form": true, "fieldset": true,
	"details": true, "summary": true, "caption": true, "legend": true,
}

var spacerCandidates = map[string]bool{
	"div": true, "p": true, "span": true, "section": true,
}

// normalizer rewrites parsed tree before allow list is enforced: it removes
// dangerous subtrees, maps elements and inline styles to accepted legacy
// equivalents and turns fixed height empty blocks into canonical gaps.
type normalizer struct {
	target    common.TargetArea
	allowed   map[string][]string
	minSpacer int
	styles    *css.Parser
}

func (z *normalizer) walk(parent *html.Node) {
	for _, c := range dom.Children(parent) {
		switch c.Type {
		case html.CommentNode, html.DoctypeNode:
			dom.Remove(c)
		case html.ElementNode:
			z.element(c)
		}
	}
}

func (z *normalizer) element(n *html.Node) {
	if droppedWithContent[n.Data] {
		dom.Remove(n)
		return
	}
	if z.isSpacer(n) {
		replaceWith(n, newGap())
		return
	}

	z.walk(n)
	z.applyStyle(n)

	switch {
	case n.Data == "em":
		dom.Rename(n, "i")
	case n.Data == "img":
		if !SafeURL(dom.Attr(n, "src")) {
			dom.Remove(n)
			return
		}
	case n.Data == "a":
		if !SafeURL(dom.Attr(n, "href")) {
			dom.Unwrap(n)
			return
		}
	case n.Data == "font":
		if !z.hasAllowedAttrs(n) {
			dom.Unwrap(n)
			return
		}
	case dom.IsHeading(n) && z.target.IsMobile():
		replaceWith(n, headingToFont(n))
		return
	case n.Data == "li" && z.target.IsMobile(), containers[n.Data]:
		if hasBlockChild(n) {
			dom.Unwrap(n)
			return
		}
		align := dom.Attr(n, "align")
		dom.Rename(n, "p")
		n.Attr = nil
		if reAlign.MatchString(align) {
			dom.SetAttr(n, "align", strings.ToLower(align))
		}
	}

	if _, ok := z.allowed[n.Data]; !ok {
		dom.Unwrap(n)
	}
}

func (z *normalizer) hasAllowedAttrs(n *html.Node) bool {
	for _, a := range n.Attr {
		if attrAllowed(z.allowed, n.Data, a.Key, a.Val) {
			return true
		}
	}
	return false
}

// isSpacer detects empty blocks used only to push content down.
func (z *normalizer) isSpacer(n *html.Node) bool {
	if !spacerCandidates[n.Data] || !blankForSpacer(n) {
		return false
	}
	height, ok := css.ParseLength(dom.Attr(n, "height"))
	if !ok {
		style := z.styles.ParseStyle(dom.Attr(n, "style"))
		for _, prop := range []string{"height", "min-height"} {
			if v, found := style.Get(prop); found {
				if height, ok = v.Pixels(); ok {
					break
				}
			}
		}
	}
	return ok && height > 0 && height >= float64(z.minSpacer)
}

func blankForSpacer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimLeft(c.Data, " \t\n\r\f\u00a0") != "" {
				return false
			}
		case html.ElementNode:
			if c.Data == "img" || c.Data == "table" || c.Data == "hr" || !blankForSpacer(c) {
				return false
			}
		}
	}
	return true
}

// applyStyle moves what inline style expresses into legacy attributes and
// formatting wrappers, style attribute itself never survives.
func (z *normalizer) applyStyle(n *html.Node) {
	raw, ok := dom.LookupAttr(n, "style")
	if !ok {
		return
	}
	dom.RemoveAttr(n, "style")
	style := z.styles.ParseStyle(raw)
	if len(style) == 0 {
		return
	}

	setIfAbsent := func(key, val string) {
		if _, exists := dom.LookupAttr(n, key); !exists && val != "" {
			dom.SetAttr(n, key, val)
		}
	}

	if v, ok := style.Get("text-align"); ok && reAlign.MatchString(v.Keyword) {
		switch {
		case n.Data == "p", n.Data == "td", n.Data == "th", n.Data == "tr", dom.IsHeading(n), containers[n.Data]:
			setIfAbsent("align", v.Keyword)
		}
	}

	switch n.Data {
	case "table", "tr", "td", "th":
		for _, prop := range []string{"background-color", "background"} {
			if v, ok := style.Get(prop); ok {
				if c, ok := css.NormalizeColor(v.Raw); ok {
					setIfAbsent("bgcolor", c)
					break
				}
			}
		}
		if v, ok := style.Get("vertical-align"); ok && reVAlign.MatchString(v.Keyword) {
			setIfAbsent("valign", v.Keyword)
		}
		setIfAbsent("width", lengthAttr(style, "width"))
		setIfAbsent("height", lengthAttr(style, "height"))
		return
	case "img":
		setIfAbsent("width", lengthAttr(style, "width"))
		setIfAbsent("height", lengthAttr(style, "height"))
		return
	case "font":
		if v, ok := style.Get("color"); ok {
			if c, ok := css.NormalizeColor(v.Raw); ok {
				setIfAbsent("color", c)
			}
		}
		if v, ok := style.Get("font-size"); ok {
			if code, ok := css.FontSizeCode(v); ok {
				setIfAbsent("size", strconv.Itoa(code))
			}
		}
		wrapFormatting(n, style, false)
		return
	}
	wrapFormatting(n, style, true)
}

// wrapFormatting wraps node children into font/b/i/u reflecting style.
func wrapFormatting(n *html.Node, style css.Style, withFont bool) {
	if dom.IsEmpty(n) {
		return
	}
	var wrappers []*html.Node
	if withFont {
		font := dom.NewElement("font")
		if v, ok := style.Get("color"); ok {
			if c, ok := css.NormalizeColor(v.Raw); ok {
				dom.SetAttr(font, "color", c)
			}
		}
		if v, ok := style.Get("font-size"); ok {
			if code, ok := css.FontSizeCode(v); ok {
				dom.SetAttr(font, "size", strconv.Itoa(code))
			}
		}
		if len(font.Attr) > 0 {
			wrappers = append(wrappers, font)
		}
	}
	if v, ok := style.Get("font-weight"); ok && isBold(v) {
		wrappers = append(wrappers, dom.NewElement("b"))
	}
	if v, ok := style.Get("font-style"); ok && (v.Keyword == "italic" || v.Keyword == "oblique") {
		wrappers = append(wrappers, dom.NewElement("i"))
	}
	for _, prop := range []string{"text-decoration", "text-decoration-line"} {
		if v, ok := style.Get(prop); ok && strings.Contains(strings.ToLower(v.Raw), "underline") {
			wrappers = append(wrappers, dom.NewElement("u"))
			break
		}
	}
	if len(wrappers) == 0 {
		return
	}

	inner := wrappers[len(wrappers)-1]
	dom.MoveChildren(inner, n)
	for i := len(wrappers) - 2; i >= 0; i-- {
		wrappers[i].AppendChild(wrappers[i+1])
	}
	n.AppendChild(wrappers[0])
}

func isBold(v css.Value) bool {
	switch v.Keyword {
	case "bold", "bolder":
		return true
	}
	return v.IsNumeric() && v.Unit == "" && v.Value >= 600
}

func lengthAttr(style css.Style, prop string) string {
	v, ok := style.Get(prop)
	if !ok {
		return ""
	}
	if v.Unit == "%" {
		return strconv.FormatFloat(v.Value, 'f', -1, 64) + "%"
	}
	if px, ok := v.Pixels(); ok && px > 0 {
		return strconv.Itoa(int(px + 0.5))
	}
	return ""
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (dom.IsBlock(c.Data) || containers[c.Data]) {
			return true
		}
	}
	return false
}

// headingToFont converts heading into paragraph with legacy size markup.
func headingToFont(n *html.Node) *html.Node {
	level := int(n.Data[1] - '0')
	p := dom.NewElement("p")
	if align := dom.Attr(n, "align"); reAlign.MatchString(align) {
		dom.SetAttr(p, "align", strings.ToLower(align))
	}
	font := dom.NewElement("font", html.Attribute{Key: "size", Val: strconv.Itoa(css.HeadingSizeCode(level))})
	b := dom.NewElement("b")
	dom.MoveChildren(b, n)
	font.AppendChild(b)
	p.AppendChild(font)
	return p
}

// newGap returns canonical empty line markup: <p><br></p>.
func newGap() *html.Node {
	p := dom.NewElement("p")
	p.AppendChild(dom.NewElement("br"))
	return p
}

func replaceWith(old, n *html.Node) {
	if old.Parent == nil {
		return
	}
	old.Parent.InsertBefore(n, old)
	old.Parent.RemoveChild(old)
}
