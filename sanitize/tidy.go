package sanitize

import (
	"regexp"

	"golang.org/x/net/html"

	"pagemaker/dom"
)

var reSpaces = regexp.MustCompile(`[ \t\n\r\f]+`)

// collapsibleBlocks are removed when they hold nothing visible.
var collapsibleBlocks = map[string]bool{
	"p": true, "div": true, "center": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true,
}

// collapsibleInline are unwrapped when they hold nothing visible, their
// whitespace may still separate words.
var collapsibleInline = map[string]bool{
	"b": true, "strong": true, "i": true, "u": true, "font": true, "a": true,
}

// tidy normalizes whitespace and drops redundant empty elements. Children are
// processed before their parent so decisions see final subtree state.
func tidy(parent *html.Node) {
	for _, c := range dom.Children(parent) {
		switch c.Type {
		case html.TextNode:
			c.Data = reSpaces.ReplaceAllString(c.Data, " ")
		case html.CommentNode:
			dom.Remove(c)
		case html.ElementNode:
			tidy(c)
		}
	}

	for _, c := range dom.Children(parent) {
		switch c.Type {
		case html.TextNode:
			if c.Data == "" || (dom.IsBlank(c.Data) && insignificantSpace(c)) {
				dom.Remove(c)
			}
		case html.ElementNode:
			switch {
			case collapsibleBlocks[c.Data] && dom.IsEmpty(c):
				dom.Remove(c)
			case collapsibleInline[c.Data] && dom.IsEmpty(c):
				dom.Unwrap(c)
			}
		}
	}
}

// insignificantSpace reports whether whitespace only text does not affect
// rendering: inside table structure or on a block boundary.
func insignificantSpace(t *html.Node) bool {
	p := t.Parent
	switch p.Data {
	case "table", "tr", "ul", "ol":
		return true
	}
	if p.Data != "body" && !dom.IsBlock(p.Data) && p.Data != "td" && p.Data != "th" {
		return false
	}
	return boundary(t.PrevSibling) || boundary(t.NextSibling)
}

func boundary(n *html.Node) bool {
	return n == nil || (n.Type == html.ElementNode && (dom.IsBlock(n.Data) || n.Data == "br"))
}
