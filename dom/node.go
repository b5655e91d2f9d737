package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"center": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"ul": true,
}

// IsBlock reports whether element name is block level.
func IsBlock(name string) bool {
	return blockElements[name]
}

// IsHeading reports whether element is one of h1-h6.
func IsHeading(n *html.Node) bool {
	return IsElement(n, "h1", "h2", "h3", "h4", "h5", "h6")
}

// IsElement reports whether node is an element with one of the names. Without
// names any element matches.
func IsElement(n *html.Node, names ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		if n.Data == name {
			return true
		}
	}
	return false
}

// Attr returns attribute value, empty if absent.
func Attr(n *html.Node, key string) string {
	v, _ := LookupAttr(n, key)
	return v
}

// LookupAttr returns attribute value and whether attribute is present.
func LookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr replaces or adds attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute if present.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// Rename changes element name keeping attributes and children.
func Rename(n *html.Node, name string) {
	n.Data = name
	n.DataAtom = atom.Lookup([]byte(name))
}

// Children returns snapshot of node children, safe to use while mutating tree.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Remove detaches node from its parent.
func Remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Unwrap replaces node with its children.
func Unwrap(n *html.Node) {
	p := n.Parent
	if p == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		p.InsertBefore(c, n)
	}
	p.RemoveChild(n)
}

// Wrap inserts wrapper in place of node and moves node inside it.
func Wrap(n, wrapper *html.Node) {
	if p := n.Parent; p != nil {
		p.InsertBefore(wrapper, n)
		p.RemoveChild(n)
	}
	wrapper.AppendChild(n)
}

// MoveChildren moves all children of src to the end of dst.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// Text returns concatenated text content of the subtree.
func Text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// IsBlank reports whether string consists of ASCII whitespace only. Non
// breaking and ideographic spaces are content.
func IsBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f':
		default:
			return false
		}
	}
	return true
}

// IsBlankText reports whether node is a whitespace only text node.
func IsBlankText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode && IsBlank(n.Data)
}

// contentElements render something even without text.
var contentElements = map[string]bool{
	"br": true, "hr": true, "img": true, "table": true, "input": true,
	"iframe": true, "video": true, "audio": true, "canvas": true, "svg": true,
}

// IsEmpty reports whether subtree has neither visible text nor elements
// which render without text.
func IsEmpty(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return IsBlank(n.Data)
	case html.ElementNode:
		if contentElements[n.Data] {
			return false
		}
	case html.CommentNode:
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !IsEmpty(c) {
			return false
		}
	}
	return true
}

// OnlyElementChild returns the single element child of n ignoring blank text
// and comments, nil when there are none or more than one or any non blank
// text.
func OnlyElementChild(n *html.Node) *html.Node {
	var found *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.CommentNode:
			continue
		case html.TextNode:
			if IsBlank(c.Data) {
				continue
			}
			return nil
		case html.ElementNode:
			if found != nil {
				return nil
			}
			found = c
		}
	}
	return found
}

// PromoteTableSections lifts rows out of thead, tbody and tfoot and drops
// colgroup/col, the HTML5 parser inserts tbody on its own so this has to be
// repeated after every parse when table markup is serialized.
func PromoteTableSections(root *html.Node) {
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode {
			PromoteTableSections(c)
			switch c.Data {
			case "thead", "tbody", "tfoot":
				Unwrap(c)
			case "colgroup", "col":
				Remove(c)
			}
		}
		c = next
	}
}
