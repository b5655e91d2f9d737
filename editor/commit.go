package editor

import (
	"strings"

	"golang.org/x/net/html"

	"pagemaker/dom"
	"pagemaker/sanitize"
)

// Commit is result of finished text edit.
type Commit struct {
	// HTML is sanitized markup for split module.
	HTML string
	// Text is plain content for structured text fields, lines separated by
	// "\n".
	Text string
}

// IsEmpty reports whether edit left no content.
func (c Commit) IsEmpty() bool {
	return c.HTML == "" && c.Text == ""
}

// NormalizeCommit turns live markup of edited region into commit. Wrapper
// divs inserted while typing become line breaks before sanitizing. Content
// without visible text commits as empty strings rather than leftover
// skeleton markup.
func NormalizeCommit(markup string, san *sanitize.Sanitizer) Commit {
	root, err := dom.Parse(markup)
	if err != nil {
		return Commit{}
	}
	text := plainText(root)
	if text == "" && !hasMedia(root) {
		return Commit{}
	}
	flattenDivs(root)
	return Commit{HTML: san.Sanitize(dom.RenderChildren(root)), Text: text}
}

// flattenDivs replaces line wrappers with their content separated from
// surrounding inline content by line breaks.
func flattenDivs(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		flattenDivs(c)
		if dom.IsElement(c, "div") {
			if inline(sibling(c, prevSibling)) {
				c.Parent.InsertBefore(dom.NewElement("br"), c)
			}
			if inline(sibling(c, nextSibling)) {
				c.AppendChild(dom.NewElement("br"))
			}
			dom.Unwrap(c)
		}
		c = next
	}
}

func prevSibling(n *html.Node) *html.Node { return n.PrevSibling }
func nextSibling(n *html.Node) *html.Node { return n.NextSibling }

// sibling walks in direction skipping blank text.
func sibling(n *html.Node, step func(*html.Node) *html.Node) *html.Node {
	for s := step(n); s != nil; s = step(s) {
		if !dom.IsBlankText(s) {
			return s
		}
	}
	return nil
}

// inline reports whether node continues line, so wrapper next to it needs
// explicit break.
func inline(n *html.Node) bool {
	if n == nil {
		return false
	}
	if n.Type == html.TextNode {
		return true
	}
	return n.Type == html.ElementNode && n.Data != "br" && n.Data != "div" && !dom.IsBlock(n.Data)
}

func hasMedia(n *html.Node) bool {
	return find(n, func(n *html.Node) bool { return dom.IsElement(n, "img", "table", "hr") }) != nil
}

// plainText converts tree into text: line breaks and block boundaries become
// newlines, runs of newlines collapse into one, non breaking spaces become
// plain spaces. Ideographic spaces are kept.
func plainText(root *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				b.WriteString(strings.ReplaceAll(c.Data, "\u00a0", " "))
			case dom.IsElement(c, "br"):
				b.WriteByte('\n')
			case c.Type == html.ElementNode && dom.IsBlock(c.Data):
				b.WriteByte('\n')
				walk(c)
				b.WriteByte('\n')
			case c.Type == html.ElementNode:
				walk(c)
			}
		}
	}
	walk(root)

	lines := strings.Split(b.String(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimRight(l, " \t\r") != "" {
			kept = append(kept, l)
		}
	}
	text := strings.Trim(strings.Join(kept, "\n"), " \t\r\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}
