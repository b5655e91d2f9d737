// Package debug has helpers producing readable dumps of internal structures.
package debug

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Node writes markup tree rooted at n, one line per element or non blank
// text node. Attributes are listed in document order.
func (tw TreeWriter) Node(depth int, n *html.Node) {
	if n == nil {
		return
	}
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			tw.Node(depth, c)
		}
		return
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			tw.TextBlock(depth, "#text", n.Data)
		}
		return
	case html.CommentNode:
		tw.TextBlock(depth, "#comment", n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	tw.indent(depth)
	tw.w.WriteByte('<')
	tw.w.WriteString(n.Data)
	for _, a := range n.Attr {
		tw.w.WriteByte(' ')
		tw.w.WriteString(a.Key)
		tw.w.WriteByte('=')
		tw.w.WriteString(strconv.Quote(a.Val))
	}
	tw.w.WriteString(">\n")
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		tw.Node(depth+1, c)
	}
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
