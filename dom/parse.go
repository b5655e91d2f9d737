// Package dom wraps golang.org/x/net/html with what page processing needs: a
// tolerant fragment parser that always works in <body> context and a
// serializer producing HTML5 markup accepted by marketplace validators
// (void elements without trailing slash, no implied table sections).
package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses markup as content of a <body> element. Returned node is a
// detached <body> holding parsed fragment nodes as its children. Unbalanced
// tags are auto-closed by the HTML5 tree construction rules, so the only
// possible error comes from the underlying reader.
func Parse(markup string) (*html.Node, error) {
	root := NewElement("body")
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to parse html fragment: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// NewElement creates detached element node.
func NewElement(name string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
		Attr:     attrs,
	}
}

// NewText creates detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
