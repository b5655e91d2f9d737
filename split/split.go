// Package split partitions page markup into ordered independently editable
// modules classified by structure as gap, image, table or text.
package split

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagemaker/dom"
	"pagemaker/page"
	"pagemaker/sanitize"
)

var (
	// ErrUnparsable is returned when parser could not process input at all.
	ErrUnparsable = errors.New("unable to parse markup")
	// ErrNoModules is reported by callers when Split yields nothing, the
	// splitter itself returns empty slice in that case.
	ErrNoModules = errors.New("no modules found in markup")
)

// Options controls classification.
type Options struct {
	Sanitize sanitize.Options
	// MergeConsecutiveBr makes run of top level line breaks a single gap.
	MergeConsecutiveBr bool
	// TableAtomic makes every top level table its own table module, when off
	// tables are treated as text blocks.
	TableAtomic bool
	// WhitespaceGapNewlines, when positive, turns top level whitespace
	// holding at least that many line breaks into gap. Zero drops such
	// whitespace.
	WhitespaceGapNewlines int
}

// DefaultOptions returns options matching default configuration.
func DefaultOptions() Options {
	return Options{
		Sanitize:           sanitize.DefaultOptions(),
		MergeConsecutiveBr: true,
		TableAtomic:        true,
	}
}

// Splitter is safe for concurrent use.
type Splitter struct {
	opts Options
	san  *sanitize.Sanitizer
	log  *zap.Logger
}

func New(opts Options, log *zap.Logger) *Splitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Splitter{
		opts: opts,
		san:  sanitize.New(opts.Sanitize, log),
		log:  log.Named("splitter"),
	}
}

// Sanitizer returns sanitizer used for module markup.
func (s *Splitter) Sanitizer() *sanitize.Sanitizer {
	return s.san
}

// Split sanitizes markup and partitions its top level nodes into modules.
// Input without meaningful content gives empty slice, error is returned only
// when parser fails.
//
// Merge policy: every top level block element is its own text module,
// consecutive inline nodes form one text module, runs end at line breaks,
// images, tables, rules and blocks.
func (s *Splitter) Split(markup string) ([]page.HTMLModule, error) {
	if s.opts.WhitespaceGapNewlines > 0 {
		marked, err := s.markWhitespaceGaps(markup)
		if err != nil {
			return nil, err
		}
		markup = marked
	}

	root, err := dom.Parse(s.san.Sanitize(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparsable, err)
	}
	dom.PromoteTableSections(root)

	nodes := dom.Children(root)
	modules := make([]page.HTMLModule, 0, len(nodes))
	emit := func(kind page.ModuleKind, unit []*html.Node) {
		fragment := dom.RenderNodes(unit)
		clean := s.san.Sanitize(fragment)
		if strings.TrimSpace(clean) == "" {
			s.log.Debug("Dropping empty unit", zap.Stringer("kind", kind), zap.Int("nodes", len(unit)))
			return
		}
		modules = append(modules, page.HTMLModule{
			ID:          page.NewModuleID(kind),
			Kind:        kind,
			HTML:        clean,
			RawFragment: fragment,
		})
	}

	for i := 0; i < len(nodes); {
		n := nodes[i]
		switch {
		case n.Type == html.TextNode:
			if dom.IsBlankText(n) {
				i++
				continue
			}
			end := s.inlineRun(nodes, i)
			emit(page.KindText, nodes[i:end])
			i = end
		case n.Type != html.ElementNode:
			i++
		case n.Data == "br":
			end := i + 1
			if s.opts.MergeConsecutiveBr {
				for end < len(nodes) && (dom.IsElement(nodes[end], "br") || dom.IsBlankText(nodes[end])) {
					end++
				}
			}
			emit(page.KindGap, nodes[i:end])
			i = end
		case isGap(n):
			emit(page.KindGap, nodes[i:i+1])
			i++
		case isImage(n):
			emit(page.KindImage, nodes[i:i+1])
			i++
		case n.Data == "table" && s.opts.TableAtomic:
			emit(page.KindTable, nodes[i:i+1])
			i++
		case dom.IsBlock(n.Data):
			emit(page.KindText, nodes[i:i+1])
			i++
		default:
			end := s.inlineRun(nodes, i)
			emit(page.KindText, nodes[i:end])
			i = end
		}
	}

	s.log.Debug("Split", zap.Int("in", len(markup)), zap.Int("modules", len(modules)))
	return modules, nil
}

// inlineRun returns index past last node of inline run starting at i.
func (s *Splitter) inlineRun(nodes []*html.Node, i int) int {
	end := i + 1
	for ; end < len(nodes); end++ {
		n := nodes[end]
		if n.Type != html.ElementNode {
			continue
		}
		if n.Data == "br" || isImage(n) || dom.IsBlock(n.Data) {
			break
		}
	}
	return end
}

// isGap reports canonical empty line or rule.
func isGap(n *html.Node) bool {
	switch n.Data {
	case "hr":
		return true
	case "p":
		foundBr := false
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case dom.IsElement(c, "br"):
				foundBr = true
			case c.Type == html.TextNode && dom.IsBlank(c.Data):
			case c.Type == html.CommentNode:
			default:
				return false
			}
		}
		return foundBr
	}
	return false
}

// isImage reports image, linked image or paragraph holding just one of those.
func isImage(n *html.Node) bool {
	switch n.Data {
	case "img":
		return true
	case "a":
		return dom.IsElement(dom.OnlyElementChild(n), "img")
	case "p", "center":
		child := dom.OnlyElementChild(n)
		return dom.IsElement(child, "img") || (dom.IsElement(child, "a") && isImage(child))
	}
	return false
}

// markWhitespaceGaps replaces top level whitespace with enough line breaks by
// canonical gap markup, sanitizer would otherwise drop it.
func (s *Splitter) markWhitespaceGaps(markup string) (string, error) {
	root, err := dom.Parse(markup)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnparsable, err)
	}
	changed := false
	for _, c := range dom.Children(root) {
		if c.Type != html.TextNode || !dom.IsBlank(c.Data) {
			continue
		}
		if strings.Count(c.Data, "\n") < s.opts.WhitespaceGapNewlines {
			continue
		}
		gap := dom.NewElement("p")
		gap.AppendChild(dom.NewElement("br"))
		root.InsertBefore(gap, c)
		root.RemoveChild(c)
		changed = true
	}
	if !changed {
		return markup, nil
	}
	return dom.RenderChildren(root), nil
}

// Join concatenates module markup in order and sanitizes result, no
// separators are inserted.
func (s *Splitter) Join(modules []page.HTMLModule) string {
	var b strings.Builder
	for _, m := range modules {
		b.WriteString(m.HTML)
	}
	return s.san.Sanitize(b.String())
}

var defaultSplitter = sync.OnceValue(func() *Splitter {
	return New(DefaultOptions(), nil)
})

// SplitHTMLToModules splits markup with default options.
func SplitHTMLToModules(markup string) ([]page.HTMLModule, error) {
	return defaultSplitter().Split(markup)
}

// ExportModulesHTML joins modules with default options.
func ExportModulesHTML(modules []page.HTMLModule) string {
	return defaultSplitter().Join(modules)
}
