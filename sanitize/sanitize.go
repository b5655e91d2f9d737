// Package sanitize cleans pasted or imported markup so it is accepted by the
// marketplace storefront. Output contains only allowed elements and
// attributes for selected area, no scripts, styles or event handlers, and is
// stable: sanitizing already sanitized markup returns it unchanged.
package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"pagemaker/common"
	"pagemaker/css"
	"pagemaker/dom"
)

// Options controls sanitizer behavior.
type Options struct {
	// Target selects allow list, mobile area rejects headings and lists.
	Target common.TargetArea
	// MinSpacerHeight in pixels, fixed height empty blocks at least this tall
	// are kept as explicit empty lines.
	MinSpacerHeight int
	// MaxPasses limits normalization rounds.
	MaxPasses int
}

// DefaultOptions returns options matching default configuration.
func DefaultOptions() Options {
	return Options{
		Target:          common.TargetAreaPc,
		MinSpacerHeight: 8,
		MaxPasses:       4,
	}
}

// Sanitizer is safe for concurrent use.
type Sanitizer struct {
	opts    Options
	allowed map[string][]string
	policy  *bluemonday.Policy
	styles  *css.Parser
	log     *zap.Logger
}

// New creates sanitizer for options, zero values are replaced by defaults.
func New(opts Options, log *zap.Logger) *Sanitizer {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultOptions()
	if !opts.Target.IsValid() {
		opts.Target = def.Target
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = def.MaxPasses
	}
	if opts.MinSpacerHeight < 0 {
		opts.MinSpacerHeight = def.MinSpacerHeight
	}
	allowed := allowList(opts.Target)
	return &Sanitizer{
		opts:    opts,
		allowed: allowed,
		policy:  newPolicy(allowed),
		styles:  css.NewParser(log),
		log:     log.Named("sanitizer"),
	}
}

// Target returns marketplace area sanitizer prepares markup for.
func (s *Sanitizer) Target() common.TargetArea {
	return s.opts.Target
}

// Sanitize returns cleaned markup. It never fails, content which could not be
// interpreted is dropped.
func (s *Sanitizer) Sanitize(markup string) string {
	current := markup
	for pass := 1; pass <= s.opts.MaxPasses; pass++ {
		next := s.pass(current)
		if next == current {
			s.log.Debug("Sanitized", zap.Int("passes", pass), zap.Int("in", len(markup)), zap.Int("out", len(next)))
			return next
		}
		current = next
	}
	s.log.Debug("Sanitizer did not converge", zap.Int("passes", s.opts.MaxPasses), zap.Int("in", len(markup)))
	return current
}

// pass performs single normalization round.
func (s *Sanitizer) pass(markup string) string {
	root, err := dom.Parse(markup)
	if err != nil {
		s.log.Warn("Unable to parse markup, dropping it", zap.Error(err))
		return ""
	}
	z := &normalizer{
		target:    s.opts.Target,
		allowed:   s.allowed,
		minSpacer: s.opts.MinSpacerHeight,
		styles:    s.styles,
	}
	z.walk(root)

	cleaned := s.policy.Sanitize(dom.RenderChildren(root))

	if root, err = dom.Parse(cleaned); err != nil {
		s.log.Warn("Unable to parse cleaned markup, dropping it", zap.Error(err))
		return ""
	}
	dom.PromoteTableSections(root)
	tidy(root)
	return dom.RenderChildren(root)
}

var defaultSanitizer = sync.OnceValue(func() *Sanitizer {
	return New(DefaultOptions(), nil)
})

// Sanitize cleans markup for desktop area with default options.
func Sanitize(markup string) string {
	return defaultSanitizer().Sanitize(markup)
}
