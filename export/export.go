// Package export serializes structured page modules into desktop markup with
// classes and embedded styles or into restricted mobile dialect made of
// tables and font tags only.
package export

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"pagemaker/common"
	"pagemaker/dom"
	"pagemaker/i18n"
	"pagemaker/page"
	"pagemaker/sanitize"
)

// Exporter is safe for concurrent use, it keeps no state between calls.
type Exporter struct {
	log     *zap.Logger
	catalog *i18n.Catalog
	desktop *sanitize.Sanitizer
	mobile  *sanitize.Sanitizer
}

func New(log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		log:     log.Named("exporter"),
		catalog: i18n.Default(),
		desktop: sanitize.New(sanitize.Options{Target: common.TargetAreaPc}, log),
		mobile:  sanitize.New(sanitize.Options{Target: common.TargetAreaMobile}, log),
	}
}

// Generate serializes modules. It never fails: modules with missing or
// unusable configuration are rendered as visible placeholders.
func (e *Exporter) Generate(modules []page.PageModule, opts Options) string {
	tag, ok := languageTag(opts.Language)
	if !ok {
		e.log.Warn("Bad export language, using default", zap.String("language", opts.Language), zap.Stringer("default", tag))
	}
	opts.Language = tag.String()
	if opts.Translate == nil {
		opts.Translate = e.catalog.Translator(opts.Language)
	}

	w := &writer{opts: opts, log: e.log}
	if opts.MobileMode {
		w.custom = e.mobile
	} else {
		w.custom = e.desktop
	}

	parts := make([]string, 0, len(modules))
	for _, m := range modules {
		if out := w.module(m); strings.TrimSpace(out) != "" {
			parts = append(parts, out)
		}
	}
	sep := "\n"
	if opts.Minify {
		sep = ""
	}
	body := strings.Join(parts, sep)

	withStyles := opts.IncludeStyles && !opts.MobileMode
	if !opts.FullDocument {
		if withStyles && body != "" {
			return "<style>" + sep + stylesheet(opts.Minify) + sep + "</style>" + sep + body
		}
		return body
	}
	return document(body, opts, withStyles, sep)
}

func document(body string, opts Options, withStyles bool, sep string) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString(sep)
	}
	line("<!DOCTYPE html>")
	line(`<html lang="` + dom.EscapeAttr(opts.Language) + `">`)
	line("<head>")
	line(`<meta charset="UTF-8">`)
	line(`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
	line("<title>" + dom.EscapeText(opts.Title) + "</title>")
	line(`<meta name="description" content="` + dom.EscapeAttr(opts.Description) + `">`)
	line(`<meta name="generator" content="Pagemaker">`)
	if withStyles {
		line("<style>")
		line(stylesheet(opts.Minify))
		line("</style>")
	}
	line("</head>")
	line("<body>")
	if opts.MobileMode {
		if body != "" {
			line(body)
		}
	} else {
		line(`<div class="pagemaker-content">`)
		if body != "" {
			line(body)
		}
		line("</div>")
	}
	line("</body>")
	b.WriteString("</html>")
	return b.String()
}

var defaultExporter = sync.OnceValue(func() *Exporter {
	return New(nil)
})

// GenerateHTML serializes modules with package default exporter.
func GenerateHTML(modules []page.PageModule, opts Options) string {
	return defaultExporter().Generate(modules, opts)
}
