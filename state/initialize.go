package state

import (
	"time"

	"pagemaker/config"
	"pagemaker/export"
	"pagemaker/sanitize"
	"pagemaker/split"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// SanitizeOptions maps sanitizer configuration, defaults are used when
// configuration is not loaded yet.
func (e *LocalEnv) SanitizeOptions() sanitize.Options {
	if e.Cfg == nil {
		return sanitize.DefaultOptions()
	}
	return sanitizeOptions(&e.Cfg.Sanitizer)
}

func sanitizeOptions(c *config.SanitizerConfig) sanitize.Options {
	return sanitize.Options{
		Target:          c.Target,
		MinSpacerHeight: c.MinSpacerHeight,
		MaxPasses:       c.MaxPasses,
	}
}

// SplitOptions maps splitter configuration.
func (e *LocalEnv) SplitOptions() split.Options {
	if e.Cfg == nil {
		return split.DefaultOptions()
	}
	return split.Options{
		Sanitize:              sanitizeOptions(&e.Cfg.Sanitizer),
		MergeConsecutiveBr:    e.Cfg.Splitter.MergeConsecutiveBr,
		TableAtomic:           e.Cfg.Splitter.TableAtomic,
		WhitespaceGapNewlines: e.Cfg.Splitter.WhitespaceGapNewlines,
	}
}

// ExportOptions maps export configuration.
func (e *LocalEnv) ExportOptions() export.Options {
	if e.Cfg == nil {
		return export.DefaultOptions()
	}
	c := &e.Cfg.Export
	return export.Options{
		IncludeStyles: c.IncludeStyles,
		Minify:        c.Minify,
		Title:         c.Title,
		Description:   c.Description,
		Language:      c.Language,
		FullDocument:  c.FullDocument,
		MobileMode:    c.MobileMode,
	}
}
