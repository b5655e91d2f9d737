package export

import (
	"golang.org/x/text/language"

	"pagemaker/i18n"
)

// Options controls generated markup.
type Options struct {
	// IncludeStyles adds <style> block with shared and responsive rules.
	// Ignored in mobile mode.
	IncludeStyles bool
	// Minify drops line breaks between modules and in document skeleton.
	Minify      bool
	Title       string
	Description string
	Language    string
	// FullDocument wraps modules into complete HTML document.
	FullDocument bool
	// MobileMode produces restricted table/font dialect without styles.
	MobileMode bool
	// Translate provides placeholder texts, nil uses catalog entry matching
	// Language.
	Translate i18n.Func
}

// DefaultOptions returns defaults for every option.
func DefaultOptions() Options {
	return Options{
		IncludeStyles: true,
		Title:         "Pagemaker 导出页面",
		Description:   "使用 Pagemaker CMS 创建的页面",
		Language:      "zh-CN",
	}
}

// Overrides is partial option set as received from callers, nil fields keep
// defaults.
type Overrides struct {
	IncludeStyles *bool   `json:"includeStyles,omitempty" yaml:"include_styles,omitempty"`
	Minify        *bool   `json:"minify,omitempty" yaml:"minify,omitempty"`
	Title         *string `json:"title,omitempty" yaml:"title,omitempty"`
	Description   *string `json:"description,omitempty" yaml:"description,omitempty"`
	Language      *string `json:"language,omitempty" yaml:"language,omitempty"`
	FullDocument  *bool   `json:"fullDocument,omitempty" yaml:"full_document,omitempty"`
	MobileMode    *bool   `json:"mobileMode,omitempty" yaml:"mobile_mode,omitempty"`
}

// Apply returns base with overridden fields replaced.
func (o Overrides) Apply(base Options) Options {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.IncludeStyles, o.IncludeStyles)
	set(&base.Minify, o.Minify)
	set(&base.FullDocument, o.FullDocument)
	set(&base.MobileMode, o.MobileMode)
	setStr(&base.Title, o.Title)
	setStr(&base.Description, o.Description)
	setStr(&base.Language, o.Language)
	return base
}

// languageTag validates language option, falling back to default.
func languageTag(lang string) (language.Tag, bool) {
	tag, err := language.Parse(lang)
	if err != nil || lang == "" {
		return language.MustParse(DefaultOptions().Language), false
	}
	return tag, true
}
