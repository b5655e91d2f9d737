// Package i18n provides translation function used for user visible strings:
// export placeholders, overlay labels, editor prompts and error messages.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// Fallback is language used when nothing better matches.
var Fallback = language.MustParse("zh-CN")

// Func translates key substituting {name} placeholders from params. Unknown
// keys are returned as is.
type Func func(key string, params map[string]string) string

// Catalog keeps messages of all embedded languages.
type Catalog struct {
	tags     []language.Tag
	messages map[language.Tag]map[string]string
	matcher  language.Matcher
}

// Load reads embedded catalogs. Nested yaml keys are joined with dots.
func Load() (*Catalog, error) {
	names, err := localeFiles.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("unable to list locales: %w", err)
	}

	c := &Catalog{messages: make(map[language.Tag]map[string]string)}
	for _, entry := range names {
		name := entry.Name()
		tag, err := language.Parse(strings.TrimSuffix(name, path.Ext(name)))
		if err != nil {
			return nil, fmt.Errorf("bad locale file name %s: %w", name, err)
		}
		data, err := localeFiles.ReadFile("locales/" + name)
		if err != nil {
			return nil, fmt.Errorf("unable to read locale %s: %w", name, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("unable to parse locale %s: %w", name, err)
		}
		msgs := make(map[string]string)
		flattenTree("", tree, msgs)
		c.messages[tag] = msgs
		c.tags = append(c.tags, tag)
	}
	if _, ok := c.messages[Fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s is missing", Fallback)
	}

	// matcher prefers first tag when nothing matches
	sort.Slice(c.tags, func(i, j int) bool { return c.tags[i].String() < c.tags[j].String() })
	c.tags = slices.DeleteFunc(c.tags, func(t language.Tag) bool { return t == Fallback })
	c.tags = append([]language.Tag{Fallback}, c.tags...)
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func flattenTree(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flattenTree(key, val, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

var defaultCatalog = sync.OnceValues(Load)

// Default returns catalog built from embedded locales.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		// embedded data is broken, this is programming error
		panic(err)
	}
	return c
}

// Tags returns supported languages, fallback first.
func (c *Catalog) Tags() []language.Tag {
	return slices.Clone(c.tags)
}

// Names returns display names of supported languages in their own language.
func (c *Catalog) Names() map[string]string {
	out := make(map[string]string, len(c.tags))
	for _, t := range c.tags {
		out[t.String()] = display.Self.Name(t)
	}
	return out
}

// Match selects supported language for preference list, which may be
// language tag or Accept-Language header value.
func (c *Catalog) Match(pref string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return c.tags[0]
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.tags[0]
	}
	return c.tags[idx]
}

// Translator returns translation function for preferred language.
func (c *Catalog) Translator(pref string) Func {
	tag := c.Match(pref)
	msgs, fallback := c.messages[tag], c.messages[Fallback]
	return func(key string, params map[string]string) string {
		msg, ok := msgs[key]
		if !ok {
			if msg, ok = fallback[key]; !ok {
				return key
			}
		}
		return substitute(msg, params)
	}
}

// T is shortcut for one off translation.
func (c *Catalog) T(pref, key string, params map[string]string) string {
	return c.Translator(pref)(key, params)
}

func substitute(msg string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
