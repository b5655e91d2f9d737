package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagemaker/common"
	"pagemaker/dom"
	"pagemaker/export"
	"pagemaker/page"
	"pagemaker/sanitize"
	"pagemaker/split"
	"pagemaker/state"
)

// Content is single processed source together with produced result.
type Content struct {
	SrcName string
	Action  Action
	Kind    srcKind

	// Title is template name or text of the first heading.
	Title  string
	PageID string
	Target common.TargetArea
	Mobile bool

	// Modules are split modules (split, join and export of HTML).
	Modules []page.HTMLModule
	// Structured are modules passed to exporter.
	Structured page.Modules
	// Issues are compliance problems left in sanitized markup.
	Issues []string

	Output []byte
}

// moduleEntry is module list element as written by split action.
type moduleEntry struct {
	page.HTMLModule
	Summary string `json:"summary,omitempty"`
}

const summaryLength = 60

// prepareContent reads source and performs requested action on it.
func prepareContent(ctx context.Context, r io.Reader, srcName string, kind srcKind, action Action, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	if kind == srcHTML {
		r = htmlReader(r, env.InputCharset)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read source: %w", err)
	}

	c := &Content{SrcName: srcName, Action: action, Kind: kind}
	switch action {
	case ActionSanitize:
		err = c.sanitize(string(data), env, log)
	case ActionSplit:
		err = c.split(string(data), env, log)
	case ActionJoin:
		err = c.join(data, env, log)
	case ActionExport:
		err = c.export(data, env, log)
	default:
		err = fmt.Errorf("unsupported action %s", action)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Content) sanitize(markup string, env *state.LocalEnv, log *zap.Logger) error {
	opts := env.SanitizeOptions()
	s := sanitize.New(opts, log)
	out := s.Sanitize(markup)
	c.Target = s.Target()
	c.Title = firstHeading(out)
	c.Issues = s.Validate(out)
	for _, issue := range c.Issues {
		log.Warn("Sanitized markup still violates marketplace rules", zap.String("source", c.SrcName), zap.String("issue", issue))
	}
	c.Output = []byte(out)
	return nil
}

func (c *Content) split(markup string, env *state.LocalEnv, log *zap.Logger) error {
	sp := split.New(env.SplitOptions(), log)
	modules, err := sp.Split(markup)
	if err != nil {
		return fmt.Errorf("unable to split (%s): %w", c.SrcName, err)
	}
	if len(modules) == 0 {
		return fmt.Errorf("unable to split (%s): %w", c.SrcName, split.ErrNoModules)
	}
	c.Modules = modules
	c.Target = sp.Sanitizer().Target()
	c.Title = firstHeading(sp.Join(modules))

	summaries := env.Cfg != nil && env.Cfg.Splitter.Summaries
	entries := make([]moduleEntry, 0, len(modules))
	for _, m := range modules {
		e := moduleEntry{HTMLModule: m}
		if summaries {
			e.Summary = split.Summary(m, summaryLength)
		}
		entries = append(entries, e)
	}
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode modules: %w", err)
	}
	c.Output = append(out, '\n')
	return nil
}

func (c *Content) join(data []byte, env *state.LocalEnv, log *zap.Logger) error {
	var modules []page.HTMLModule
	if err := json.Unmarshal(data, &modules); err != nil {
		return fmt.Errorf("unable to decode module list (%s): %w", c.SrcName, err)
	}
	sp := split.New(env.SplitOptions(), log)
	out := sp.Join(modules)
	c.Modules = modules
	c.Target = sp.Sanitizer().Target()
	c.Title = firstHeading(out)
	c.Output = []byte(out)
	return nil
}

// export accepts HTML page (split into custom modules), template object or
// array holding either structured or split modules.
func (c *Content) export(data []byte, env *state.LocalEnv, log *zap.Logger) error {
	opts := env.ExportOptions()

	switch c.Kind {
	case srcHTML:
		sp := split.New(env.SplitOptions(), log)
		modules, err := sp.Split(string(data))
		if err != nil {
			return fmt.Errorf("unable to split (%s): %w", c.SrcName, err)
		}
		if len(modules) == 0 {
			return fmt.Errorf("unable to split (%s): %w", c.SrcName, split.ErrNoModules)
		}
		c.Modules = modules
		c.Title = firstHeading(sp.Join(modules))
		for _, m := range modules {
			c.Structured = append(c.Structured, page.FromHTMLModule(m))
		}
	case srcJSON:
		if err := c.decodeStructured(data); err != nil {
			return err
		}
	}

	if c.Target.IsMobile() {
		opts.MobileMode = true
	}
	if c.Title != "" && opts.FullDocument {
		opts.Title = c.Title
	}
	c.Mobile = opts.MobileMode
	if c.Target == "" {
		c.Target = common.TargetAreaPc
		if c.Mobile {
			c.Target = common.TargetAreaMobile
		}
	}
	c.Output = []byte(export.New(log).Generate(c.Structured, opts))
	return nil
}

func (c *Content) decodeStructured(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var tpl page.Template
		if err := json.Unmarshal(data, &tpl); err != nil {
			return fmt.Errorf("unable to decode page template (%s): %w", c.SrcName, err)
		}
		c.Structured = tpl.Content
		c.Title = tpl.Name
		c.PageID = tpl.ID
		c.Target = tpl.TargetArea
		return nil
	}

	// split module lists have "kind" and "html" but no "type"
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("unable to decode module list (%s): %w", c.SrcName, err)
	}
	fromSplit := len(probe) > 0
	for _, m := range probe {
		_, hasKind := m["kind"]
		_, hasType := m["type"]
		if !hasKind || hasType {
			fromSplit = false
			break
		}
	}
	if fromSplit {
		if err := json.Unmarshal(data, &c.Modules); err != nil {
			return fmt.Errorf("unable to decode module list (%s): %w", c.SrcName, err)
		}
		for _, m := range c.Modules {
			c.Structured = append(c.Structured, page.FromHTMLModule(m))
		}
		return nil
	}
	if err := json.Unmarshal(data, &c.Structured); err != nil {
		return fmt.Errorf("unable to decode modules (%s): %w", c.SrcName, err)
	}
	return nil
}

// firstHeading returns text of the first heading in markup.
func firstHeading(markup string) string {
	root, err := dom.Parse(markup)
	if err != nil {
		return ""
	}
	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if dom.IsHeading(ch) {
				found = strings.Join(strings.Fields(dom.Text(ch)), " ")
				if found != "" {
					return true
				}
			}
			if walk(ch) {
				return true
			}
		}
		return false
	}
	walk(root)
	return found
}
