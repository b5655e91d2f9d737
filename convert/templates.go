package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"pagemaker/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Action     string
	Target     string
	Mobile     bool
	SourceFile string
	PageID     string
	// Modules is number of modules produced or consumed.
	Modules int
	// Kinds lists distinct module kinds in order of appearance.
	Kinds []string
}

func buildKinds(c *Content) []string {
	seen := make(map[string]bool)
	var kinds []string
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	for _, m := range c.Modules {
		add(string(m.Kind))
	}
	if len(c.Modules) == 0 {
		for _, m := range c.Structured {
			add(string(moduleType(m)))
		}
	}
	return kinds
}

func moduleCount(c *Content) int {
	return max(len(c.Modules), len(c.Structured))
}

func expandTemplate(c *Content, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      c.Title,
		Action:     c.Action.String(),
		Target:     c.Target.String(),
		Mobile:     c.Mobile,
		SourceFile: sourceBase(c.SrcName),
		PageID:     c.PageID,
		Modules:    moduleCount(c),
		Kinds:      buildKinds(c),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sourceBase is source file name without directories and extensions, module
// list suffix left by split is dropped as well.
func sourceBase(src string) string {
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, modulesExt)
}
