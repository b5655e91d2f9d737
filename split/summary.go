package split

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"pagemaker/page"
)

var markdown = sync.OnceValue(func() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
})

// Markdown converts module markup to markdown, used for module listings and
// debug dumps.
func Markdown(m page.HTMLModule) (string, error) {
	md, err := markdown().ConvertString(m.HTML)
	if err != nil {
		return "", fmt.Errorf("unable to convert module %s to markdown: %w", m.ID, err)
	}
	return strings.TrimSpace(md), nil
}

// Summary returns single line preview of module content limited to limit
// runes. Modules without text are described by their kind.
func Summary(m page.HTMLModule, limit int) string {
	md, err := Markdown(m)
	if err != nil {
		return "[" + string(m.Kind) + "]"
	}
	line := strings.Join(strings.Fields(md), " ")
	if line == "" {
		return "[" + string(m.Kind) + "]"
	}
	if limit > 0 && utf8.RuneCountInString(line) > limit {
		runes := []rune(line)
		line = string(runes[:limit]) + "…"
	}
	return line
}
