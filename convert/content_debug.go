package convert

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"pagemaker/page"
	"pagemaker/split"
	"pagemaker/utils/debug"
)

// String returns readable tree of processing result. It exists solely for
// inspection of debug reports.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Source %q action[%s] kind[%s]", c.SrcName, c.Action, c.Kind)
	tw.TextBlock(1, "Title", c.Title)
	if c.PageID != "" {
		tw.Line(1, "Page ID: %q", c.PageID)
	}
	tw.Line(1, "Target: %s mobile[%t] output[%d bytes]", c.Target, c.Mobile, len(c.Output))

	if len(c.Issues) > 0 {
		tw.Line(1, "Issues: %d", len(c.Issues))
		for _, issue := range c.Issues {
			tw.Line(2, "%s", issue)
		}
	}

	if len(c.Modules) > 0 {
		counts := make(map[string]int)
		for _, m := range c.Modules {
			counts[string(m.Kind)]++
		}
		tw.Line(1, "Modules: %d", len(c.Modules))
		keys := slices.Collect(maps.Keys(counts))
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			tw.Line(2, "Kind[%s] count[%d]", k, counts[k])
		}
		for i, m := range c.Modules {
			tw.Line(2, "Module[%d] id=%q kind=%s", i, m.ID, m.Kind)
			tw.TextBlock(3, "Summary", split.Summary(m, summaryLength))
			if m.RawFragment != "" && m.RawFragment != m.HTML {
				tw.TextBlock(3, "Raw", m.RawFragment)
			}
		}
	}

	if len(c.Structured) > 0 {
		tw.Line(1, "Structured modules: %d", len(c.Structured))
		for i, m := range c.Structured {
			tw.Line(2, "Module[%d] id=%q type=%s", i, moduleID(m), moduleType(m))
		}
	}
	return tw.String()
}

func moduleID(m page.PageModule) string {
	if m == nil {
		return ""
	}
	return m.ModuleID()
}

func moduleType(m page.PageModule) page.ModuleType {
	if m == nil {
		return ""
	}
	return m.Type()
}
