package export

import (
	"strings"
)

type rule struct {
	selector string
	decls    []string
}

var baseRules = []rule{
	{"body", []string{"font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif", "line-height: 1.6", "color: #333", "margin: 0", "padding: 0"}},
	{".pagemaker-content", []string{"max-width: 1200px", "margin: 0 auto", "padding: 20px"}},
	{".pm-title", []string{"margin: 16px 0"}},
	{".pm-text", []string{"margin: 12px 0"}},
	{".pm-image", []string{"margin: 16px 0"}},
	{".pm-image img", []string{"max-width: 100%", "height: auto"}},
	{".pm-separator", []string{"border: none", "margin: 20px auto"}},
	{".pm-key-value", []string{"width: 100%", "border-collapse: collapse", "margin: 16px 0"}},
	{".pm-key-value th, .pm-key-value td", []string{"padding: 8px 12px", "border: 1px solid #e5e7eb", "text-align: left", "vertical-align: top"}},
	{".pm-key-value th", []string{"width: 30%", "font-weight: 600"}},
	{".pm-multi-column", []string{"display: flex", "gap: 16px", "margin: 16px 0"}},
	{".pm-column", []string{"min-width: 0"}},
	{".pm-column img", []string{"max-width: 100%", "height: auto"}},
	{".pm-placeholder", []string{"padding: 20px", "background-color: #f5f5f5", "border: 2px dashed #ccc", "border-radius: 4px", "color: #666", "text-align: center"}},
}

var mobileRules = []rule{
	{".pagemaker-content", []string{"padding: 16px"}},
	{".pm-multi-column", []string{"flex-direction: column !important"}},
	{".pm-column", []string{"width: 100% !important", "flex: none !important"}},
	{".pm-key-value th", []string{"width: 40%"}},
}

// stylesheet renders shared rules plus narrow screen breakpoint.
func stylesheet(minify bool) string {
	var b strings.Builder
	writeRules(&b, baseRules, "", minify)
	if minify {
		b.WriteString("@media (max-width: 768px){")
		writeRules(&b, mobileRules, "", minify)
		b.WriteString("}")
	} else {
		b.WriteString("@media (max-width: 768px) {\n")
		writeRules(&b, mobileRules, "  ", minify)
		b.WriteString("}")
	}
	return b.String()
}

func writeRules(b *strings.Builder, rules []rule, indent string, minify bool) {
	for _, r := range rules {
		if minify {
			b.WriteString(r.selector + "{" + strings.Join(r.decls, ";") + "}")
			continue
		}
		b.WriteString(indent + r.selector + " {\n")
		for _, d := range r.decls {
			b.WriteString(indent + "  " + d + ";\n")
		}
		b.WriteString(indent + "}\n")
	}
}
