package export

import (
	"cmp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pagemaker/css"
	"pagemaker/dom"
	"pagemaker/page"
	"pagemaker/sanitize"
)

const (
	defaultTextColor  = "#000000"
	defaultLineColor  = "#e0e0e0"
	defaultLabelBg    = "#f3f4f6"
	defaultLabelColor = "#374151"
	defaultBorder     = "#e5e7eb"
	placeholderColor  = "#999999"
	mobileTable       = `<table width="100%" cellspacing="0" cellpadding="0" border="0">`
)

// writer renders modules of single Generate call.
type writer struct {
	opts   Options
	log    *zap.Logger
	custom *sanitize.Sanitizer
}

func (w *writer) mobile() bool {
	return w.opts.MobileMode
}

func (w *writer) module(m page.PageModule) string {
	switch m := m.(type) {
	case *page.TitleModule:
		return w.title(m)
	case *page.TextModule:
		return w.text(m)
	case *page.ImageModule:
		return w.image(m)
	case *page.SeparatorModule:
		return w.separator(m)
	case *page.KeyValueModule:
		return w.keyValue(m)
	case *page.MultiColumnModule:
		return w.multiColumn(m)
	case *page.CustomModule:
		return w.customHTML(m)
	case *page.UnknownModule:
		w.log.Warn("Unknown module type, exporting placeholder", zap.String("id", m.ID), zap.String("type", m.TypeName))
		return w.placeholder(page.ModuleType(m.TypeName))
	case nil:
		w.log.Warn("Nil module in export list, exporting placeholder")
		return w.placeholder("")
	default:
		w.log.Warn("Unsupported module value, exporting placeholder", zap.String("id", m.ModuleID()), zap.String("type", string(m.Type())))
		return w.placeholder(m.Type())
	}
}

// placeholder marks module which could not be rendered.
func (w *writer) placeholder(t page.ModuleType) string {
	name := w.opts.Translate("module.unknown", nil)
	if t != "" {
		key := "module." + string(t)
		if name = w.opts.Translate(key, nil); name == key {
			name = string(t)
		}
	}
	msg := dom.EscapeText(w.opts.Translate("export.placeholder", map[string]string{"type": name}))
	if w.mobile() {
		return `<p align="center"><font color="` + placeholderColor + `">` + msg + `</font></p>`
	}
	return `<div class="pm-placeholder">` + msg + `</div>`
}

// escapeLines escapes plain text turning newlines into line breaks.
func escapeLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(dom.EscapeText(s), "\n", "<br>")
}

func alignAttr(a page.Alignment) string {
	if a = a.Legacy(); a == page.AlignLeft {
		return ""
	}
	return ` align="` + string(a) + `"`
}

func bgcolorAttr(raw string) string {
	if c := optionalColor(raw); c != "" {
		return ` bgcolor="` + c + `"`
	}
	return ""
}

func fontOpen(code int, clr string) string {
	return `<font size="` + strconv.Itoa(code) + `" color="` + clr + `">`
}

func fontWeight(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "normal", "bold", "bolder", "lighter":
		return raw
	}
	if n, err := strconv.Atoi(raw); err == nil && n >= 100 && n <= 900 && n%100 == 0 {
		return raw
	}
	return "bold"
}

func (w *writer) title(m *page.TitleModule) string {
	if strings.TrimSpace(m.Text) == "" {
		return w.placeholder(page.TypeTitle)
	}
	level := m.Level
	if level < 1 || level > 6 {
		level = 2
	}
	code := css.HeadingSizeCode(level)
	content := escapeLines(m.Text)
	align := m.Alignment.OrDefault(page.AlignLeft)
	clr := color(m.Color, defaultTextColor)

	if w.mobile() {
		return mobileTable + `<tr><td align="` + string(align.Legacy()) + `"` + bgcolorAttr(m.BackgroundColor) + `>` +
			fontOpen(code, clr) + `<b>` + content + `</b></font></td></tr></table>`
	}

	var d declarations
	d.add("text-align", string(align))
	d.add("color", clr)
	d.add("font-size", strconv.Itoa(css.SizeCodePixels(code))+"px")
	d.add("font-family", fontFamily(m.FontFamily))
	d.add("font-weight", fontWeight(m.FontWeight))
	d.add("background-color", optionalColor(m.BackgroundColor))
	tag := "h" + strconv.Itoa(level)
	return "<" + tag + ` class="pm-title"` + d.attr() + ">" + content + "</" + tag + ">"
}

func (w *writer) text(m *page.TextModule) string {
	if strings.TrimSpace(m.Content) == "" {
		return w.placeholder(page.TypeText)
	}
	content := richText(m.Content, w.mobile())
	align := m.Alignment.OrDefault(page.AlignLeft)
	clr := color(m.TextColor, defaultTextColor)

	if w.mobile() {
		p := `<p` + alignAttr(align) + `>` + fontOpen(sizeCode(m.FontSize, css.DefaultSizeCode), clr) + content + `</font></p>`
		if bg := bgcolorAttr(m.BackgroundColor); bg != "" {
			return `<table width="100%" cellspacing="0" cellpadding="8" border="0"><tr><td` + bg + `>` + p + `</td></tr></table>`
		}
		return p
	}

	var d declarations
	d.add("text-align", string(align))
	d.add("font-size", cmp.Or(fontSize(m.FontSize), "14px"))
	d.add("font-family", fontFamily(m.FontFamily))
	d.add("line-height", "1.6")
	d.add("color", clr)
	d.add("background-color", optionalColor(m.BackgroundColor))
	return `<div class="pm-text"` + d.attr() + `>` + content + `</div>`
}

// img renders image tag for current dialect.
func (w *writer) img(src, alt, width, fallbackWidth string) string {
	tag := `<img src="` + dom.EscapeAttr(strings.TrimSpace(src)) + `" alt="` + dom.EscapeAttr(alt) + `"`
	if w.mobile() {
		return tag + ` width="` + cmp.Or(attrLength(width), fallbackWidth) + `" border="0">`
	}
	var d declarations
	d.add("width", cssLength(width))
	d.add("max-width", "100%")
	d.add("height", "auto")
	return tag + d.attr() + ">"
}

// link wraps inner markup into anchor when link is usable.
func link(l *page.Link, inner string) string {
	if l == nil {
		return inner
	}
	href := l.Href()
	if href == "" || !sanitize.SafeURL(href) {
		return inner
	}
	return `<a href="` + dom.EscapeAttr(href) + `" target="_blank">` + inner + `</a>`
}

func (w *writer) image(m *page.ImageModule) string {
	if strings.TrimSpace(m.Src) == "" || !sanitize.SafeURL(m.Src) {
		return w.placeholder(page.TypeImage)
	}
	align := m.Alignment.OrDefault(page.AlignCenter)
	content := link(m.Link, w.img(m.Src, m.Alt, m.Width, "100%"))
	if w.mobile() {
		return `<p` + alignAttr(align) + `>` + content + `</p>`
	}
	var d declarations
	d.add("text-align", string(align.Legacy()))
	return `<div class="pm-image"` + d.attr() + `>` + content + `</div>`
}

func (w *writer) separator(m *page.SeparatorModule) string {
	if m.SeparatorType == page.SeparatorSpace {
		height := strconv.Itoa(m.SpacePixels())
		if w.mobile() {
			return mobileTable + `<tr><td height="` + height + `"></td></tr></table>`
		}
		return `<div class="pm-spacer" style="height: ` + height + `px"></div>`
	}

	thickness := m.LineThickness
	if thickness < 1 || thickness > 20 {
		thickness = 1
	}
	clr := color(m.LineColor, defaultLineColor)
	if w.mobile() {
		return mobileTable + `<tr><td height="` + strconv.Itoa(thickness) + `" bgcolor="` + clr + `"></td></tr></table>`
	}
	style := "solid"
	switch m.LineStyle {
	case "dashed", "dotted":
		style = m.LineStyle
	}
	var d declarations
	d.add("border", "none")
	d.add("border-top", strconv.Itoa(thickness)+"px "+style+" "+clr)
	d.add("width", "100%")
	return `<hr class="pm-separator"` + d.attr() + `>`
}

func (w *writer) keyValue(m *page.KeyValueModule) string {
	rows := make([]page.KeyValueRow, 0, len(m.Rows))
	for _, r := range m.Rows {
		if strings.TrimSpace(r.Key) != "" || strings.TrimSpace(r.Value) != "" {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return w.placeholder(page.TypeKeyValue)
	}
	labelBg := color(m.LabelBackgroundColor, defaultLabelBg)
	clr := color(m.TextColor, defaultLabelColor)

	var b strings.Builder
	if w.mobile() {
		b.WriteString(`<table width="100%" cellspacing="0" cellpadding="8" border="1" bordercolor="` + defaultBorder + `">`)
		for _, r := range rows {
			b.WriteString(`<tr><td width="30%" bgcolor="` + labelBg + `"><font color="` + clr + `"><b>` + escapeLines(r.Key) + `</b></font></td>`)
			b.WriteString(`<td><font color="` + clr + `">` + escapeLines(r.Value) + `</font></td></tr>`)
		}
		b.WriteString(`</table>`)
		return b.String()
	}

	var th, td declarations
	th.add("background-color", labelBg)
	th.add("color", clr)
	td.add("color", clr)
	b.WriteString(`<table class="pm-key-value">`)
	for _, r := range rows {
		b.WriteString(`<tr><th` + th.attr() + `>` + escapeLines(r.Key) + `</th><td` + td.attr() + `>` + escapeLines(r.Value) + `</td></tr>`)
	}
	b.WriteString(`</table>`)
	return b.String()
}

func (w *writer) multiColumn(m *page.MultiColumnModule) string {
	ic, tc := m.ImageConfig, m.TextConfig
	hasImage := strings.TrimSpace(ic.Src) != "" && sanitize.SafeURL(ic.Src)
	hasText := strings.TrimSpace(tc.Content) != ""
	if !hasImage && !hasText {
		return w.placeholder(page.TypeMultiColumn)
	}

	layout := m.Layout
	switch layout {
	case page.LayoutImageLeft, page.LayoutTextLeft, page.LayoutImageTop, page.LayoutTextTop:
	default:
		layout = page.LayoutImageLeft
	}
	horizontal := layout.Horizontal()
	imgAlign := ic.Alignment.OrDefault(page.AlignCenter).Legacy()
	txtAlign := tc.Alignment.OrDefault(page.AlignLeft)
	clr := color(tc.Color, defaultTextColor)

	var cells []string
	if w.mobile() {
		if hasImage {
			width := "100%"
			if horizontal && hasText {
				width = cmp.Or(attrLength(ic.Width), "50%")
			}
			cells = append(cells, `<td width="`+width+`" align="`+string(imgAlign)+`" valign="top">`+
				link(ic.Link, w.img(ic.Src, ic.Alt, "", "100%"))+`</td>`)
		}
		if hasText {
			cells = append(cells, `<td valign="top"`+alignAttr(txtAlign)+bgcolorAttr(tc.BackgroundColor)+`>`+
				fontOpen(sizeCode(tc.FontSize, css.DefaultSizeCode), clr)+richText(tc.Content, true)+`</font></td>`)
		}
		if len(cells) == 2 && !layout.ImageFirst() {
			cells[0], cells[1] = cells[1], cells[0]
		}
		sep := "</tr><tr>"
		if horizontal {
			sep = ""
		}
		return mobileTable + `<tr>` + strings.Join(cells, sep) + `</tr></table>`
	}

	if hasImage {
		var d declarations
		if horizontal && hasText {
			d.add("flex", "0 0 "+cmp.Or(cssLength(ic.Width), "50%"))
		}
		d.add("text-align", string(imgAlign))
		cells = append(cells, `<div class="pm-column pm-column-image"`+d.attr()+`>`+
			link(ic.Link, w.img(ic.Src, ic.Alt, "100%", ""))+`</div>`)
	}
	if hasText {
		var d declarations
		d.add("flex", "1")
		d.add("text-align", string(txtAlign))
		d.add("font-family", fontFamily(tc.Font))
		d.add("font-size", fontSize(tc.FontSize))
		d.add("color", clr)
		if bg := optionalColor(tc.BackgroundColor); bg != "" {
			d.add("background-color", bg)
			d.add("padding", "12px")
		}
		cells = append(cells, `<div class="pm-column pm-column-text"`+d.attr()+`>`+richText(tc.Content, false)+`</div>`)
	}
	if len(cells) == 2 && !layout.ImageFirst() {
		cells[0], cells[1] = cells[1], cells[0]
	}

	direction := "column"
	if horizontal {
		direction = "row"
	}
	var d declarations
	d.add("display", "flex")
	d.add("flex-direction", direction)
	d.add("gap", "16px")
	if horizontal {
		d.add("align-items", "center")
	}
	return `<div class="pm-multi-column pm-layout-` + string(layout) + `"` + d.attr() + `>` + strings.Join(cells, "") + `</div>`
}

func (w *writer) customHTML(m *page.CustomModule) string {
	clean := ""
	if strings.TrimSpace(m.HTML) != "" {
		clean = w.custom.Sanitize(m.HTML)
	}
	if strings.TrimSpace(clean) == "" {
		return w.placeholder(page.TypeCustom)
	}
	if w.mobile() {
		return clean
	}
	return `<div class="pm-custom">` + clean + `</div>`
}
