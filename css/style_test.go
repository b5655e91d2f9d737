package css_test

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"pagemaker/css"
)

func TestParser_ParseStyle(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	style := p.ParseStyle("height: 40px; COLOR: #FF0000; font-weight:bold; margin: 0 auto")
	if len(style) != 4 {
		t.Fatalf("expected 4 declarations, got %d: %v", len(style), style)
	}

	h, ok := style.Get("height")
	if !ok {
		t.Fatal("height not found")
	}
	if h.Value != 40 || h.Unit != "px" {
		t.Errorf("height = %+v, want 40px", h)
	}

	c, ok := style.Get("color")
	if !ok || c.Keyword != "#ff0000" {
		t.Errorf("color = %+v", c)
	}

	w, _ := style.Get("font-weight")
	if !w.IsKeyword() || w.Keyword != "bold" {
		t.Errorf("font-weight = %+v", w)
	}

	m, _ := style.Get("margin")
	if m.Raw != "0 auto" {
		t.Errorf("margin raw = %q, want %q", m.Raw, "0 auto")
	}
}

func TestStyle_GetImportant(t *testing.T) {
	style := css.ParseStyle("color: red !important; color: blue")
	c, _ := style.Get("color")
	if c.Keyword != "red" || !c.Important {
		t.Errorf("important declaration must win, got %+v", c)
	}

	style = css.ParseStyle("color: red; color: blue")
	c, _ = style.Get("color")
	if c.Keyword != "blue" {
		t.Errorf("last declaration must win, got %+v", c)
	}
}

func TestParseStyle_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", ";"} {
		if style := css.ParseStyle(in); len(style) != 0 {
			t.Errorf("ParseStyle(%q) = %v, want empty", in, style)
		}
	}
}

func TestValue_Pixels(t *testing.T) {
	tests := []struct {
		style string
		want  float64
		ok    bool
	}{
		{"height: 20px", 20, true},
		{"height: 12pt", 16, true},
		{"height: 2em", 32, true},
		{"height: 30", 30, true},
		{"height: 50%", 0, false},
		{"height: auto", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			v, _ := css.ParseStyle(tt.style).Get("height")
			got, ok := v.Pixels()
			if ok != tt.ok || got != tt.want {
				t.Errorf("Pixels() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"20", 20, true},
		{"20px", 20, true},
		{" 15PX ", 15, true},
		{"100%", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := css.ParseLength(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseLength(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStyle_String(t *testing.T) {
	style := css.ParseStyle("color:red;font-size: 12px !important")
	if got := style.String(); got != "color: red; font-size: 12px !important" {
		t.Errorf("String() = %q", got)
	}
}
