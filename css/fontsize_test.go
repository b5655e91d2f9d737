package css_test

import (
	"testing"

	"pagemaker/css"
)

func TestPixelsToSizeCode(t *testing.T) {
	tests := []struct {
		px   float64
		want int
	}{
		{8, 1}, {10, 1}, {11, 2}, {12, 2}, {14, 3}, {16, 4}, {18, 4},
		{20, 5}, {24, 5}, {28, 6}, {36, 6}, {48, 7}, {64, 7},
	}
	for _, tt := range tests {
		if got := css.PixelsToSizeCode(tt.px); got != tt.want {
			t.Errorf("PixelsToSizeCode(%v) = %d, want %d", tt.px, got, tt.want)
		}
	}
}

func TestSizeCodePixels(t *testing.T) {
	want := []int{12, 16, 20, 28, 36, 48, 64}
	prev := 0
	for code := css.MinSizeCode; code <= css.MaxSizeCode; code++ {
		got := css.SizeCodePixels(code)
		if got != want[code-1] {
			t.Errorf("SizeCodePixels(%d) = %d, want %d", code, got, want[code-1])
		}
		if got <= prev {
			t.Errorf("scale must grow monotonically at code %d", code)
		}
		prev = got
	}
	if css.SizeCodePixels(0) != 12 || css.SizeCodePixels(9) != 64 {
		t.Error("out of range codes must be clamped")
	}
	if css.SizeCodePixels(css.DefaultSizeCode) != 20 {
		t.Error("default size code must be 20px")
	}
}

func TestHeadingSizeCode(t *testing.T) {
	for level, want := range map[int]int{1: 6, 2: 5, 3: 4, 4: 3, 5: 2, 6: 1, 0: 7, 9: 1} {
		if got := css.HeadingSizeCode(level); got != want {
			t.Errorf("HeadingSizeCode(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestFontSizeCode(t *testing.T) {
	tests := []struct {
		style string
		want  int
		ok    bool
	}{
		{"font-size: 12px", 2, true},
		{"font-size: 24px", 5, true},
		{"font-size: large", 4, true},
		{"font-size: 150%", 5, true},
		{"font-size: 1em", 4, true},
		{"font-size: inherit", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			v, _ := css.ParseStyle(tt.style).Get("font-size")
			got, ok := css.FontSizeCode(v)
			if got != tt.want || ok != tt.ok {
				t.Errorf("FontSizeCode() = %d, %v; want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseSizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"4", 4, true}, {"+1", 4, true}, {"-2", 1, true}, {"9", 7, true},
		{"0", 1, true}, {"", 0, false}, {"big", 0, false},
	}
	for _, tt := range tests {
		got, ok := css.ParseSizeCode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSizeCode(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#FFF", "#ffffff", true},
		{"#123456", "#123456", true},
		{"#12345678", "#123456", true},
		{"Red", "#ff0000", true},
		{"rgb(255, 0, 10)", "#ff000a", true},
		{"rgba(0 0 0 / 50%)", "#000000", true},
		{"transparent", "", false},
		{"#zzz", "", false},
		{"#12345", "", false},
	}
	for _, tt := range tests {
		got, ok := css.NormalizeColor(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeColor(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
