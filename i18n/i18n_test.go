package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tags := c.Tags()
	if len(tags) != 3 || tags[0] != Fallback {
		t.Fatalf("Tags() = %v", tags)
	}

	// every key of fallback catalog must exist in other catalogs
	for _, tag := range tags[1:] {
		for key := range c.messages[Fallback] {
			if _, ok := c.messages[tag][key]; !ok {
				t.Errorf("%s: key %q is missing", tag, key)
			}
		}
	}
}

func TestMatch(t *testing.T) {
	c := Default()
	tests := []struct {
		pref string
		want language.Tag
	}{
		{"", Fallback},
		{"zh-CN", Fallback},
		{"zh", Fallback},
		{"ja", language.MustParse("ja-JP")},
		{"ja-JP,ja;q=0.9,en;q=0.8", language.MustParse("ja-JP")},
		{"en-GB,en;q=0.9", language.MustParse("en-US")},
		{"fr-FR", Fallback},
		{"@@bad@@", Fallback},
	}
	for _, tt := range tests {
		t.Run(tt.pref, func(t *testing.T) {
			if got := c.Match(tt.pref); got != tt.want {
				t.Errorf("Match(%q) = %s, want %s", tt.pref, got, tt.want)
			}
		})
	}
}

func TestTranslator(t *testing.T) {
	c := Default()

	zh := c.Translator("zh-CN")
	if got := zh("split.failed", nil); got != "拆分失败" {
		t.Errorf("split.failed = %q", got)
	}
	if got := zh("export.placeholder", map[string]string{"type": "多列图文"}); got != "多列图文模块：内容未设置" {
		t.Errorf("export.placeholder = %q", got)
	}
	if got := zh("no.such.key", nil); got != "no.such.key" {
		t.Errorf("unknown key = %q", got)
	}

	en := c.Translator("en")
	if got := en("kind.gap", nil); got != "Gap" {
		t.Errorf("kind.gap = %q", got)
	}
	if got := c.T("ja", "split.failed_detail", map[string]string{"reason": "x"}); got != "分割に失敗しました：x" {
		t.Errorf("split.failed_detail = %q", got)
	}

	if names := c.Names(); len(names) != 3 || names["ja-JP"] == "" {
		t.Errorf("Names() = %v", names)
	}
}
