package convert

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagemaker/common"
	"pagemaker/page"
)

func TestBuildOutputPath(t *testing.T) {
	_, env := setupTestEnv(t)
	dst := filepath.FromSlash("/out")

	content := &Content{
		SrcName: "shop/sale.html",
		Action:  ActionExport,
		Title:   "Summer sale",
		Target:  common.TargetAreaPc,
		Modules: []page.HTMLModule{{Kind: page.KindText}, {Kind: page.KindGap}, {Kind: page.KindText}},
	}

	tests := []struct {
		name     string
		src      string
		action   Action
		mobile   bool
		noDirs   bool
		template string
		slug     bool
		want     string
	}{
		{name: "default", src: "shop/sale.html", action: ActionExport, want: "/out/shop/sale.html"},
		{name: "no dirs", src: "shop/sale.html", action: ActionExport, noDirs: true, want: "/out/sale.html"},
		{name: "split", src: "sale.html", action: ActionSplit, want: "/out/sale.modules.json"},
		{name: "join restores name", src: "sale.modules.json", action: ActionJoin, want: "/out/sale.html"},
		{name: "mobile", src: "sale.json", action: ActionExport, mobile: true, want: "/out/sale.mobile.html"},
		{name: "template", src: "shop/sale.html", action: ActionExport, template: "{{ .Target }}/{{ .Title }}", want: "/out/shop/pc/Summer sale.html"},
		{name: "template slug", src: "sale.html", action: ActionExport, template: "{{ .Title }}", slug: true, want: "/out/summer-sale.html"},
		{name: "template sprig", src: "sale.html", action: ActionExport, template: `{{ .SourceFile | upper }}-{{ .Modules }}-{{ join "_" .Kinds }}`, want: "/out/SALE-3-text_gap.html"},
		{name: "template escapes", src: "sale.html", action: ActionExport, template: "../../{{ .Title }}", want: "/out/Summer sale.html"},
		{name: "broken template", src: "sale.html", action: ActionExport, template: "{{ .Title", want: "/out/sale.html"},
		{name: "empty expansion", src: "sale.html", action: ActionExport, template: "{{ .PageID }}", want: "/out/sale.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.NoDirs = tt.noDirs
			env.Cfg.Export.OutputNameTemplate = tt.template
			env.Cfg.Export.FileNameSlug = tt.slug

			c := *content
			c.Action, c.Mobile = tt.action, tt.mobile
			got := buildOutputPath(&c, filepath.FromSlash(tt.src), dst, env)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("buildOutputPath() = %q, want %q", got, filepath.FromSlash(tt.want))
			}
		})
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	got := splitAndCleanPath(filepath.FromSlash("a/./b/../c/"))
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceBase(t *testing.T) {
	for in, want := range map[string]string{
		"sale.html":             "sale",
		"dir/sale.modules.json": "sale",
		"dir/sale.v2.html":      "sale.v2",
		"noext":                 "noext",
	} {
		if got := sourceBase(filepath.FromSlash(in)); got != want {
			t.Errorf("sourceBase(%q) = %q, want %q", in, got, want)
		}
	}
}
