package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagemaker/common"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestLoadConfiguration_Defaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"sanitizer target", cfg.Sanitizer.Target, common.TargetAreaPc},
		{"sanitizer passes", cfg.Sanitizer.MaxPasses, 4},
		{"spacer height", cfg.Sanitizer.MinSpacerHeight, 8},
		{"merge br", cfg.Splitter.MergeConsecutiveBr, true},
		{"table atomic", cfg.Splitter.TableAtomic, true},
		{"whitespace gaps", cfg.Splitter.WhitespaceGapNewlines, 0},
		{"include styles", cfg.Export.IncludeStyles, true},
		{"minify", cfg.Export.Minify, false},
		{"title", cfg.Export.Title, "Pagemaker 导出页面"},
		{"description", cfg.Export.Description, "使用 Pagemaker CMS 创建的页面"},
		{"language", cfg.Export.Language, "zh-CN"},
		{"full document", cfg.Export.FullDocument, false},
		{"mobile mode", cfg.Export.MobileMode, false},
		{"link target", cfg.Editor.LinkTarget, common.LinkTargetTop},
		{"images url", cfg.Server.ImagesURL, "/images"},
		{"database file", filepath.Base(cfg.Server.Database), "pagemaker.db"},
		{"images dir", filepath.Base(cfg.Server.ImagesDir), "images"},
		{"log file", filepath.Base(cfg.Logging.FileLogger.Destination), "pagemaker.log"},
		{"report file", filepath.Base(cfg.Reporting.Destination), "pagemaker-report.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
sanitizer:
  target: mobile
  max_passes: 6
splitter:
  merge_consecutive_br: false
  whitespace_gap_newlines: 3
export:
  minify: true
  mobile_mode: true
  language: ja-JP
  output_name_template: "{{ .Title }}"
editor:
  link_target: _blank
logging:
  console:
    level: debug
  file:
    level: none
reporting:
  destination: ` + filepath.Join(tmpDir, "report.zip") + `
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if !cfg.Sanitizer.Target.IsMobile() {
		t.Errorf("Sanitizer.Target = %q, want mobile", cfg.Sanitizer.Target)
	}
	if cfg.Sanitizer.MaxPasses != 6 {
		t.Errorf("MaxPasses = %d, want 6", cfg.Sanitizer.MaxPasses)
	}
	if cfg.Splitter.MergeConsecutiveBr {
		t.Error("Expected MergeConsecutiveBr to be false")
	}
	if !cfg.Splitter.TableAtomic {
		t.Error("TableAtomic must keep default value")
	}
	if cfg.Splitter.WhitespaceGapNewlines != 3 {
		t.Errorf("WhitespaceGapNewlines = %d, want 3", cfg.Splitter.WhitespaceGapNewlines)
	}
	if !cfg.Export.Minify || !cfg.Export.MobileMode {
		t.Error("Expected export overrides to be applied")
	}
	if cfg.Export.Language != "ja-JP" {
		t.Errorf("Language = %q, want ja-JP", cfg.Export.Language)
	}
	if cfg.Export.OutputNameTemplate != "{{ .Title }}" {
		t.Errorf("OutputNameTemplate = %q, template must not be expanded", cfg.Export.OutputNameTemplate)
	}
	if cfg.Editor.LinkTarget != common.LinkTargetBlank {
		t.Errorf("LinkTarget = %q, want _blank", cfg.Editor.LinkTarget)
	}
	if cfg.Export.Title != "Pagemaker 导出页面" {
		t.Errorf("Title = %q, default must survive", cfg.Export.Title)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name:    "unknown field",
			content: "version: 1\nsplitter:\n  bogus: true\n",
			errPart: "failed to process configuration file",
		},
		{
			name:    "bad version",
			content: "version: 2\n",
			errPart: "Version",
		},
		{
			name:    "bad target",
			content: "version: 1\nsanitizer:\n  target: watch\n",
			errPart: "failed to process configuration file",
		},
		{
			name:    "too many passes",
			content: "version: 1\nsanitizer:\n  max_passes: 100\n",
			errPart: "MaxPasses",
		},
		{
			name:    "bad language",
			content: "version: 1\nexport:\n  language: \"not a tag!\"\n",
			errPart: "Language",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			_, err := LoadConfiguration(path)
			if err == nil {
				t.Fatal("LoadConfiguration() expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "output_name_template") {
		t.Error("Prepared configuration misses output_name_template")
	}

	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	dump, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"target: pc", "link_target: _top", "language: zh-CN"} {
		if !strings.Contains(string(dump), want) {
			t.Errorf("Dump() output misses %q", want)
		}
	}
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "summer sale", "summer sale"},
		{"separator", "a" + string(os.PathSeparator) + "b", "ab"},
		{"leading dots", "..hidden", "hidden"},
		{"ideographic space", "夏　セール", "夏 セール"},
		{"control", "a\x01b", "ab"},
		{"empty", "", "_bad_file_name_"},
		{"only dots", "...", "_bad_file_name_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFileName(tt.in); got != tt.want {
				t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	long := strings.Repeat("字", maxFileNameRunes+10)
	if got := []rune(CleanFileName(long)); len(got) != maxFileNameRunes {
		t.Errorf("long name length = %d, want %d", len(got), maxFileNameRunes)
	}
}
