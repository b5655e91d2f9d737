package convert

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"pagemaker/config"
	"pagemaker/page"
	"pagemaker/split"
	"pagemaker/state"
)

const samplePage = `<div onclick="steal()"><h2 style="color:red">Summer sale</h2>` +
	`<p>Best <b>prices</b><script>bad()</script></p></div>` +
	`<br><br><img src="https://img.example.com/banner.png" alt="banner">` +
	`<table><tr><td>Size</td><td>XL</td></tr></table>`

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(data)
}

func TestProcess_Sanitize(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := writeFile(t, filepath.Join(t.TempDir(), "sale.html"), []byte(samplePage))
	dst := t.TempDir()

	if err := process(ctx, src, dst, ActionSanitize, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	out := readFile(t, filepath.Join(dst, "sale.html"))
	for _, bad := range []string{"onclick", "<script", "bad()", "style=", "<div"} {
		if strings.Contains(out, bad) {
			t.Errorf("sanitized output contains %q: %s", bad, out)
		}
	}
	for _, good := range []string{"Summer sale", "<b>prices</b>", `src="https://img.example.com/banner.png"`, "<td>XL</td>"} {
		if !strings.Contains(out, good) {
			t.Errorf("sanitized output misses %q: %s", good, out)
		}
	}

	t.Run("existing output", func(t *testing.T) {
		if err := process(ctx, src, dst, ActionSanitize, env.Log); err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("expected already exists error, got %v", err)
		}
		env.Overwrite = true
		defer func() { env.Overwrite = false }()
		if err := process(ctx, src, dst, ActionSanitize, env.Log); err != nil {
			t.Errorf("overwrite: %v", err)
		}
	})
}

func TestProcess_SplitJoin(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Cfg.Splitter.Summaries = true
	src := writeFile(t, filepath.Join(t.TempDir(), "sale.html"), []byte(samplePage))
	splitDst, joinDst := t.TempDir(), t.TempDir()

	if err := process(ctx, src, splitDst, ActionSplit, env.Log); err != nil {
		t.Fatalf("split: %v", err)
	}
	listPath := filepath.Join(splitDst, "sale.modules.json")
	var entries []moduleEntry
	if err := json.Unmarshal([]byte(readFile(t, listPath)), &entries); err != nil {
		t.Fatalf("decode module list: %v", err)
	}

	want, err := split.New(env.SplitOptions(), env.Log).Split(samplePage)
	if err != nil {
		t.Fatal(err)
	}
	kinds := func(ms []page.HTMLModule) []page.ModuleKind {
		var out []page.ModuleKind
		for _, m := range ms {
			out = append(out, m.Kind)
		}
		return out
	}
	var got []page.HTMLModule
	for _, e := range entries {
		got = append(got, e.HTMLModule)
		if e.Summary == "" {
			t.Errorf("module %s has no summary", e.ID)
		}
	}
	if diff := cmp.Diff(kinds(want), kinds(got)); diff != "" {
		t.Errorf("module kinds mismatch (-want +got):\n%s", diff)
	}

	if err := process(ctx, listPath, joinDst, ActionJoin, env.Log); err != nil {
		t.Fatalf("join: %v", err)
	}
	joined := readFile(t, filepath.Join(joinDst, "sale.html"))
	if wantHTML := split.New(env.SplitOptions(), env.Log).Join(got); joined != wantHTML {
		t.Errorf("joined = %q, want %q", joined, wantHTML)
	}
}

func TestProcess_NothingToSplit(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := writeFile(t, filepath.Join(t.TempDir(), "blank.html"), []byte("<p> </p><script>x()</script>"))

	for _, action := range []Action{ActionSplit, ActionExport} {
		t.Run(action.String(), func(t *testing.T) {
			dst := t.TempDir()
			err := process(ctx, src, dst, action, env.Log)
			if !errors.Is(err, split.ErrNoModules) {
				t.Fatalf("process() error = %v, want %v", err, split.ErrNoModules)
			}
			if entries, _ := os.ReadDir(dst); len(entries) != 0 {
				t.Errorf("unexpected output for blank page: %v", entries)
			}
		})
	}
}

func TestProcess_ExportTemplate(t *testing.T) {
	ctx, env := setupTestEnv(t)
	tpl := `{"id":"p1","name":"Big Sale","target_area":"mobile","content":[` +
		`{"type":"title","id":"t","text":"Big sale","level":1},` +
		`{"type":"text","id":"x","content":"Line one\nLine two"}]}`
	src := writeFile(t, filepath.Join(t.TempDir(), "sale.json"), []byte(tpl))
	dst := t.TempDir()

	if err := process(ctx, src, dst, ActionExport, env.Log); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := readFile(t, filepath.Join(dst, "sale.mobile.html"))
	if strings.Contains(out, "<style") || strings.Contains(out, "class=") {
		t.Errorf("mobile export has desktop markup: %s", out)
	}
	for _, want := range []string{"<font", "Big sale", "Line one<br>Line two"} {
		if !strings.Contains(out, want) {
			t.Errorf("export misses %q: %s", want, out)
		}
	}
}

func TestProcess_ExportHTML(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Cfg.Export.FullDocument = true
	src := writeFile(t, filepath.Join(t.TempDir(), "sale.htm"), []byte(samplePage))
	dst := t.TempDir()

	if err := process(ctx, src, dst, ActionExport, env.Log); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := readFile(t, filepath.Join(dst, "sale.html"))
	for _, want := range []string{"<!DOCTYPE html>", "<title>Summer sale</title>", "<style>", "pm-custom", "<b>prices</b>"} {
		if !strings.Contains(out, want) {
			t.Errorf("export misses %q", want)
		}
	}
}

func TestProcess_DirectoryAndArchive(t *testing.T) {
	ctx, env := setupTestEnv(t)
	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "a.html"), []byte("<p>A</p>"))
	writeFile(t, filepath.Join(srcDir, "sub", "b.html"), []byte("<p>B</p>"))
	writeFile(t, filepath.Join(srcDir, "notes.txt"), []byte("not a page"))

	zf, err := os.Create(filepath.Join(srcDir, "pages.zip"))
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(zf)
	for name, body := range map[string]string{"shop/c.html": "<p>C</p>", "shop/readme.txt": "skip"} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	zf.Close()

	t.Run("directory", func(t *testing.T) {
		dst := t.TempDir()
		if err := process(ctx, srcDir, dst, ActionSanitize, env.Log); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		for path, want := range map[string]string{
			filepath.Join(dst, "a.html"):         "<p>A</p>",
			filepath.Join(dst, "sub", "b.html"):  "<p>B</p>",
			filepath.Join(dst, "shop", "c.html"): "<p>C</p>",
		} {
			if got := readFile(t, path); got != want {
				t.Errorf("%s = %q, want %q", path, got, want)
			}
		}
		if _, err := os.Stat(filepath.Join(dst, "notes.html")); err == nil {
			t.Error("text file was processed")
		}
	})

	t.Run("path inside archive", func(t *testing.T) {
		dst := t.TempDir()
		env.NoDirs = true
		defer func() { env.NoDirs = false }()
		if err := process(ctx, filepath.Join(srcDir, "pages.zip", "shop"), dst, ActionSplit, env.Log); err != nil {
			t.Fatalf("process() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dst, "c.modules.json")); err != nil {
			t.Errorf("expected module list: %v", err)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		if err := process(ctx, filepath.Join(srcDir, "nothing.html"), t.TempDir(), ActionSanitize, env.Log); err == nil {
			t.Error("expected error for missing source")
		}
	})

	t.Run("wrong source for action", func(t *testing.T) {
		if err := process(ctx, filepath.Join(srcDir, "a.html"), t.TempDir(), ActionJoin, env.Log); err == nil {
			t.Error("expected join to reject HTML source")
		}
	})
}

func TestProcess_Encodings(t *testing.T) {
	ctx, env := setupTestEnv(t)
	const text = "<p>こんにちは世界</p>"

	sjis, err := japanese.ShiftJIS.NewEncoder().String(`<meta charset="Shift_JIS">` + text)
	if err != nil {
		t.Fatal(err)
	}
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		data []byte
	}{
		{"shift_jis.html", []byte(sjis)},
		{"utf16.html", []byte(utf16)},
		{"bom.html", append([]byte{0xEF, 0xBB, 0xBF}, text...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := writeFile(t, filepath.Join(t.TempDir(), tt.name), tt.data)
			dst := t.TempDir()
			if err := process(ctx, src, dst, ActionSanitize, env.Log); err != nil {
				t.Fatalf("process() error = %v", err)
			}
			if got := readFile(t, filepath.Join(dst, tt.name)); got != text {
				t.Errorf("output = %q, want %q", got, text)
			}
		})
	}
}

func TestProcess_Report(t *testing.T) {
	ctx, env := setupTestEnv(t)
	rptPath := filepath.Join(t.TempDir(), "report.zip")
	env.Cfg.Reporting.Destination = rptPath
	rpt, err := env.Cfg.Reporting.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	env.Rpt = rpt

	src := writeFile(t, filepath.Join(t.TempDir(), "sale.html"), []byte(samplePage))
	if err := process(ctx, src, t.TempDir(), ActionSplit, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("close report: %v", err)
	}

	r, err := zip.OpenReader(rptPath)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer r.Close()
	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	for _, want := range []string{"content-sale.txt", "result/sale.modules.json"} {
		if !names[want] {
			t.Errorf("report misses %s, has %v", want, names)
		}
	}
}

func TestParseAction(t *testing.T) {
	for i, name := range actionNames {
		a, err := ParseAction(" " + strings.ToUpper(name))
		if err != nil || a != Action(i) || a.String() != name {
			t.Errorf("ParseAction(%q) = %v, %v", name, a, err)
		}
	}
	if _, err := ParseAction("convert"); err == nil {
		t.Error("expected error for unknown action")
	}
}
