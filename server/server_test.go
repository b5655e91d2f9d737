package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"pagemaker/common"
	"pagemaker/export"
	"pagemaker/page"
	"pagemaker/sanitize"
	"pagemaker/split"
	"pagemaker/storage"
)

type testServer struct {
	*Server
	pages  *storage.PageStore
	images *storage.ImageStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zaptest.NewLogger(t)

	pages, err := storage.OpenPageStore(":memory:", log)
	if err != nil {
		t.Fatalf("OpenPageStore: %v", err)
	}
	t.Cleanup(func() { _ = pages.Close() })

	images, err := storage.NewImageStore(t.TempDir(), "/images", 64<<10, log)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}

	srv := New(Options{
		Sanitize:      sanitize.DefaultOptions(),
		Split:         split.DefaultOptions(),
		Export:        export.DefaultOptions(),
		ImagesDir:     images.Dir(),
		ImagesURL:     "/images",
		MaxUploadSize: 64 << 10,
	}, pages, images, log)
	return &testServer{Server: srv, pages: pages, images: images}
}

func (ts *testServer) do(t *testing.T, method, target string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec); got["status"] != "ok" {
		t.Errorf("unexpected body: %v", got)
	}
}

func TestSanitize(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		target common.TargetArea
		want   []string
		absent []string
	}{
		{
			name:   "pc",
			body:   `{"html":"<div onclick=\"x()\"><p>Hi<script>bad()</script></p></div>"}`,
			target: common.TargetAreaPc,
			want:   []string{"<p>Hi</p>"},
			absent: []string{"onclick", "script", "bad()"},
		},
		{
			name:   "mobile headings",
			body:   `{"html":"<h2>Sale</h2>","target":"mobile"}`,
			target: common.TargetAreaMobile,
			want:   []string{"<font", "<b>Sale</b>"},
			absent: []string{"<h2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/sanitize", tt.body, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			got := decode[sanitizeResponse](t, rec)
			if got.Target != tt.target {
				t.Errorf("target = %s, want %s", got.Target, tt.target)
			}
			for _, w := range tt.want {
				if !strings.Contains(got.HTML, w) {
					t.Errorf("html %q misses %q", got.HTML, w)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(got.HTML, a) {
					t.Errorf("html %q contains %q", got.HTML, a)
				}
			}
		})
	}

	t.Run("bad target", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/sanitize", `{"html":"<p>a</p>","target":"tablet"}`, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestSplitJoin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/split", map[string]string{"html": `<p>a</p><div style="height:40px"></div><p>b</p>`}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	got := decode[splitResponse](t, rec)
	var kinds []page.ModuleKind
	for _, m := range got.Modules {
		kinds = append(kinds, m.Kind)
	}
	if diff := cmp.Diff([]page.ModuleKind{page.KindText, page.KindGap, page.KindText}, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}

	rec = ts.do(t, http.MethodPost, "/api/join", joinRequest{Modules: got.Modules}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("join status = %d: %s", rec.Code, rec.Body)
	}
	joined := decode[map[string]string](t, rec)["html"]
	if want := split.New(split.DefaultOptions(), nil).Join(got.Modules); joined != want {
		t.Errorf("joined = %q, want %q", joined, want)
	}

	for _, in := range []string{`{"html":""}`, `{"html":"<script>alert(1)</script>"}`} {
		t.Run("empty "+in, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/split", in, nil)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			if got := decode[map[string]string](t, rec)["error"]; got != "无法拆分 HTML" {
				t.Errorf("error = %q", got)
			}
		})
	}
}

func TestSplit_Failure(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		lang string
		want string
	}{
		{"", "拆分失败"},
		{"zh-CN,zh;q=0.9", "拆分失败"},
		{"en-US,en;q=0.8", "Split failed"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/split", `{"html":42}`, map[string]string{"Accept-Language": tt.lang})
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rec.Code)
			}
			if got := decode[map[string]string](t, rec)["error"]; got != tt.want {
				t.Errorf("error = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	body := `{"modules":[{"type":"title","id":"t","text":"Hello","level":1},{"type":"text","id":"x","content":"a\nb"}]`

	t.Run("desktop", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/export", body+`}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("content type = %q", ct)
		}
		for _, want := range []string{`class="pm-title"`, "Hello", "a<br>b"} {
			if !strings.Contains(rec.Body.String(), want) {
				t.Errorf("export misses %q: %s", want, rec.Body)
			}
		}
	})

	t.Run("mobile target", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/export", body+`,"target":"mobile"}`, nil)
		out := rec.Body.String()
		if !strings.Contains(out, "<font") || strings.Contains(out, "class=") {
			t.Errorf("expected mobile dialect: %s", out)
		}
	})

	t.Run("full document override", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/export", body+`,"options":{"fullDocument":true,"title":"Promo"}}`, nil)
		if !strings.Contains(rec.Body.String(), "<title>Promo</title>") {
			t.Errorf("expected document title: %s", rec.Body)
		}
	})
}

func TestPages(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/pages/missing", nil, map[string]string{"Accept-Language": "en-US"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decode[map[string]string](t, rec)["error"]; got != "Page not found" {
		t.Errorf("error = %q", got)
	}

	tpl := `{"name":"Spring","target_area":"mobile","content":[{"type":"title","id":"t","text":"Spring","level":2}]}`
	rec = ts.do(t, http.MethodPut, "/api/pages/p1", tpl, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d: %s", rec.Code, rec.Body)
	}
	saved := decode[page.Template](t, rec)
	if saved.ID != "p1" || saved.ModuleCount != 1 || saved.TargetArea != common.TargetAreaMobile {
		t.Errorf("unexpected saved page: %+v", saved)
	}

	rec = ts.do(t, http.MethodGet, "/api/pages/p1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if got := decode[page.Template](t, rec); got.Name != "Spring" || len(got.Content) != 1 {
		t.Errorf("unexpected page: %+v", got)
	}

	rec = ts.do(t, http.MethodGet, "/api/pages/p1/html?full=true", nil, nil)
	out := rec.Body.String()
	for _, want := range []string{"<title>Spring</title>", "<font", "Spring</b>"} {
		if !strings.Contains(out, want) {
			t.Errorf("page html misses %q: %s", want, out)
		}
	}
}

func multipartBody(t *testing.T, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

// pngImage encodes noise so that file size grows with dimensions.
func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	rnd := rand.New(rand.NewPCG(uint64(w), uint64(h)))
	for i := range img.Pix {
		img.Pix[i] = uint8(rnd.UintN(256))
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t)

	upload := func(name string, data []byte, lang string) *httptest.ResponseRecorder {
		body, ct := multipartBody(t, name, data)
		req := httptest.NewRequest(http.MethodPost, "/api/images", body)
		req.Header.Set("Content-Type", ct)
		req.Header.Set("Accept-Language", lang)
		rec := httptest.NewRecorder()
		ts.Handler().ServeHTTP(rec, req)
		return rec
	}

	rec := upload("Banner.png", pngImage(t, 3, 2), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	up := decode[page.Upload](t, rec)
	if up.Width != 3 || up.Height != 2 || up.MIME != "image/png" || !strings.HasPrefix(up.URL, "/images/banner-") {
		t.Errorf("unexpected upload: %+v", up)
	}
	if _, err := os.Stat(filepath.Join(ts.images.Dir(), filepath.Base(up.URL))); err != nil {
		t.Errorf("stored file: %v", err)
	}

	// stored image is served back
	rec = ts.do(t, http.MethodGet, up.URL, nil, nil)
	if rec.Code != http.StatusOK || !bytes.Equal(rec.Body.Bytes(), pngImage(t, 3, 2)) {
		t.Errorf("static image: status = %d", rec.Code)
	}

	rec = upload("notes.txt", []byte("plain text"), "en-US")
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("text upload status = %d, want 415", rec.Code)
	}
	if got := decode[map[string]string](t, rec)["error"]; got != "Unsupported image format" {
		t.Errorf("error = %q", got)
	}

	rec = upload("huge.png", pngImage(t, 400, 400), "en-US")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large upload status = %d, want 413: %s", rec.Code, rec.Body)
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("ListenAndServe() = %v", err)
	}
}
