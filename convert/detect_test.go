package convert

import (
	"bytes"
	"io"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func TestDetectUTF(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want srcEncoding
	}{
		{"none", []byte("<p>"), encUnknown},
		{"utf-8", []byte{0xEF, 0xBB, 0xBF, '<'}, encUTF8},
		{"utf-16be", []byte{0xFE, 0xFF, 0x00, '<'}, encUTF16BigEndian},
		{"utf-16le", []byte{0xFF, 0xFE, '<', 0x00}, encUTF16LittleEndian},
		{"utf-32be", []byte{0x00, 0x00, 0xFE, 0xFF}, encUTF32BigEndian},
		{"utf-32le", []byte{0xFF, 0xFE, 0x00, 0x00}, encUTF32LittleEndian},
		{"short", []byte{0xEF}, encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectUTF(tt.in); got != tt.want {
				t.Errorf("detectUTF() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		head     []byte
		wantKind srcKind
		wantEnc  srcEncoding
	}{
		{"html", "page.html", []byte("<p>a</p>"), srcHTML, encUnknown},
		{"htm upper case", "PAGE.HTM", []byte("text"), srcHTML, encUnknown},
		{"html with bom", "page.html", []byte{0xEF, 0xBB, 0xBF, '<', 'p', '>'}, srcHTML, encUTF8},
		{"png named html", "page.html", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}, srcNone, encUnknown},
		{"json array", "list.json", []byte("\n  [{\"id\":\"a\"}]"), srcJSON, encUnknown},
		{"json object", "tpl.json", []byte(`{"name":"x"}`), srcJSON, encUnknown},
		{"json utf-16", "tpl.json", []byte{0xFF, 0xFE, '{', 0, '}', 0}, srcJSON, encUTF16LittleEndian},
		{"not json", "notes.json", []byte("hello"), srcNone, encUnknown},
		{"unknown extension", "notes.txt", []byte("<p>a</p>"), srcNone, encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, enc := detectSource(tt.file, tt.head)
			if kind != tt.wantKind || enc != tt.wantEnc {
				t.Errorf("detectSource() = (%s, %d), want (%s, %d)", kind, enc, tt.wantKind, tt.wantEnc)
			}
		})
	}
}

func TestHTMLReader(t *testing.T) {
	encoded, err := japanese.EUCJP.NewEncoder().String("<p>セール</p>")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("forced", func(t *testing.T) {
		out, err := io.ReadAll(htmlReader(bytes.NewReader([]byte(encoded)), japanese.EUCJP))
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != "<p>セール</p>" {
			t.Errorf("decoded = %q", out)
		}
	})

	t.Run("ascii untouched", func(t *testing.T) {
		out, err := io.ReadAll(htmlReader(bytes.NewReader([]byte("<p>plain</p>")), nil))
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != "<p>plain</p>" {
			t.Errorf("decoded = %q", out)
		}
	})
}
