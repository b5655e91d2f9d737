package convert

import (
	"archive/zip"
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

type srcKind int

const (
	srcNone srcKind = iota
	srcHTML
	srcJSON
)

func (k srcKind) String() string {
	switch k {
	case srcHTML:
		return "html"
	case srcJSON:
		return "json"
	default:
		return "none"
	}
}

// sniffLen is how much of the file is looked at when guessing its kind and
// encoding.
const sniffLen = 1024

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

// detectUTF looks for byte order mark, longer marks are checked first since
// UTF-32LE mark starts with UTF-16LE one.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader strips byte order mark and converts input to UTF-8.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewDecoder())
	case encUnknown:
		return r
	default:
		// this should never happen
		panic("unexpected source encoding")
	}
}

// htmlReader converts HTML source without byte order mark to UTF-8. Forced
// charset wins, otherwise meta declarations and content are looked at.
// Pages exported from Japanese and Chinese back offices often come in
// Shift_JIS, EUC-JP or GB18030.
func htmlReader(r io.Reader, forced encoding.Encoding) io.Reader {
	if forced != nil {
		return transform.NewReader(r, forced.NewDecoder())
	}
	br := bufio.NewReaderSize(r, sniffLen)
	head, _ := br.Peek(sniffLen)
	enc, name, _ := charset.DetermineEncoding(head, "text/html")
	if name == "utf-8" || name == "windows-1252" && isASCII(head) {
		return br
	}
	return transform.NewReader(br, enc.NewDecoder())
}

func isASCII(buf []byte) bool {
	for _, b := range buf {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// kindByName classifies source by file extension.
func kindByName(name string) srcKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return srcHTML
	case ".json":
		return srcJSON
	}
	return srcNone
}

// detectSource checks extension and confirms that content looks like
// expected text: HTML is anything not recognized as binary, JSON must start
// with object or array.
func detectSource(name string, head []byte) (srcKind, srcEncoding) {
	kind := kindByName(name)
	if kind == srcNone {
		return srcNone, encUnknown
	}
	enc := detectUTF(head)
	if enc == encUnknown {
		if filetype.IsArchive(head) || filetype.IsImage(head) {
			return srcNone, encUnknown
		}
	}
	if kind == srcJSON {
		text := head
		if enc != encUnknown {
			decoded, err := io.ReadAll(io.LimitReader(selectReader(bytes.NewReader(head), enc), sniffLen))
			if err != nil && len(decoded) == 0 {
				return srcNone, encUnknown
			}
			text = decoded
		}
		text = bytes.TrimLeft(text, " \t\r\n")
		if len(text) > 0 && text[0] != '{' && text[0] != '[' {
			return srcNone, encUnknown
		}
	}
	return kind, enc
}

func isSourceFile(path string) (srcKind, srcEncoding, error) {
	if kindByName(path) == srcNone {
		return srcNone, encUnknown, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return srcNone, encUnknown, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return srcNone, encUnknown, err
	}
	kind, enc := detectSource(path, head[:n])
	return kind, enc, nil
}

func isSourceInArchive(f *zip.File) (srcKind, srcEncoding, error) {
	if kindByName(f.FileHeader.Name) == srcNone {
		return srcNone, encUnknown, nil
	}
	r, err := f.Open()
	if err != nil {
		return srcNone, encUnknown, err
	}
	defer r.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return srcNone, encUnknown, err
	}
	kind, enc := detectSource(f.FileHeader.Name, head[:n])
	return kind, enc, nil
}

// isArchiveFile reports whether path is zip archive, extension is checked
// first to avoid reading every file.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}
