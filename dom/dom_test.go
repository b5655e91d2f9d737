package dom

import (
	"testing"

	"golang.org/x/net/html"
)

func mustParse(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := Parse(markup)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", markup, err)
	}
	return root
}

func TestParseRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello", "hello"},
		{"void without slash", "a<br/>b<br>c", "a<br>b<br>c"},
		{"closing br", "a</br>b", "a<br>b"},
		{"unbalanced", "<div><p>x</div>y", "<div><p>x</p></div>y"},
		{"unclosed inline", "<p><b>bold</p>", "<p><b>bold</b></p>"},
		{"attributes", `<img src="a.png" alt='x "y"'>`, `<img src="a.png" alt="x &quot;y&quot;">`},
		{"markup in attribute", `<img alt="<script>a&amp;b</script>">`, `<img alt="&lt;script&gt;a&amp;b&lt;/script&gt;">`},
		{"escaping", "1 &lt; 2 &amp; 3 &gt; 0", "1 &lt; 2 &amp; 3 &gt; 0"},
		{"nbsp", "a&nbsp;b", "a&nbsp;b"},
		{"ideographic space", "　見出し　", "　見出し　"},
		{"comment", "<!-- x -->y", "<!-- x -->y"},
		{"quotes in text", `"q" 'a'`, `"q" 'a'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderChildren(mustParse(t, tt.in)); got != tt.want {
				t.Errorf("round trip of %q = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPromoteTableSections(t *testing.T) {
	root := mustParse(t, `<table><colgroup><col width="10"></colgroup><thead><tr><th>h</th></tr></thead><tr><td>a</td></tr><tfoot><tr><td>f</td></tr></tfoot></table>`)
	PromoteTableSections(root)
	want := `<table><tr><th>h</th></tr><tr><td>a</td></tr><tr><td>f</td></tr></table>`
	if got := RenderChildren(root); got != want {
		t.Errorf("PromoteTableSections() = %q, want %q", got, want)
	}
}

func TestUnwrapAndWrap(t *testing.T) {
	root := mustParse(t, `<div><span>a</span><b>b</b></div>`)
	div := root.FirstChild
	Unwrap(div.FirstChild)
	if got := RenderChildren(root); got != `<div>a<b>b</b></div>` {
		t.Fatalf("Unwrap() = %q", got)
	}
	Wrap(div.LastChild, NewElement("u"))
	if got := RenderChildren(root); got != `<div>a<u><b>b</b></u></div>` {
		t.Fatalf("Wrap() = %q", got)
	}
	Unwrap(div)
	if got := RenderChildren(root); got != `a<u><b>b</b></u>` {
		t.Fatalf("Unwrap(div) = %q", got)
	}
}

func TestAttributes(t *testing.T) {
	n := NewElement("a")
	SetAttr(n, "href", "x")
	SetAttr(n, "href", "y")
	SetAttr(n, "target", "_top")
	if Attr(n, "href") != "y" || len(n.Attr) != 2 {
		t.Fatalf("SetAttr() attrs = %v", n.Attr)
	}
	RemoveAttr(n, "href")
	if _, ok := LookupAttr(n, "href"); ok {
		t.Error("RemoveAttr() did not remove href")
	}
	Rename(n, "b")
	if Render(n) != `<b target="_top"></b>` {
		t.Errorf("Render() = %q", Render(n))
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"<p></p>", true},
		{"<p> \n </p>", true},
		{"<p><span> </span></p>", true},
		{"<p><br></p>", false},
		{"<p>&nbsp;</p>", false},
		{"<p>　</p>", false},
		{`<p><img src="a"></p>`, false},
		{"<div><!-- c --></div>", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			root := mustParse(t, tt.in)
			if got := IsEmpty(root.FirstChild); got != tt.want {
				t.Errorf("IsEmpty(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOnlyElementChild(t *testing.T) {
	root := mustParse(t, `<a href="x"> <img src="i"> </a><a><img src="i">t</a><p><b></b><i></i></p>`)
	if c := OnlyElementChild(root.FirstChild); !IsElement(c, "img") {
		t.Errorf("expected img child, got %v", c)
	}
	if c := OnlyElementChild(root.FirstChild.NextSibling); c != nil {
		t.Error("text content must disqualify single child")
	}
	if c := OnlyElementChild(root.LastChild); c != nil {
		t.Error("two elements must disqualify single child")
	}
}

func TestText(t *testing.T) {
	root := mustParse(t, `<p>a<b>b<i>c</i></b><!-- no -->d</p>`)
	if got := Text(root); got != "abcd" {
		t.Errorf("Text() = %q, want abcd", got)
	}
}

func TestIsBlock(t *testing.T) {
	for _, name := range []string{"p", "div", "h3", "table", "ul", "center"} {
		if !IsBlock(name) {
			t.Errorf("IsBlock(%q) = false", name)
		}
	}
	for _, name := range []string{"b", "font", "a", "img", "br", "span"} {
		if IsBlock(name) {
			t.Errorf("IsBlock(%q) = true", name)
		}
	}
}
