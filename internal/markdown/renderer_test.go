package markdown

import (
	"io"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestToHTMLHeadingsAndParagraphs(t *testing.T) {
	got := ToHTML("# 标题\n\n正文")
	if !strings.Contains(got, "<h1>标题</h1>") || !strings.Contains(got, "<p>正文</p>") {
		t.Fatalf("unexpected html: %q", got)
	}
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	got := ToHTML("<script>alert(1)</script>")
	if !strings.Contains(got, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("expected escaped script, got %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Fatalf("raw script tag leaked: %q", got)
	}
}

func TestToHTMLList(t *testing.T) {
	got := ToHTML("- a\n- b")
	want := "<ul>\n<li>a</li>\n<li>b</li>\n</ul>"
	if got != want {
		t.Fatalf("ToHTML = %q, want %q", got, want)
	}
}

func TestToHTMLHeadingIDs(t *testing.T) {
	if got := ToHTML("## 目录标题"); got != `<h2 id="目录标题">目录标题</h2>` {
		t.Fatalf("unexpected heading html: %q", got)
	}
	got := ToHTML("## X\n## X\n### **Deep**")
	want := `<h2 id="x">X</h2>` + "\n" + `<h2 id="x-2">X</h2>` + "\n" + `<h3 id="deep"><strong>Deep</strong></h3>`
	if got != want {
		t.Fatalf("ToHTML = %q, want %q", got, want)
	}
}

func TestToHTMLBlocks(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"blockquote", "> quote *me*", "<blockquote>quote <em>me</em></blockquote>"},
		{"star list", "* item", "<ul>\n<li>item</li>\n</ul>"},
		{"emphasis is not a list", "*emph*", "<p><em>emph</em></p>"},
		{"list closes before paragraph", "- a\ntext", "<ul>\n<li>a</li>\n</ul>\n<p>text</p>"},
		{"blank line closes list", "- a\n\n- b", "<ul>\n<li>a</li>\n</ul>\n<ul>\n<li>b</li>\n</ul>"},
		{"lines are not merged", "one\ntwo", "<p>one</p>\n<p>two</p>"},
		{"crlf", "## A\r\nbody", `<h2 id="a">A</h2>` + "\n<p>body</p>"},
		{"indented paragraph is trimmed", "   spaced   ", "<p>spaced</p>"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		if got := ToHTML(tc.in); got != tc.want {
			t.Fatalf("%s: ToHTML = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestToHTMLCodeFences(t *testing.T) {
	got := ToHTML("- a\n```go\n<b>## not heading</b>\n- not list\n```\nafter")
	want := "<ul>\n<li>a</li>\n</ul>\n<pre><code>&lt;b&gt;## not heading&lt;/b&gt;\n- not list</code></pre>\n<p>after</p>"
	if got != want {
		t.Fatalf("ToHTML = %q, want %q", got, want)
	}
}

func TestToHTMLFlushesUnterminatedFence(t *testing.T) {
	if got := ToHTML("```\ncode"); got != "<pre><code>code</code></pre>" {
		t.Fatalf("unexpected html: %q", got)
	}
}

func TestRendererSatisfiesContract(t *testing.T) {
	r := NewRenderer()
	if r.Render("## A") != ToHTML("## A") {
		t.Fatalf("Render should delegate to ToHTML")
	}
	if len(r.Headings("## A")) != 1 {
		t.Fatalf("Headings should delegate to ExtractHeadings")
	}
}

var allowedTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "p": true, "ul": true, "li": true,
	"pre": true, "code": true, "blockquote": true, "strong": true, "em": true, "a": true,
}

var allowedAttrs = map[string]bool{"id": true, "href": true, "target": true, "rel": true}

func TestToHTMLEmitsOnlyKnownMarkup(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"# <img src=x onerror=alert(1)>",
		"## \"><svg onload=alert(1)>",
		"- [x](javascript:alert(1))",
		"> [a](\" onmouseover=\"x)",
		"[**b**](https://example.com/?a=1&b=<2>)",
		"```\n</code></pre><script>\n",
		"*<i>*  **<u>**  `<s>`",
	}
	for _, in := range inputs {
		assertKnownMarkup(t, in, ToHTML(in))
	}
}

func assertKnownMarkup(t *testing.T, input, out string) {
	t.Helper()
	z := html.NewTokenizer(strings.NewReader(out))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				t.Fatalf("tokenize %q: %v", input, z.Err())
			}
			return
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if !allowedTags[tok.Data] {
				t.Fatalf("input %q produced tag <%s> in %q", input, tok.Data, out)
			}
			for _, attr := range tok.Attr {
				if !allowedAttrs[attr.Key] {
					t.Fatalf("input %q produced attribute %s in %q", input, attr.Key, out)
				}
				if attr.Key == "href" && SanitizeURL(attr.Val) != attr.Val {
					t.Fatalf("input %q produced unsafe href %q", input, attr.Val)
				}
			}
		}
	}
}
