package markdown

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

// EngineBuiltin names the line-scanning renderer.
const EngineBuiltin = "builtin"

var listItemPattern = regexp.MustCompile(`^[-*]\s+`)

// Renderer is the builtin engine. It is stateless and safe for concurrent use.
type Renderer struct{}

var _ interfaces.MarkdownRenderer = Renderer{}

// NewRenderer returns the builtin renderer.
func NewRenderer() Renderer {
	return Renderer{}
}

// Render satisfies interfaces.MarkdownRenderer.
func (Renderer) Render(markdown string) string {
	return ToHTML(markdown)
}

// Headings satisfies interfaces.MarkdownRenderer.
func (Renderer) Headings(markdown string) []interfaces.Heading {
	return ExtractHeadings(markdown)
}

// ToHTML renders the document as a newline-joined sequence of block elements.
// Every line outside a code fence becomes at most one block; paragraphs and
// blockquotes are never merged across lines.
func ToHTML(markdown string) string {
	r := blockRenderer{ids: NewHeadingIDs()}
	for _, line := range splitLines(markdown) {
		r.line(line)
	}
	r.closeList()
	r.closeCode()
	return strings.Join(r.out, "\n")
}

type blockRenderer struct {
	out    []string
	ids    *HeadingIDs
	inList bool
	inCode bool
	code   []string
}

func (r *blockRenderer) line(line string) {
	if strings.HasPrefix(line, codeFence) {
		r.closeList()
		if r.inCode {
			r.closeCode()
		} else {
			r.inCode = true
		}
		return
	}

	if r.inCode {
		r.code = append(r.code, EscapeHTML(line))
		return
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		r.closeList()
		return
	}

	if loc := listItemPattern.FindStringIndex(trimmed); loc != nil {
		if !r.inList {
			r.out = append(r.out, "<ul>")
			r.inList = true
		}
		r.out = append(r.out, "<li>"+RenderInline(trimmed[loc[1]:])+"</li>")
		return
	}

	r.closeList()

	switch {
	case strings.HasPrefix(trimmed, "### "):
		text := trimmed[4:]
		r.out = append(r.out, `<h3 id="`+r.ids.Next(text)+`">`+RenderInline(text)+"</h3>")
	case strings.HasPrefix(trimmed, "## "):
		text := trimmed[3:]
		r.out = append(r.out, `<h2 id="`+r.ids.Next(text)+`">`+RenderInline(text)+"</h2>")
	case strings.HasPrefix(trimmed, "# "):
		r.out = append(r.out, "<h1>"+RenderInline(trimmed[2:])+"</h1>")
	case strings.HasPrefix(trimmed, "> "):
		r.out = append(r.out, "<blockquote>"+RenderInline(trimmed[2:])+"</blockquote>")
	default:
		r.out = append(r.out, "<p>"+RenderInline(trimmed)+"</p>")
	}
}

func (r *blockRenderer) closeList() {
	if r.inList {
		r.out = append(r.out, "</ul>")
		r.inList = false
	}
}

func (r *blockRenderer) closeCode() {
	if r.inCode {
		r.out = append(r.out, "<pre><code>"+strings.Join(r.code, "\n")+"</code></pre>")
		r.code = nil
		r.inCode = false
	}
}
