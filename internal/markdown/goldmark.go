package markdown

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

// EngineGoldmark names the CommonMark renderer backed by goldmark.
const EngineGoldmark = "goldmark"

// GoldmarkOptions tunes the goldmark engine.
type GoldmarkOptions struct {
	// Extensions lists goldmark extensions by name. Empty selects gfm,
	// linkify and tasklist.
	Extensions []string
	HardWraps  bool
}

// GoldmarkRenderer renders full CommonMark through goldmark and scrubs the
// output with a bluemonday UGC policy. Heading anchors come from the same
// allocator as the builtin engine, so Headings ids line up with the emitted
// h2/h3 ids.
type GoldmarkRenderer struct {
	engine goldmark.Markdown
	policy *bluemonday.Policy
}

var _ interfaces.MarkdownRenderer = (*GoldmarkRenderer)(nil)

// NewGoldmarkRenderer constructs the goldmark engine once; Render is safe for
// concurrent use.
func NewGoldmarkRenderer(opts GoldmarkOptions) *GoldmarkRenderer {
	rendererOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
	}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(html.WithHardWraps()))
	}

	return &GoldmarkRenderer{
		engine: goldmark.New(rendererOptions...),
		policy: newSanitizePolicy(),
	}
}

// Render converts markdown to sanitised HTML. Conversion errors degrade to the
// escaped source wrapped in a paragraph.
func (g *GoldmarkRenderer) Render(markdown string) string {
	source := []byte(strings.ReplaceAll(markdown, "\r\n", "\n"))
	ctx := parser.NewContext(parser.WithIDs(newGoldmarkIDs()))

	var buf bytes.Buffer
	if err := g.engine.Convert(source, &buf, parser.WithContext(ctx)); err != nil {
		return "<p>" + EscapeHTML(markdown) + "</p>"
	}

	return g.policy.Sanitize(buf.String())
}

// Headings satisfies interfaces.MarkdownRenderer using the shared extractor.
func (g *GoldmarkRenderer) Headings(markdown string) []interfaces.Heading {
	return ExtractHeadings(markdown)
}

func newSanitizePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("target").Matching(bluemonday.Paragraph).OnElements("a")
	policy.AllowAttrs("class").OnElements("code")
	return policy
}

// goldmarkIDs adapts HeadingIDs to goldmark's parser.IDs contract.
type goldmarkIDs struct {
	ids *HeadingIDs
}

func newGoldmarkIDs() *goldmarkIDs {
	return &goldmarkIDs{ids: NewHeadingIDs()}
}

func (g *goldmarkIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(g.ids.Next(string(value)))
}

func (g *goldmarkIDs) Put(value []byte) {
	g.ids.Reserve(string(value))
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}
