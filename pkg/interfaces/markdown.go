package interfaces

import "context"

// Heading is a table-of-contents entry extracted from a Markdown document.
// Level is 2 or 3; ID is the anchor rendered on the matching heading element.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// MarkdownRenderer converts Markdown into injectable HTML and extracts the
// headings used for the table of contents. Implementations never fail: any
// input yields a best-effort result.
type MarkdownRenderer interface {
	Render(markdown string) string
	Headings(markdown string) []Heading
}

// RenderedDocument bundles the HTML body and its table of contents.
type RenderedDocument struct {
	HTML     string    `json:"html"`
	Headings []Heading `json:"headings"`
}

// MarkdownService is the context-aware entry point used by HTTP handlers and
// CLIs. It selects the configured engine and records render telemetry.
type MarkdownService interface {
	Render(ctx context.Context, markdown string) (*RenderedDocument, error)
	Engine() string
}
