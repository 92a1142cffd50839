package markdown

import (
	"strings"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

const codeFence = "```"

// splitLines normalises CRLF line endings and splits the document into lines.
func splitLines(markdown string) []string {
	return strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
}

// ExtractHeadings returns the level 2 and 3 headings of the document in order.
// Lines inside fenced code blocks are ignored; an unterminated fence disables
// detection until the end of the document. Level 1 headings are not part of
// the table of contents.
func ExtractHeadings(markdown string) []interfaces.Heading {
	ids := NewHeadingIDs()
	headings := []interfaces.Heading{}
	inCode := false

	for _, line := range splitLines(markdown) {
		if strings.HasPrefix(line, codeFence) {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}

		trimmed := strings.TrimSpace(line)
		level, rest := 0, ""
		switch {
		case strings.HasPrefix(trimmed, "## "):
			level, rest = 2, trimmed[3:]
		case strings.HasPrefix(trimmed, "### "):
			level, rest = 3, trimmed[4:]
		default:
			continue
		}

		text := StripInline(rest)
		if text == "" {
			continue
		}
		headings = append(headings, interfaces.Heading{
			Level: level,
			Text:  text,
			ID:    ids.Next(text),
		})
	}

	return headings
}
