package markdown

import (
	"regexp"
	"strings"
)

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)

	codeSpanPattern   = regexp.MustCompile("`([^`]+)`")
	strongSpanPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	emSpanPattern     = regexp.MustCompile(`\*([^*]+)\*`)
	linkSpanPattern   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	safeURLPattern     = regexp.MustCompile(`(?i)^(https?:|mailto:|/|#)`)
	externalURLPattern = regexp.MustCompile(`(?i)^https?:`)
)

// EscapeHTML escapes the five HTML-significant characters.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// SanitizeURL returns the trimmed url when it uses http, https or mailto, or
// is an absolute path or fragment. Anything else is replaced with "#".
func SanitizeURL(url string) string {
	value := strings.TrimSpace(url)
	if safeURLPattern.MatchString(value) {
		return value
	}
	return "#"
}

// RenderInline converts inline spans (code, strong, emphasis, links) into HTML.
// The input is escaped first, so only the emitted tags are live markup.
// Unmatched delimiters are left as literal text.
func RenderInline(text string) string {
	html := EscapeHTML(text)
	html = codeSpanPattern.ReplaceAllString(html, "<code>${1}</code>")
	html = strongSpanPattern.ReplaceAllString(html, "<strong>${1}</strong>")
	html = emSpanPattern.ReplaceAllString(html, "<em>${1}</em>")
	return linkSpanPattern.ReplaceAllStringFunc(html, renderLink)
}

func renderLink(match string) string {
	parts := linkSpanPattern.FindStringSubmatch(match)
	if len(parts) != 3 {
		return match
	}
	label, href := parts[1], SanitizeURL(parts[2])

	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(href)
	b.WriteString(`"`)
	if externalURLPattern.MatchString(href) {
		b.WriteString(` target="_blank" rel="noreferrer"`)
	}
	b.WriteString(">")
	b.WriteString(label)
	b.WriteString("</a>")
	return b.String()
}
