package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// fallbackHeadingID is used when a heading slugifies to an empty string.
const fallbackHeadingID = "section"

var (
	stripLinkPattern   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	stripCodePattern   = regexp.MustCompile("`([^`]+)`")
	stripStrongPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	stripEmPattern     = regexp.MustCompile(`\*([^*]+)\*`)
)

// StripInline removes inline Markdown syntax from text, keeping link labels
// and the content of code and emphasis spans. The result is trimmed.
func StripInline(text string) string {
	out := stripLinkPattern.ReplaceAllString(text, "${1}")
	out = stripCodePattern.ReplaceAllString(out, "${1}")
	out = stripStrongPattern.ReplaceAllString(out, "${1}")
	out = stripEmPattern.ReplaceAllString(out, "${1}")
	return strings.TrimFunc(out, isSlugSpace)
}

// Slugify converts heading text into a URL fragment safe identifier. Only
// ASCII word characters, CJK ideographs (U+4E00..U+9FA5) and hyphens survive;
// whitespace runs become a single hyphen. Empty results yield "section".
func Slugify(text string) string {
	lowered := strings.ToLower(StripInline(text))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if keepSlugRune(r) {
			b.WriteRune(r)
		}
	}

	slug := strings.Join(strings.FieldsFunc(b.String(), isSlugSpace), "-")
	slug = collapseHyphens(slug)
	if slug == "" {
		return fallbackHeadingID
	}
	return slug
}

func keepSlugRune(r rune) bool {
	switch {
	case r == '-' || r == '_':
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 0x4e00 && r <= 0x9fa5:
		return true
	default:
		return isSlugSpace(r)
	}
}

// isSlugSpace reports whether r is whitespace in the ECMAScript sense. It
// differs from unicode.IsSpace on U+0085 (not space) and U+FEFF (space), so
// anchors stay identical to the ones the web client generates.
func isSlugSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00a0, 0x1680,
		0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}

func collapseHyphens(value string) string {
	if !strings.Contains(value, "--") {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	prev := false
	for _, r := range value {
		if r == '-' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HeadingIDs allocates unique heading anchors within a single document. The
// first use of a base slug yields the slug itself, the Nth use yields
// "slug-N". When that id was already emitted (a heading literally titled
// "a-2" after two "a" headings) N keeps growing until the id is free. A
// HeadingIDs value must not be shared across documents.
type HeadingIDs struct {
	seen    map[string]int
	emitted map[string]struct{}
}

// NewHeadingIDs returns an empty allocator.
func NewHeadingIDs() *HeadingIDs {
	return &HeadingIDs{seen: make(map[string]int), emitted: make(map[string]struct{})}
}

// Next slugifies raw and returns the next unique id for it.
func (h *HeadingIDs) Next(raw string) string {
	base := Slugify(raw)
	count := h.seen[base]
	id := base
	if count > 0 {
		id = base + "-" + strconv.Itoa(count+1)
	}
	for {
		if _, taken := h.emitted[id]; !taken {
			break
		}
		count++
		id = base + "-" + strconv.Itoa(count+1)
	}
	h.seen[base] = count + 1
	h.emitted[id] = struct{}{}
	return id
}

// Reserve marks id as used so Next never hands it out. goldmark calls it for
// explicit heading attributes.
func (h *HeadingIDs) Reserve(id string) {
	h.seen[id]++
	h.emitted[id] = struct{}{}
}
