package posts

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

// DefaultReadingTime is used when a post has no positive reading time.
const DefaultReadingTime = 5

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// IsValidSlug reports whether the trimmed slug only uses lowercase ASCII
// letters, digits and hyphens.
func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(strings.TrimSpace(slug))
}

// NormalizeMeta builds a PostMeta from loosely typed JSON input. Scalars are
// coerced to trimmed strings and a missing or non-positive reading time
// becomes DefaultReadingTime.
func NormalizeMeta(input map[string]any) interfaces.PostMeta {
	return interfaces.PostMeta{
		Slug:        stringField(input, "slug"),
		Title:       stringField(input, "title"),
		Tag:         stringField(input, "tag"),
		Date:        stringField(input, "date"),
		Excerpt:     stringField(input, "excerpt"),
		Description: stringField(input, "description"),
		ReadingTime: readingTime(numberField(input, "readingTime")),
	}
}

// NormalizePost is NormalizeMeta plus the trimmed markdown body.
func NormalizePost(input map[string]any) interfaces.Post {
	return interfaces.Post{
		PostMeta: NormalizeMeta(input),
		Markdown: stringField(input, "markdown"),
	}
}

// Clean applies the normalisation rules to an already typed post.
func Clean(post interfaces.Post) interfaces.Post {
	post.PostMeta = CleanMeta(post.PostMeta)
	post.Markdown = strings.TrimSpace(post.Markdown)
	return post
}

// CleanMeta applies the normalisation rules to an already typed meta record.
func CleanMeta(meta interfaces.PostMeta) interfaces.PostMeta {
	meta.Slug = strings.TrimSpace(meta.Slug)
	meta.Title = strings.TrimSpace(meta.Title)
	meta.Tag = strings.TrimSpace(meta.Tag)
	meta.Date = strings.TrimSpace(meta.Date)
	meta.Excerpt = strings.TrimSpace(meta.Excerpt)
	meta.Description = strings.TrimSpace(meta.Description)
	meta.ReadingTime = readingTime(meta.ReadingTime)
	return meta
}

func readingTime(value float64) float64 {
	if value > 0 {
		return value
	}
	return DefaultReadingTime
}

func stringField(input map[string]any, key string) string {
	switch v := input[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return ""
		}
		return strings.TrimSpace(v.String())
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return ""
		}
		return strconv.Itoa(v)
	case bool:
		if !v {
			return ""
		}
		return "true"
	default:
		return ""
	}
}

func numberField(input map[string]any, key string) float64 {
	switch v := input[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}
