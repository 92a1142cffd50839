package markdown

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter holds the post metadata recognised in a Markdown file header.
type FrontMatter struct {
	Title       string
	Slug        string
	Tag         string
	Date        string
	Excerpt     string
	Description string
	ReadingTime float64
	Raw         map[string]any
}

// ParseFrontMatter extracts metadata and the Markdown body from source. Files
// without a frontmatter block return an empty FrontMatter and the full source.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

type frontMatterEnvelope struct {
	Title       string         `yaml:"title"`
	Slug        string         `yaml:"slug"`
	Tag         string         `yaml:"tag"`
	Tags        []string       `yaml:"tags"`
	Date        any            `yaml:"date"`
	Excerpt     string         `yaml:"excerpt"`
	Summary     string         `yaml:"summary"`
	Description string         `yaml:"description"`
	ReadingTime any            `yaml:"readingTime"`
	Custom      map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) FrontMatter {
	fm := FrontMatter{
		Title:       strings.TrimSpace(env.Title),
		Slug:        strings.TrimSpace(env.Slug),
		Tag:         strings.TrimSpace(env.Tag),
		Date:        dateString(env.Date),
		Excerpt:     strings.TrimSpace(env.Excerpt),
		Description: strings.TrimSpace(env.Description),
		ReadingTime: numberValue(env.ReadingTime),
		Raw:         cloneMap(env.Custom),
	}
	if fm.Tag == "" {
		for _, tag := range env.Tags {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				fm.Tag = trimmed
				break
			}
		}
	}
	if fm.Excerpt == "" {
		fm.Excerpt = strings.TrimSpace(env.Summary)
	}
	return fm
}

func dateString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return v.UTC().Format("2006-01-02")
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func numberValue(value any) float64 {
	switch v := value.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func cloneMap(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
