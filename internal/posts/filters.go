package posts

import (
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

const (
	// TagAll matches every tag in Filter.
	TagAll = "all"
	// DefaultPageSize is the page size used by listing views.
	DefaultPageSize = 9
	// DefaultSuggestionLimit caps search suggestions.
	DefaultSuggestionLimit = 6

	SortDateDesc = "date_desc"
	SortReadAsc  = "read_asc"
	SortReadDesc = "read_desc"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// FilterOptions narrows a post listing.
type FilterOptions struct {
	Tag     string
	Keyword string
}

// NormalizeKeyword trims and lower-cases a search keyword.
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// SortByDateDesc returns a copy sorted newest first. The sort is stable and
// posts whose dates cannot be parsed keep their relative position.
func SortByDateDesc(posts []interfaces.PostMeta) []interfaces.PostMeta {
	out := append([]interfaces.PostMeta(nil), posts...)
	stamps := make(map[string]time.Time, len(out))
	for _, post := range out {
		if t, ok := parseDate(post.Date); ok {
			stamps[post.Date] = t
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, okI := stamps[out[i].Date]
		tj, okJ := stamps[out[j].Date]
		if !okI || !okJ {
			return false
		}
		return ti.After(tj)
	})
	return out
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractTags returns the distinct tags in first-seen order.
func ExtractTags(posts []interfaces.PostMeta) []string {
	seen := make(map[string]struct{}, len(posts))
	tags := []string{}
	for _, post := range posts {
		if _, ok := seen[post.Tag]; ok {
			continue
		}
		seen[post.Tag] = struct{}{}
		tags = append(tags, post.Tag)
	}
	return tags
}

// Filter keeps posts matching the tag (empty or "all" matches any) whose
// title, excerpt or description contains the keyword, case-insensitively.
func Filter(posts []interfaces.PostMeta, opts FilterOptions) []interfaces.PostMeta {
	keyword := NormalizeKeyword(opts.Keyword)
	tag := opts.Tag
	out := []interfaces.PostMeta{}
	for _, post := range posts {
		if tag != "" && tag != TagAll && post.Tag != tag {
			continue
		}
		if keyword != "" {
			haystack := strings.ToLower(post.Title + " " + post.Excerpt + " " + post.Description)
			if !strings.Contains(haystack, keyword) {
				continue
			}
		}
		out = append(out, post)
	}
	return out
}

// Suggestions returns at most limit filtered posts.
func Suggestions(posts []interfaces.PostMeta, opts FilterOptions, limit int) []interfaces.PostMeta {
	return head(Filter(posts, opts), limit)
}

// Sort orders posts by reading time (read_asc, read_desc) or by date, newest
// first, for any other mode.
func Sort(posts []interfaces.PostMeta, mode string) []interfaces.PostMeta {
	out := append([]interfaces.PostMeta(nil), posts...)
	switch mode {
	case SortReadAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ReadingTime < out[j].ReadingTime })
		return out
	case SortReadDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ReadingTime > out[j].ReadingTime })
		return out
	default:
		return SortByDateDesc(out)
	}
}

// Paginate returns the first page*pageSize posts. Listing views load pages
// cumulatively, so page 2 includes page 1. Both arguments are clamped to 1.
func Paginate(posts []interfaces.PostMeta, page, pageSize int) []interfaces.PostMeta {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return head(posts, page*pageSize)
}

// Related returns up to limit other posts sharing tag.
func Related(posts []interfaces.PostMeta, slug, tag string, limit int) []interfaces.PostMeta {
	out := []interfaces.PostMeta{}
	for _, post := range posts {
		if post.Slug != slug && post.Tag == tag {
			out = append(out, post)
		}
	}
	return head(out, limit)
}

// IndexOf returns the position of slug in posts or -1.
func IndexOf(posts []interfaces.PostMeta, slug string) int {
	for i, post := range posts {
		if post.Slug == slug {
			return i
		}
	}
	return -1
}

// Adjacent returns the neighbours of slug in a date-desc listing: previous is
// the older post after it, next the newer one before it.
func Adjacent(posts []interfaces.PostMeta, slug string) interfaces.AdjacentPosts {
	index := IndexOf(posts, slug)
	if index < 0 {
		return interfaces.AdjacentPosts{}
	}
	var adjacent interfaces.AdjacentPosts
	if index+1 < len(posts) {
		previous := posts[index+1]
		adjacent.Previous = &previous
	}
	if index > 0 {
		next := posts[index-1]
		adjacent.Next = &next
	}
	return adjacent
}

func head(posts []interfaces.PostMeta, limit int) []interfaces.PostMeta {
	if limit < 0 {
		limit = 0
	}
	if len(posts) > limit {
		return posts[:limit]
	}
	return posts
}
