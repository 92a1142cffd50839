package posts

import (
	"context"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

// Repository persists post metadata and Markdown bodies.
type Repository interface {
	// ListMeta returns every post with a slug, newest first.
	ListMeta(ctx context.Context) ([]interfaces.PostMeta, error)
	// GetMeta returns the post or a not-found error.
	GetMeta(ctx context.Context, slug string) (*interfaces.PostMeta, error)
	// SaveMeta replaces the stored listing.
	SaveMeta(ctx context.Context, posts []interfaces.PostMeta) error
	// ReadMarkdown returns "" when the post has no body yet.
	ReadMarkdown(ctx context.Context, slug string) (string, error)
	WriteMarkdown(ctx context.Context, slug, markdown string) error
	// DeleteMarkdown is a no-op for missing bodies.
	DeleteMarkdown(ctx context.Context, slug string) error
}

// ChangeType enumerates post change events.
type ChangeType string

const (
	// ChangeCreated indicates a new post was saved.
	ChangeCreated ChangeType = "created"
	// ChangeUpdated indicates an existing post was modified.
	ChangeUpdated ChangeType = "updated"
	// ChangeDeleted indicates a post was removed.
	ChangeDeleted ChangeType = "deleted"
	// ChangeCleared indicates local drafts were discarded.
	ChangeCleared ChangeType = "cleared"
	// ChangeReloaded indicates the content root changed on disk.
	ChangeReloaded ChangeType = "reloaded"
)

// ChangeEvent is the posts-updated notification.
type ChangeEvent struct {
	Type ChangeType
	Slug string
}

func findMeta(posts []interfaces.PostMeta, slug string) (*interfaces.PostMeta, error) {
	index := IndexOf(posts, slug)
	if index < 0 {
		return nil, NotFoundError(slug)
	}
	meta := posts[index]
	return &meta, nil
}

func dropEmptySlugs(posts []interfaces.PostMeta) []interfaces.PostMeta {
	out := make([]interfaces.PostMeta, 0, len(posts))
	for _, post := range posts {
		if post.Slug != "" {
			out = append(out, post)
		}
	}
	return out
}
