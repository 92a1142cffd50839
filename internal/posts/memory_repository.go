package posts

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

// MemoryRepository keeps posts in memory for tests and ephemeral deployments.
type MemoryRepository struct {
	mu       sync.RWMutex
	meta     []interfaces.PostMeta
	markdown map[string]string
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository seeds the repository with posts.
func NewMemoryRepository(seed ...interfaces.Post) *MemoryRepository {
	repo := &MemoryRepository{markdown: make(map[string]string)}
	for _, post := range seed {
		post = Clean(post)
		repo.meta = append(repo.meta, post.Meta())
		if post.Markdown != "" {
			repo.markdown[post.Slug] = post.Markdown + "\n"
		}
	}
	repo.meta = SortByDateDesc(dropEmptySlugs(repo.meta))
	return repo
}

// ListMeta returns a copy of the stored listing.
func (r *MemoryRepository) ListMeta(context.Context) ([]interfaces.PostMeta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]interfaces.PostMeta{}, r.meta...), nil
}

// GetMeta returns a single post.
func (r *MemoryRepository) GetMeta(ctx context.Context, slug string) (*interfaces.PostMeta, error) {
	posts, _ := r.ListMeta(ctx)
	return findMeta(posts, strings.TrimSpace(slug))
}

// SaveMeta replaces the listing.
func (r *MemoryRepository) SaveMeta(_ context.Context, posts []interfaces.PostMeta) error {
	normalized := make([]interfaces.PostMeta, 0, len(posts))
	for _, post := range posts {
		normalized = append(normalized, CleanMeta(post))
	}
	r.mu.Lock()
	r.meta = SortByDateDesc(normalized)
	r.mu.Unlock()
	return nil
}

// ReadMarkdown returns "" for unknown slugs.
func (r *MemoryRepository) ReadMarkdown(_ context.Context, slug string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.markdown[slug], nil
}

// WriteMarkdown stores the trimmed body plus a trailing newline.
func (r *MemoryRepository) WriteMarkdown(_ context.Context, slug, markdown string) error {
	if !IsValidSlug(slug) {
		return InvalidSlugError(slug)
	}
	r.mu.Lock()
	r.markdown[slug] = strings.TrimSpace(markdown) + "\n"
	r.mu.Unlock()
	return nil
}

// DeleteMarkdown drops the body for slug.
func (r *MemoryRepository) DeleteMarkdown(_ context.Context, slug string) error {
	r.mu.Lock()
	delete(r.markdown, slug)
	r.mu.Unlock()
	return nil
}
