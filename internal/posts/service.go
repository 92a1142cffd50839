package posts

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

const (
	// DefaultRelatedLimit is used when a related-posts request has no limit.
	DefaultRelatedLimit = 3
	// MaxRelatedLimit caps related-posts requests.
	MaxRelatedLimit = 20
)

// SaveResult reports whether an upsert created a new post.
type SaveResult struct {
	Post    interfaces.Post
	Created bool
}

// Service applies the public read rules and admin write rules on top of a
// Repository. Writes are serialised so concurrent saves cannot drop each
// other's listing entries.
type Service struct {
	repo        Repository
	logger      interfaces.Logger
	broadcaster *Broadcaster
	writeMu     sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBroadcaster shares a broadcaster with other publishers.
func WithBroadcaster(b *Broadcaster) ServiceOption {
	return func(s *Service) {
		if b != nil {
			s.broadcaster = b
		}
	}
}

// NewService wraps repo.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:        repo,
		logger:      logging.NoOp(),
		broadcaster: NewBroadcaster(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository exposes the underlying store.
func (s *Service) Repository() Repository {
	return s.repo
}

// Subscribe streams change events produced by Save and Delete.
func (s *Service) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.broadcaster.Subscribe(ctx)
}

// List returns every post, newest first.
func (s *Service) List(ctx context.Context) ([]interfaces.PostMeta, error) {
	return s.repo.ListMeta(ctx)
}

// Tags returns the distinct non-empty tags in listing order.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	posts, err := s.repo.ListMeta(ctx)
	if err != nil {
		return nil, err
	}
	tags := []string{}
	for _, tag := range ExtractTags(posts) {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// Get returns a post with its body. Malformed slugs read as not found.
func (s *Service) Get(ctx context.Context, slug string) (*interfaces.Post, error) {
	slug = strings.TrimSpace(slug)
	if !IsValidSlug(slug) {
		return nil, NotFoundError(slug)
	}
	meta, err := s.repo.GetMeta(ctx, slug)
	if err != nil {
		return nil, err
	}
	markdown, err := s.repo.ReadMarkdown(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &interfaces.Post{PostMeta: *meta, Markdown: markdown}, nil
}

// Related lists posts sharing tag with slug. An empty tag falls back to the
// post's own tag; limit is clamped to [1, MaxRelatedLimit].
func (s *Service) Related(ctx context.Context, slug, tag string, limit int) ([]interfaces.PostMeta, error) {
	slug = strings.TrimSpace(slug)
	posts, err := s.repo.ListMeta(ctx)
	if err != nil {
		return nil, err
	}
	current, err := findMeta(posts, slug)
	if err != nil {
		return nil, err
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = current.Tag
	}
	return Related(posts, slug, tag, ClampRelatedLimit(limit)), nil
}

// ClampRelatedLimit bounds a requested related-posts limit.
func ClampRelatedLimit(limit int) int {
	switch {
	case limit < 1:
		return 1
	case limit > MaxRelatedLimit:
		return MaxRelatedLimit
	default:
		return limit
	}
}

// Adjacent returns the chronological neighbours of slug.
func (s *Service) Adjacent(ctx context.Context, slug string) (interfaces.AdjacentPosts, error) {
	slug = strings.TrimSpace(slug)
	posts, err := s.repo.ListMeta(ctx)
	if err != nil {
		return interfaces.AdjacentPosts{}, err
	}
	if IndexOf(posts, slug) < 0 {
		return interfaces.AdjacentPosts{}, NotFoundError(slug)
	}
	return Adjacent(posts, slug), nil
}

// ListFull returns every post with its body.
func (s *Service) ListFull(ctx context.Context) ([]interfaces.Post, error) {
	posts, err := s.repo.ListMeta(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.Post, 0, len(posts))
	for _, meta := range posts {
		markdown, err := s.repo.ReadMarkdown(ctx, meta.Slug)
		if err != nil {
			return nil, err
		}
		out = append(out, interfaces.Post{PostMeta: meta, Markdown: markdown})
	}
	return out, nil
}

// Save validates post and creates or replaces it.
func (s *Service) Save(ctx context.Context, post interfaces.Post) (*SaveResult, error) {
	post = Clean(post)
	if err := Validate(post); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	posts, err := s.repo.ListMeta(ctx)
	if err != nil {
		return nil, err
	}
	index := IndexOf(posts, post.Slug)
	created := index < 0
	if created {
		posts = append(posts, post.Meta())
	} else {
		posts[index] = post.Meta()
	}

	if err := s.repo.SaveMeta(ctx, posts); err != nil {
		return nil, err
	}
	if err := s.repo.WriteMarkdown(ctx, post.Slug, post.Markdown); err != nil {
		return nil, err
	}

	change := ChangeUpdated
	if created {
		change = ChangeCreated
	}
	logging.WithPostContext(s.logger, post.Slug, string(change)).Info("posts.save.success")
	s.broadcaster.Broadcast(ChangeEvent{Type: change, Slug: post.Slug})
	return &SaveResult{Post: post, Created: created}, nil
}

// Delete removes a post and its body.
func (s *Service) Delete(ctx context.Context, slug string) error {
	slug = strings.TrimSpace(slug)
	if !IsValidSlug(slug) {
		return InvalidSlugError(slug)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	posts, err := s.repo.ListMeta(ctx)
	if err != nil {
		return err
	}
	index := IndexOf(posts, slug)
	if index < 0 {
		return NotFoundError(slug)
	}
	posts = append(posts[:index], posts[index+1:]...)

	if err := s.repo.SaveMeta(ctx, posts); err != nil {
		return err
	}
	if err := s.repo.DeleteMarkdown(ctx, slug); err != nil {
		return err
	}

	logging.WithPostContext(s.logger, slug, string(ChangeDeleted)).Info("posts.delete.success")
	s.broadcaster.Broadcast(ChangeEvent{Type: ChangeDeleted, Slug: slug})
	return nil
}
