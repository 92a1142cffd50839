package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"maps"
	"os"
	"sort"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// localEdits is the persisted draft overlay.
type localEdits struct {
	Upserts      map[string]interfaces.Post `json:"upserts"`
	DeletedSlugs []string                   `json:"deletedSlugs"`
}

func emptyEdits() *localEdits {
	return &localEdits{Upserts: map[string]interfaces.Post{}, DeletedSlugs: []string{}}
}

// clone copies the map and slice so a failed write can discard the mutation.
func (e *localEdits) clone() *localEdits {
	out := emptyEdits()
	maps.Copy(out.Upserts, e.Upserts)
	out.DeletedSlugs = append(out.DeletedSlugs, e.DeletedSlugs...)
	return out
}

func (e *localEdits) isDeleted(slug string) bool {
	for _, item := range e.DeletedSlugs {
		if item == slug {
			return true
		}
	}
	return false
}

func (e *localEdits) undelete(slug string) {
	kept := e.DeletedSlugs[:0]
	for _, item := range e.DeletedSlugs {
		if item != slug {
			kept = append(kept, item)
		}
	}
	e.DeletedSlugs = kept
}

// LocalSource overlays draft edits on a read-only content repository. Base
// listings and bodies are cached until Invalidate is called, typically by a
// posts.Watcher subscription.
type LocalSource struct {
	repo      posts.Repository
	editsPath string
	logger    interfaces.Logger

	mu      sync.Mutex
	base    []interfaces.PostMeta
	content map[string]string
	edits   *localEdits
}

var _ interfaces.PostSource = (*LocalSource)(nil)

// LocalOption configures a LocalSource.
type LocalOption func(*LocalSource)

// WithEditsPath persists draft edits to path. Without it edits live in memory.
func WithEditsPath(path string) LocalOption {
	return func(s *LocalSource) {
		s.editsPath = path
	}
}

// WithLocalLogger sets the module logger.
func WithLocalLogger(logger interfaces.Logger) LocalOption {
	return func(s *LocalSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLocalSource reads base posts from repo.
func NewLocalSource(repo posts.Repository, opts ...LocalOption) *LocalSource {
	s := &LocalSource{
		repo:    repo,
		logger:  logging.NoOp(),
		content: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invalidate drops the cached base listing and bodies.
func (s *LocalSource) Invalidate() {
	s.mu.Lock()
	s.base = nil
	s.content = make(map[string]string)
	s.mu.Unlock()
}

// Watch invalidates the cache for every event until ctx is done or events
// closes. It blocks; run it in a goroutine.
func (s *LocalSource) Watch(ctx context.Context, events <-chan posts.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			s.logger.Debug("source.local.invalidate", "change", string(evt.Type))
			s.Invalidate()
		}
	}
}

func (s *LocalSource) basePosts(ctx context.Context) ([]interfaces.PostMeta, error) {
	if s.base != nil {
		return s.base, nil
	}
	list, err := s.repo.ListMeta(ctx)
	if err != nil {
		return nil, err
	}
	s.base = posts.SortByDateDesc(list)
	return s.base, nil
}

func (s *LocalSource) loadEdits() *localEdits {
	if s.edits != nil {
		return s.edits
	}
	s.edits = emptyEdits()
	if s.editsPath == "" {
		return s.edits
	}

	raw, err := os.ReadFile(s.editsPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("source.local.edits_unreadable", "path", s.editsPath, "error", err)
		}
		return s.edits
	}
	s.edits = decodeEdits(raw)
	return s.edits
}

// decodeEdits tolerates partial documents; anything unusable is dropped.
func decodeEdits(raw []byte) *localEdits {
	edits := emptyEdits()
	if len(bytes.TrimSpace(raw)) == 0 {
		return edits
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var document map[string]any
	if err := decoder.Decode(&document); err != nil {
		return edits
	}

	if upserts, ok := document["upserts"].(map[string]any); ok {
		for key, value := range upserts {
			fields, ok := value.(map[string]any)
			if !ok {
				continue
			}
			edits.Upserts[key] = posts.NormalizePost(fields)
		}
	}
	if deleted, ok := document["deletedSlugs"].([]any); ok {
		for _, item := range deleted {
			if slug, ok := item.(string); ok {
				edits.DeletedSlugs = append(edits.DeletedSlugs, slug)
			}
		}
	}
	return edits
}

// persistEdits writes edits and only then makes them current, so a failed
// write leaves the in-memory overlay matching the file.
func (s *LocalSource) persistEdits(edits *localEdits) error {
	if s.editsPath == "" {
		s.edits = edits
		return nil
	}
	data, err := json.Marshal(edits)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "encode local edits").
			WithTextCode(TextCodeEditsPersist)
	}
	if err := posts.WriteFileAtomic(s.editsPath, data); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "persist local edits").
			WithTextCode(TextCodeEditsPersist)
	}
	s.edits = edits
	return nil
}

func (s *LocalSource) applyEdits(base []interfaces.PostMeta) []interfaces.PostMeta {
	edits := s.loadEdits()
	baseSlugs := make(map[string]struct{}, len(base))
	merged := make([]interfaces.PostMeta, 0, len(base)+len(edits.Upserts))

	for _, post := range base {
		baseSlugs[post.Slug] = struct{}{}
		if edits.isDeleted(post.Slug) {
			continue
		}
		if upsert, ok := edits.Upserts[post.Slug]; ok {
			merged = append(merged, posts.Clean(upsert).Meta())
			continue
		}
		merged = append(merged, post)
	}

	keys := make([]string, 0, len(edits.Upserts))
	for key := range edits.Upserts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		post := posts.Clean(edits.Upserts[key])
		if _, ok := baseSlugs[post.Slug]; ok || edits.isDeleted(post.Slug) {
			continue
		}
		merged = append(merged, post.Meta())
	}
	return posts.SortByDateDesc(merged)
}

func (s *LocalSource) allPosts(ctx context.Context) ([]interfaces.PostMeta, error) {
	base, err := s.basePosts(ctx)
	if err != nil {
		return nil, err
	}
	return s.applyEdits(base), nil
}

// AllPosts returns the base listing with draft edits applied.
func (s *LocalSource) AllPosts(ctx context.Context) ([]interfaces.PostMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allPosts(ctx)
}

func (s *LocalSource) postBySlug(ctx context.Context, slug string) (*interfaces.Post, error) {
	edits := s.loadEdits()
	if edits.isDeleted(slug) {
		return nil, nil
	}
	if edited, ok := edits.Upserts[slug]; ok {
		post := posts.Clean(edited)
		return &post, nil
	}

	base, err := s.basePosts(ctx)
	if err != nil {
		return nil, err
	}
	index := posts.IndexOf(base, slug)
	if index < 0 {
		return nil, nil
	}

	markdown, ok := s.content[slug]
	if !ok {
		markdown, err = s.repo.ReadMarkdown(ctx, slug)
		if err != nil {
			return nil, err
		}
		s.content[slug] = markdown
	}
	return &interfaces.Post{PostMeta: base[index], Markdown: markdown}, nil
}

// PostBySlug returns nil when slug is deleted or unknown.
func (s *LocalSource) PostBySlug(ctx context.Context, slug string) (*interfaces.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postBySlug(ctx, slug)
}

// Tags lists tags in first-seen order of the edited listing.
func (s *LocalSource) Tags(ctx context.Context) ([]string, error) {
	all, err := s.AllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return posts.ExtractTags(all), nil
}

// RelatedPosts lists up to limit posts sharing tag, excluding slug.
func (s *LocalSource) RelatedPosts(ctx context.Context, slug, tag string, limit int) ([]interfaces.PostMeta, error) {
	if limit <= 0 {
		limit = posts.DefaultRelatedLimit
	}
	all, err := s.AllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return posts.Related(all, slug, tag, limit), nil
}

// AdjacentPosts returns empty neighbours for unknown slugs.
func (s *LocalSource) AdjacentPosts(ctx context.Context, slug string) (interfaces.AdjacentPosts, error) {
	all, err := s.AllPosts(ctx)
	if err != nil {
		return interfaces.AdjacentPosts{}, err
	}
	return posts.Adjacent(all, slug), nil
}

// EditablePosts returns every visible post with its body.
func (s *LocalSource) EditablePosts(ctx context.Context) ([]interfaces.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.allPosts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.Post, 0, len(all))
	for _, meta := range all {
		post, err := s.postBySlug(ctx, meta.Slug)
		if err != nil {
			return nil, err
		}
		if post != nil {
			out = append(out, *post)
		}
	}
	return out, nil
}

// UpsertPost stores a draft. Only field presence is checked.
func (s *LocalSource) UpsertPost(ctx context.Context, post interfaces.Post) (*interfaces.Post, error) {
	post = posts.Clean(post)
	if err := posts.ValidateDraft(post); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	edits := s.loadEdits().clone()
	edits.Upserts[post.Slug] = post
	edits.undelete(post.Slug)
	if err := s.persistEdits(edits); err != nil {
		return nil, err
	}
	s.content[post.Slug] = post.Markdown

	logging.WithPostContext(s.logger, post.Slug, "upsert").Info("source.local.upserted")
	return &post, nil
}

// DeletePost hides a base post or drops a draft-only one.
func (s *LocalSource) DeletePost(ctx context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, err := s.basePosts(ctx)
	if err != nil {
		return err
	}
	edits := s.loadEdits().clone()
	delete(edits.Upserts, slug)

	if posts.IndexOf(base, slug) >= 0 {
		if !edits.isDeleted(slug) {
			edits.DeletedSlugs = append(edits.DeletedSlugs, slug)
		}
	} else {
		edits.undelete(slug)
	}

	if err := s.persistEdits(edits); err != nil {
		return err
	}
	delete(s.content, slug)
	logging.WithPostContext(s.logger, slug, "delete").Info("source.local.deleted")
	return nil
}

// DraftStatus counts pending edits.
func (s *LocalSource) DraftStatus(context.Context) (interfaces.DraftStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edits := s.loadEdits()
	return interfaces.DraftStatus{
		UpsertCount:  len(edits.Upserts),
		DeletedCount: len(edits.DeletedSlugs),
	}, nil
}

// ClearLocalEdits discards every draft and the body cache.
func (s *LocalSource) ClearLocalEdits(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persistEdits(emptyEdits()); err != nil {
		return err
	}
	s.content = make(map[string]string)
	return nil
}
