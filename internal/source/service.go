package source

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

const (
	ModeLocal = "local"
	ModeAPI   = "api"
)

// Config selects and configures the post source.
type Config struct {
	Mode       string
	APIBaseURL string
	EditsPath  string
}

type options struct {
	logger      interfaces.Logger
	broadcaster *posts.Broadcaster
	httpClient  *http.Client
}

// Option configures Service construction.
type Option func(*options)

// WithLogger sets the module logger for the service and its source.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBroadcaster publishes change events on b.
func WithBroadcaster(b *posts.Broadcaster) Option {
	return func(o *options) {
		if b != nil {
			o.broadcaster = b
		}
	}
}

// WithClient sets the HTTP client used in API mode.
func WithClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

func collectOptions(opts []Option) options {
	o := options{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.broadcaster == nil {
		o.broadcaster = posts.NewBroadcaster()
	}
	return o
}

// Service fronts the configured PostSource. Mutations publish a change event
// on success; admin calls fall back to local-mode answers when the source has
// no admin backend.
type Service struct {
	mode        string
	source      interfaces.PostSource
	logger      interfaces.Logger
	broadcaster *posts.Broadcaster
}

var (
	_ interfaces.PostSource  = (*Service)(nil)
	_ interfaces.AdminSource = (*Service)(nil)
)

// Open builds the source named by cfg.Mode. An empty mode means local.
func Open(cfg Config, repo posts.Repository, opts ...Option) (*Service, error) {
	o := collectOptions(opts)
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = ModeLocal
	}

	var src interfaces.PostSource
	switch mode {
	case ModeLocal:
		src = NewLocalSource(repo, WithEditsPath(cfg.EditsPath), WithLocalLogger(o.logger))
	case ModeAPI:
		api, err := NewAPISource(cfg.APIBaseURL, WithHTTPClient(o.httpClient), WithAPILogger(o.logger))
		if err != nil {
			return nil, err
		}
		src = api
	default:
		return nil, goerrors.New("unknown post source mode: "+cfg.Mode, goerrors.CategoryBadInput).
			WithTextCode(TextCodeUnknownMode).
			WithMetadata(map[string]any{"mode": cfg.Mode})
	}
	return newService(mode, src, o), nil
}

// NewService wraps an existing source.
func NewService(mode string, src interfaces.PostSource, opts ...Option) *Service {
	return newService(mode, src, collectOptions(opts))
}

func newService(mode string, src interfaces.PostSource, o options) *Service {
	return &Service{
		mode:        mode,
		source:      src,
		logger:      logging.WithSourceMode(o.logger, mode),
		broadcaster: o.broadcaster,
	}
}

// Mode reports "local" or "api".
func (s *Service) Mode() string { return s.mode }

// Source returns the underlying strategy.
func (s *Service) Source() interfaces.PostSource { return s.source }

// Subscribe streams posts-updated events until ctx is done.
func (s *Service) Subscribe(ctx context.Context) (<-chan posts.ChangeEvent, error) {
	return s.broadcaster.Subscribe(ctx)
}

func (s *Service) AllPosts(ctx context.Context) ([]interfaces.PostMeta, error) {
	return s.source.AllPosts(ctx)
}

func (s *Service) PostBySlug(ctx context.Context, slug string) (*interfaces.Post, error) {
	return s.source.PostBySlug(ctx, slug)
}

func (s *Service) Tags(ctx context.Context) ([]string, error) {
	return s.source.Tags(ctx)
}

func (s *Service) RelatedPosts(ctx context.Context, slug, tag string, limit int) ([]interfaces.PostMeta, error) {
	if limit <= 0 {
		limit = posts.DefaultRelatedLimit
	}
	return s.source.RelatedPosts(ctx, slug, tag, limit)
}

func (s *Service) AdjacentPosts(ctx context.Context, slug string) (interfaces.AdjacentPosts, error) {
	return s.source.AdjacentPosts(ctx, slug)
}

func (s *Service) EditablePosts(ctx context.Context) ([]interfaces.Post, error) {
	return s.source.EditablePosts(ctx)
}

// UpsertPost saves post and publishes an update event.
func (s *Service) UpsertPost(ctx context.Context, post interfaces.Post) (*interfaces.Post, error) {
	saved, err := s.source.UpsertPost(ctx, post)
	if err != nil {
		return nil, err
	}
	s.publish(posts.ChangeUpdated, saved.Slug)
	return saved, nil
}

// DeletePost removes slug and publishes a delete event.
func (s *Service) DeletePost(ctx context.Context, slug string) error {
	if err := s.source.DeletePost(ctx, slug); err != nil {
		return err
	}
	s.publish(posts.ChangeDeleted, slug)
	return nil
}

func (s *Service) DraftStatus(ctx context.Context) (interfaces.DraftStatus, error) {
	return s.source.DraftStatus(ctx)
}

// ClearLocalEdits discards drafts and publishes a cleared event.
func (s *Service) ClearLocalEdits(ctx context.Context) error {
	if err := s.source.ClearLocalEdits(ctx); err != nil {
		return err
	}
	s.publish(posts.ChangeCleared, "")
	return nil
}

func (s *Service) publish(change posts.ChangeType, slug string) {
	logging.WithPostContext(s.logger, slug, string(change)).Debug("source.posts_updated")
	s.broadcaster.Broadcast(posts.ChangeEvent{Type: change, Slug: slug})
}

func (s *Service) admin() (interfaces.AdminSource, bool) {
	admin, ok := s.source.(interfaces.AdminSource)
	return admin, ok
}

// AdminSession reports the session, or a logged-in local session.
func (s *Service) AdminSession(ctx context.Context) (interfaces.AdminSession, error) {
	if admin, ok := s.admin(); ok {
		return admin.AdminSession(ctx)
	}
	return interfaces.AdminSession{LoggedIn: true, Mode: ModeLocal}, nil
}

// Login authenticates against the admin backend when there is one.
func (s *Service) Login(ctx context.Context, username, password string) (interfaces.AdminSession, error) {
	if admin, ok := s.admin(); ok {
		return admin.Login(ctx, username, password)
	}
	return interfaces.AdminSession{LoggedIn: true, Mode: ModeLocal}, nil
}

func (s *Service) Logout(ctx context.Context) (interfaces.AdminSession, error) {
	if admin, ok := s.admin(); ok {
		return admin.Logout(ctx)
	}
	return interfaces.AdminSession{LoggedIn: false, Mode: ModeLocal}, nil
}

// Operations is empty without an admin backend.
func (s *Service) Operations(ctx context.Context) ([]interfaces.Operation, error) {
	if admin, ok := s.admin(); ok {
		return admin.Operations(ctx)
	}
	return []interfaces.Operation{}, nil
}
