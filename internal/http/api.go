package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-notes/internal/admin"
	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/internal/metrics"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// DefaultSessionCookie is the admin session cookie name when unset.
const DefaultSessionCookie = "notes_admin_session"

// PostsService is the post store behind the public and admin routes.
type PostsService interface {
	List(ctx context.Context) ([]interfaces.PostMeta, error)
	Tags(ctx context.Context) ([]string, error)
	Get(ctx context.Context, slug string) (*interfaces.Post, error)
	Related(ctx context.Context, slug, tag string, limit int) ([]interfaces.PostMeta, error)
	Adjacent(ctx context.Context, slug string) (interfaces.AdjacentPosts, error)
	ListFull(ctx context.Context) ([]interfaces.Post, error)
	Save(ctx context.Context, post interfaces.Post) (*posts.SaveResult, error)
	Delete(ctx context.Context, slug string) error
}

// AdminService authenticates admin requests and records operations.
type AdminService interface {
	Login(ctx context.Context, username, password string) (admin.Session, error)
	Logout(ctx context.Context, token string) (bool, error)
	Session(token string) (admin.Session, bool)
	Authorize(ctx context.Context, token string) (admin.Session, error)
	Record(ctx context.Context, kind, slug, detail, username string) (interfaces.Operation, error)
	Operations() []interfaces.Operation
	SessionTTL() time.Duration
}

// CookieConfig controls the admin session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// API registers the notes endpoints.
type API struct {
	basePath       string
	posts          PostsService
	admin          AdminService
	markdown       interfaces.MarkdownService
	recorder       metrics.Recorder
	metricsHandler http.Handler
	cookie         CookieConfig
	logger         interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		basePath: "/api",
		recorder: metrics.NoopRecorder{},
		cookie:   CookieConfig{Name: DefaultSessionCookie},
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithPostsService wires the post store.
func WithPostsService(service PostsService) Option {
	return func(api *API) {
		api.posts = service
	}
}

// WithAdminService wires authentication and the operation log.
func WithAdminService(service AdminService) Option {
	return func(api *API) {
		api.admin = service
	}
}

// WithMarkdownService wires the renderer used by the render routes.
func WithMarkdownService(service interfaces.MarkdownService) Option {
	return func(api *API) {
		api.markdown = service
	}
}

// WithRecorder records request metrics.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(api *API) {
		if recorder != nil {
			api.recorder = recorder
		}
	}
}

// WithMetricsHandler mounts handler at GET /metrics.
func WithMetricsHandler(handler http.Handler) Option {
	return func(api *API) {
		api.metricsHandler = handler
	}
}

// WithCookie configures the session cookie.
func WithCookie(cfg CookieConfig) Option {
	return func(api *API) {
		if strings.TrimSpace(cfg.Name) == "" {
			cfg.Name = DefaultSessionCookie
		}
		api.cookie = cfg
	}
}

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}
	if api.posts == nil {
		return fmt.Errorf("http: posts service is required")
	}

	base := joinPath(api.basePath, "")
	mux.HandleFunc("GET "+joinPath(base, "health"), api.handleHealth)
	api.registerPostRoutes(mux, base)
	api.registerRenderRoutes(mux, base)
	api.registerAdminRoutes(mux, base)

	if api.metricsHandler != nil {
		mux.Handle("GET /metrics", api.metricsHandler)
	}
	return nil
}

// Handler returns a mux with every route registered, wrapped in the
// standard middleware chain.
func (api *API) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		return nil, err
	}
	return api.Wrap(mux), nil
}

func (api *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
