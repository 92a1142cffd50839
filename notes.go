package notes

import (
	"context"
	"net/http"

	"github.com/goliatone/go-notes/internal/admin"
	"github.com/goliatone/go-notes/internal/di"
	"github.com/goliatone/go-notes/internal/markdown"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/internal/source"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// PostsService exports the file-backed post service behind the HTTP API.
type PostsService = *posts.Service

// MarkdownService exports the render service.
type MarkdownService = *markdown.Service

// SourceService exports the local/API post source.
type SourceService = *source.Service

// AdminService exports sessions, credentials and the operation log.
type AdminService = *admin.Service

// Module represents the top level notes runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a notes module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Start launches background workers.
func (m *Module) Start(ctx context.Context) error {
	return m.container.Start(ctx)
}

// Close stops background workers and releases resources.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// LoggerProvider returns the configured provider; nil means logging is off.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.container.LoggerProvider()
}

// Posts returns the post service.
func (m *Module) Posts() PostsService {
	return m.container.PostsService()
}

// Markdown returns the render service.
func (m *Module) Markdown() MarkdownService {
	return m.container.MarkdownService()
}

// Source returns the configured post source.
func (m *Module) Source() SourceService {
	return m.container.SourceService()
}

// Admin returns the admin service, nil when admin is disabled.
func (m *Module) Admin() AdminService {
	return m.container.AdminService()
}

// Handler returns the HTTP API with its middleware applied.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.API().Handler()
}
