package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-notes/internal/admin"
	notehttp "github.com/goliatone/go-notes/internal/http"
	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/internal/logging/gologger"
	"github.com/goliatone/go-notes/internal/markdown"
	"github.com/goliatone/go-notes/internal/metrics"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/internal/runtimeconfig"
	"github.com/goliatone/go-notes/internal/source"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	registry       *prometheus.Registry
	recorder       metrics.Recorder
	promRecorder   *metrics.PrometheusRecorder

	repo       posts.Repository
	postsSvc   *posts.Service
	watcher    *posts.Watcher
	markdown   *markdown.Service
	sourceSvc  *source.Service
	adminSvc   *admin.Service
	sweeper    *admin.Sweeper
	opsStore   admin.OperationStore
	opsDB      *bun.DB
	httpClient *http.Client
	api        *notehttp.API

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    sync.WaitGroup
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithRepository replaces the file repository rooted at Config.Content.Root.
func WithRepository(repo posts.Repository) Option {
	return func(c *Container) {
		c.repo = repo
	}
}

// WithOperationStore replaces the store chosen by Config.Admin.OperationsStore.
func WithOperationStore(store admin.OperationStore) Option {
	return func(c *Container) {
		c.opsStore = store
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithHTTPClient sets the client used by the API post source.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// NewContainer validates cfg and builds every service. Nothing is started.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func() error{
		c.configureLoggerProvider,
		c.configureMetrics,
		c.configurePosts,
		c.configureMarkdown,
		c.configureSource,
		c.configureAdmin,
		c.configureAPI,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			c.closeResources()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "", "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	return nil
}

func (c *Container) configureMetrics() error {
	if !c.Config.Metrics.Enabled {
		c.recorder = metrics.NoopRecorder{}
		return nil
	}
	c.promRecorder = metrics.NewPrometheusRecorder(c.registry)
	c.recorder = c.promRecorder
	return nil
}

func (c *Container) configurePosts() error {
	if c.repo == nil {
		c.repo = posts.NewFileRepository(c.Config.Content.Root)
	}
	logger := logging.PostsLogger(c.loggerProvider)
	c.postsSvc = posts.NewService(c.repo, posts.WithLogger(logger))
	if c.Config.Content.Watch {
		if _, ok := c.repo.(*posts.FileRepository); ok {
			c.watcher = posts.NewWatcher(c.Config.Content.Root,
				posts.WithWatchDebounce(c.Config.Content.WatchDebounce),
				posts.WithWatchLogger(logger),
			)
		}
	}
	return nil
}

func (c *Container) configureMarkdown() error {
	svc, err := markdown.NewService(markdown.Config{
		Engine: c.Config.Markdown.Engine,
		Goldmark: markdown.GoldmarkOptions{
			Extensions: c.Config.Markdown.Extensions,
			HardWraps:  c.Config.Markdown.HardWraps,
		},
	},
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
		markdown.WithObserver(c.recorder),
	)
	if err != nil {
		return err
	}
	c.markdown = svc
	return nil
}

func (c *Container) configureSource() error {
	svc, err := source.Open(source.Config{
		Mode:       c.Config.Source.Mode,
		APIBaseURL: c.Config.Source.APIBaseURL,
		EditsPath:  c.Config.Source.EditsPath,
	}, c.repo,
		source.WithLogger(logging.SourceLogger(c.loggerProvider)),
		source.WithClient(c.httpClient),
	)
	if err != nil {
		return err
	}
	c.sourceSvc = svc
	return nil
}

func (c *Container) configureAdmin() error {
	if !c.Config.Admin.Enabled {
		return nil
	}
	logger := logging.AdminLogger(c.loggerProvider)

	if c.opsStore == nil {
		switch driver := strings.ToLower(strings.TrimSpace(c.Config.Admin.OperationsStore)); driver {
		case "", "file":
		default:
			db, err := admin.OpenOperationsDB(driver, c.Config.Admin.OperationsDSN)
			if err != nil {
				return err
			}
			c.opsDB = db
			c.opsStore = admin.NewBunOperationStore(db)
		}
	}

	opts := []admin.Option{
		admin.WithLogger(logger),
		admin.WithObserver(c.recorder),
	}
	if c.opsStore != nil {
		opts = append(opts, admin.WithOperationStore(c.opsStore))
	}
	svc, err := admin.NewService(admin.Config{
		Username:          c.Config.Admin.Username,
		Password:          c.Config.Admin.Password,
		DataRoot:          c.Config.Admin.DataRoot,
		SessionTTL:        c.Config.Admin.SessionTTL,
		OperationLogLimit: c.Config.Admin.OperationLogLimit,
	}, opts...)
	if err != nil {
		return err
	}
	c.adminSvc = svc

	sweeper, err := admin.NewSweeper(svc, c.Config.Admin.SweepInterval, logger)
	if err != nil {
		return err
	}
	c.sweeper = sweeper
	return nil
}

func (c *Container) configureAPI() error {
	opts := []notehttp.Option{
		notehttp.WithBasePath(c.Config.Server.BasePath),
		notehttp.WithPostsService(c.postsSvc),
		notehttp.WithMarkdownService(c.markdown),
		notehttp.WithRecorder(c.recorder),
		notehttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
		notehttp.WithCookie(notehttp.CookieConfig{
			Name:   c.Config.Admin.CookieName,
			Secure: c.Config.Admin.CookieSecure,
		}),
	}
	if c.adminSvc != nil {
		opts = append(opts, notehttp.WithAdminService(c.adminSvc))
	}
	if c.promRecorder != nil {
		opts = append(opts, notehttp.WithMetricsHandler(c.promRecorder.Handler()))
	}
	c.api = notehttp.NewAPI(opts...)
	return nil
}

// Start loads admin state and launches the background workers: the session
// sweeper, the content watcher and the local source invalidation loop.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)

	if bunStore, ok := c.opsStore.(*admin.BunOperationStore); ok {
		if err := bunStore.EnsureSchema(runCtx); err != nil {
			cancel()
			return err
		}
	}
	if c.adminSvc != nil {
		if err := c.adminSvc.Start(runCtx); err != nil {
			cancel()
			return err
		}
		if err := c.sweeper.Start(runCtx); err != nil {
			cancel()
			return err
		}
	}
	if c.watcher != nil {
		if err := c.watcher.Start(runCtx); err != nil {
			cancel()
			return err
		}
		if local, ok := c.sourceSvc.Source().(*source.LocalSource); ok {
			events, err := c.watcher.Subscribe(runCtx)
			if err != nil {
				cancel()
				return err
			}
			c.done.Add(1)
			go func() {
				defer c.done.Done()
				local.Watch(runCtx, events)
			}()
		}
	}

	c.cancel = cancel
	c.started = true
	return nil
}

// Close stops background workers and releases the operations database.
func (c *Container) Close() error {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.started = false
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var errs []error
	if c.sweeper != nil {
		if err := c.sweeper.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop sweeper: %w", err))
		}
	}
	if c.watcher != nil {
		if err := c.watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop watcher: %w", err))
		}
	}
	c.done.Wait()
	if err := c.closeResources(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Container) closeResources() error {
	var errs []error
	if c.adminSvc != nil {
		if err := c.adminSvc.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.opsDB != nil {
		if err := c.opsDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close operations db: %w", err))
		}
		c.opsDB = nil
	}
	return errors.Join(errs...)
}

// LoggerProvider returns the configured logger provider (nil means no-op).
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// Recorder returns the metrics recorder.
func (c *Container) Recorder() metrics.Recorder { return c.recorder }

// PostsService returns the file-backed post service used by the HTTP API.
func (c *Container) PostsService() *posts.Service { return c.postsSvc }

// MarkdownService returns the render service.
func (c *Container) MarkdownService() *markdown.Service { return c.markdown }

// SourceService returns the configured post source.
func (c *Container) SourceService() *source.Service { return c.sourceSvc }

// AdminService returns the admin service, nil when admin is disabled.
func (c *Container) AdminService() *admin.Service { return c.adminSvc }

// API returns the HTTP API.
func (c *Container) API() *notehttp.API { return c.api }
