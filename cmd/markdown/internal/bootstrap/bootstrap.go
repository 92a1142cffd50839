package bootstrap

import (
	"fmt"
	"strings"

	notes "github.com/goliatone/go-notes"
	"github.com/goliatone/go-notes/internal/di"
	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// Options captures configuration for markdown CLI bootstraps.
type Options struct {
	ConfigFile     string
	EnvFile        string
	ContentRoot    string
	Engine         string
	SourceMode     string
	APIBaseURL     string
	LoggerProvider interfaces.LoggerProvider
	// Lookup overrides environment lookups; nil reads the process environment.
	Lookup func(string) (string, bool)
}

// Module wraps the notes module and the services the markdown CLIs use.
type Module struct {
	Module   *notes.Module
	Markdown interfaces.MarkdownService
	Source   interfaces.PostSource
	Logger   interfaces.Logger
}

// Close releases the wrapped module.
func (m *Module) Close() error {
	if m == nil || m.Module == nil {
		return nil
	}
	return m.Module.Close()
}

// BuildModule constructs a notes module configured for one-shot CLI runs:
// admin sessions, metrics and the content watcher stay off.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := notes.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise notes module: %w", err)
	}

	service := module.Markdown()
	if service == nil {
		module.Close()
		return nil, fmt.Errorf("markdown service not configured")
	}

	return &Module{
		Module:   module,
		Markdown: service,
		Source:   module.Source(),
		Logger:   logging.MarkdownLogger(module.LoggerProvider()),
	}, nil
}

// LoadConfig resolves the layered configuration and applies the CLI overrides.
func LoadConfig(opts Options) (notes.Config, error) {
	cfg, err := notes.LoadConfig(notes.LoadOptions{
		ConfigFile: strings.TrimSpace(opts.ConfigFile),
		EnvFile:    strings.TrimSpace(opts.EnvFile),
		Lookup:     opts.Lookup,
	})
	if err != nil {
		return notes.Config{}, fmt.Errorf("load config: %w", err)
	}

	if root := strings.TrimSpace(opts.ContentRoot); root != "" {
		cfg.Content.Root = root
	}
	if engine := strings.TrimSpace(opts.Engine); engine != "" {
		cfg.Markdown.Engine = engine
	}
	if mode := strings.TrimSpace(opts.SourceMode); mode != "" {
		cfg.Source.Mode = mode
	}
	if base := strings.TrimSpace(opts.APIBaseURL); base != "" {
		cfg.Source.APIBaseURL = base
	}

	cfg.Admin.Enabled = false
	cfg.Content.Watch = false
	cfg.Metrics.Enabled = false

	if err := cfg.Validate(); err != nil {
		return notes.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
