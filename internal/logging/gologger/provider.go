package gologger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// Config mirrors the logging section of the runtime configuration.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	// Focus limits output to the named modules, e.g. "notes.admin".
	Focus []string
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out go-logger children named after notes modules.
type Provider struct {
	root *glog.BaseLogger
}

var _ interfaces.LoggerProvider = (*Provider)(nil)

// NewProvider builds the root go-logger. Unknown formats and levels are errors.
func NewProvider(cfg Config) (*Provider, error) {
	format, err := formatOption(cfg.Format)
	if err != nil {
		return nil, err
	}
	options := []glog.Option{format}

	level, ok := parseLevel(cfg.Level)
	if !ok {
		return nil, fmt.Errorf("gologger: unsupported level %q", cfg.Level)
	}
	if level != "" {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	if focus := cleanNames(cfg.Focus); len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// GetLogger returns the child logger for module. A nil provider yields NoOp.
func (p *Provider) GetLogger(module string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	if module = strings.TrimSpace(module); module == "" {
		return adapt(p.root)
	}
	return adapt(p.root.GetLogger(module))
}

func formatOption(format string) (glog.Option, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return glog.WithLoggerTypeJSON(), nil
	case "console":
		return glog.WithLoggerTypeConsole(), nil
	case "pretty":
		return glog.WithLoggerTypePretty(), nil
	}
	return nil, fmt.Errorf("gologger: unsupported format %q", format)
}

// parseLevel maps a configured level onto go-logger's names. An empty level
// keeps the go-logger default.
func parseLevel(level string) (string, bool) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return "", true
	}
	name, ok := levels[level]
	return name, ok
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func adapt(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return entry{inner: inner}
}

// entry adapts glog.Logger to interfaces.Logger.
type entry struct {
	inner glog.Logger
}

func (e entry) Trace(msg string, args ...any) { e.inner.Trace(msg, args...) }
func (e entry) Debug(msg string, args ...any) { e.inner.Debug(msg, args...) }
func (e entry) Info(msg string, args ...any)  { e.inner.Info(msg, args...) }
func (e entry) Warn(msg string, args ...any)  { e.inner.Warn(msg, args...) }
func (e entry) Error(msg string, args ...any) { e.inner.Error(msg, args...) }
func (e entry) Fatal(msg string, args ...any) { e.inner.Fatal(msg, args...) }

func (e entry) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return e
	}
	if fl, ok := e.inner.(glog.FieldsLogger); ok {
		return adapt(fl.WithFields(maps.Clone(fields)))
	}
	// Loggers without field support get sorted key/value pairs.
	if with, ok := e.inner.(interface{ With(...any) *glog.BaseLogger }); ok {
		args := make([]any, 0, len(fields)*2)
		for _, key := range slices.Sorted(maps.Keys(fields)) {
			args = append(args, key, fields[key])
		}
		return adapt(with.With(args...))
	}
	return e
}

func (e entry) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return e
	}
	return adapt(e.inner.WithContext(ctx))
}
