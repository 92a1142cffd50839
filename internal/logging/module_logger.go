package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

const (
	rootModule     = "notes"
	markdownModule = "notes.markdown"
	postsModule    = "notes.posts"
	sourceModule   = "notes.source"
	adminModule    = "notes.admin"
	httpModule     = "notes.http"
)

const (
	fieldPostSlug     = "slug"
	fieldPostAction   = "action"
	fieldAdminUser    = "username"
	fieldSourceMode   = "source_mode"
	fieldRenderEngine = "engine"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered per module.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return logger.WithFields(map[string]any{"module": module})
}

// MarkdownLogger returns the logger namespace reserved for markdown rendering.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// PostsLogger returns the logger namespace reserved for post storage.
func PostsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, postsModule)
}

// SourceLogger returns the logger namespace reserved for post sources.
func SourceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sourceModule)
}

// AdminLogger returns the logger namespace reserved for admin sessions and audit.
func AdminLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, adminModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP API.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithPostContext enriches the logger with the post slug and the action being
// applied to it. Empty values are ignored.
func WithPostContext(logger interfaces.Logger, slug, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldPostSlug] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldPostAction] = trimmed
	}
	return WithFields(logger, fields)
}

// WithAdminUser tags entries with the acting admin username.
func WithAdminUser(logger interfaces.Logger, username string) interfaces.Logger {
	if trimmed := strings.TrimSpace(username); trimmed != "" {
		return WithFields(logger, map[string]any{fieldAdminUser: trimmed})
	}
	return logger
}

// WithSourceMode tags entries with the active post source mode (local|api).
func WithSourceMode(logger interfaces.Logger, mode string) interfaces.Logger {
	if trimmed := strings.TrimSpace(mode); trimmed != "" {
		return WithFields(logger, map[string]any{fieldSourceMode: trimmed})
	}
	return logger
}

// WithEngine tags entries with the markdown engine name.
func WithEngine(logger interfaces.Logger, engine string) interfaces.Logger {
	if trimmed := strings.TrimSpace(engine); trimmed != "" {
		return WithFields(logger, map[string]any{fieldRenderEngine: trimmed})
	}
	return logger
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
