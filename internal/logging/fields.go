package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

type fieldsKey struct{}

// WithFields is a nil-safe logger.WithFields that skips empty maps.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.WithFields(maps.Clone(fields))
}

// ContextWithFields stores request-scoped fields (route, admin user) on ctx,
// merged over any fields already present.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// ContextFields returns a copy of the fields stored on ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// FromContext returns logger carrying the fields stored on ctx.
func FromContext(logger interfaces.Logger, ctx context.Context) interfaces.Logger {
	return WithFields(logger, ContextFields(ctx))
}
