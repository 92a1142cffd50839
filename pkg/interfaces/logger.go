package interfaces

import "context"

// Logger is the structured, leveled logger every notes module writes to.
// Messages are dotted event names ("admin.login.failed") followed by
// key/value pairs.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	// WithFields returns a child logger that adds fields to every entry.
	WithFields(fields map[string]any) Logger
	WithContext(ctx context.Context) Logger
}

// LoggerProvider returns the logger for a module name such as "notes.admin".
type LoggerProvider interface {
	GetLogger(name string) Logger
}
