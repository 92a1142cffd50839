package commands

import (
	"context"
	"maps"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// DefaultTimeout bounds a command unless WithTimeout says otherwise.
const DefaultTimeout = 30 * time.Second

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler runs post commands with validation, a timeout, structured logging
// and go-errors tagging. It satisfies command.Commander[T].
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	fields    func(T) map[string]any
	reporter  Reporter[T]
}

// NewHandler wraps fn. It panics on a nil fn.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:     fn,
		logger:   logging.NoOp(),
		timeout:  DefaultTimeout,
		reporter: LogReporter[T](),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute validates msg, then runs it under the handler timeout.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return rejectMessage(err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return tag(err, outcomeOf(err))
	}

	name := command.GetMessageType(msg)
	fields := map[string]any{"command": name}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if h.fields != nil {
		maps.Copy(fields, h.fields(msg))
	}
	logger := logging.WithFields(h.logger, fields)
	logger.Debug("command.started")

	started := time.Now()
	err := h.exec(ctx, msg)
	if err == nil {
		err = ctx.Err()
	}
	outcome := outcomeOf(err)

	h.reporter(ctx, msg, Report{
		Command:   name,
		Operation: h.operation,
		Fields:    fields,
		Duration:  time.Since(started),
		Outcome:   outcome,
		Err:       err,
		Logger:    logger,
	})
	return tag(err, outcome)
}

// EnsureLogger substitutes a no-op logger for nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

// WithTimeout overrides DefaultTimeout. Zero or negative disables the bound.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = EnsureLogger(logger)
	}
}

// WithOperation names the operation in every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageFields adds per-message fields, such as the slug, to log entries.
func WithMessageFields[T command.Message](fn func(T) map[string]any) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.fields = fn
	}
}

// WithReporter replaces LogReporter.
func WithReporter[T command.Message](reporter Reporter[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		if reporter != nil {
			h.reporter = reporter
		}
	}
}
