package postscmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-notes/internal/commands"
	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

const (
	upsertOperation = "posts.upsert"
	deleteOperation = "posts.delete"
	clearOperation  = "posts.clear_local_edits"
)

// Writer is the part of interfaces.PostSource the handlers mutate.
type Writer interface {
	UpsertPost(ctx context.Context, post interfaces.Post) (*interfaces.Post, error)
	DeletePost(ctx context.Context, slug string) error
	ClearLocalEdits(ctx context.Context) error
}

var (
	_ command.Commander[UpsertPostCommand]      = (*UpsertPostHandler)(nil)
	_ command.Commander[DeletePostCommand]      = (*DeletePostHandler)(nil)
	_ command.Commander[ClearLocalEditsCommand] = (*ClearLocalEditsHandler)(nil)
)

// UpsertPostHandler saves posts via the shared command handler.
type UpsertPostHandler struct {
	inner *commands.Handler[UpsertPostCommand]
}

// NewUpsertPostHandler binds the handler to writer. onSaved, when set,
// receives the stored post.
func NewUpsertPostHandler(writer Writer, logger interfaces.Logger, onSaved func(*interfaces.Post), opts ...commands.HandlerOption[UpsertPostCommand]) *UpsertPostHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg UpsertPostCommand) error {
		post := msg.Post()
		if msg.DryRun {
			logging.WithPostContext(baseLogger, post.Slug, "dry_run").Info("posts.command.upsert.skipped")
			return nil
		}
		saved, err := writer.UpsertPost(ctx, post)
		if err != nil {
			return err
		}
		if onSaved != nil {
			onSaved(saved)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[UpsertPostCommand]{
		commands.WithLogger[UpsertPostCommand](baseLogger),
		commands.WithOperation[UpsertPostCommand](upsertOperation),
		commands.WithMessageFields(func(msg UpsertPostCommand) map[string]any {
			fields := map[string]any{"slug": msg.Slug}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UpsertPostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UpsertPostCommand].
func (h *UpsertPostHandler) Execute(ctx context.Context, msg UpsertPostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeletePostHandler removes posts via the shared command handler.
type DeletePostHandler struct {
	inner *commands.Handler[DeletePostCommand]
}

// NewDeletePostHandler binds the handler to writer.
func NewDeletePostHandler(writer Writer, logger interfaces.Logger, opts ...commands.HandlerOption[DeletePostCommand]) *DeletePostHandler {
	exec := func(ctx context.Context, msg DeletePostCommand) error {
		return writer.DeletePost(ctx, msg.Slug)
	}

	handlerOpts := []commands.HandlerOption[DeletePostCommand]{
		commands.WithLogger[DeletePostCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[DeletePostCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeletePostCommand) map[string]any {
			return map[string]any{"slug": msg.Slug}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeletePostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeletePostCommand].
func (h *DeletePostHandler) Execute(ctx context.Context, msg DeletePostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ClearLocalEditsHandler drops local drafts via the shared command handler.
type ClearLocalEditsHandler struct {
	inner *commands.Handler[ClearLocalEditsCommand]
}

// NewClearLocalEditsHandler binds the handler to writer.
func NewClearLocalEditsHandler(writer Writer, logger interfaces.Logger, opts ...commands.HandlerOption[ClearLocalEditsCommand]) *ClearLocalEditsHandler {
	exec := func(ctx context.Context, _ ClearLocalEditsCommand) error {
		return writer.ClearLocalEdits(ctx)
	}

	handlerOpts := []commands.HandlerOption[ClearLocalEditsCommand]{
		commands.WithLogger[ClearLocalEditsCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[ClearLocalEditsCommand](clearOperation),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ClearLocalEditsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ClearLocalEditsCommand].
func (h *ClearLocalEditsHandler) Execute(ctx context.Context, msg ClearLocalEditsCommand) error {
	return h.inner.Execute(ctx, msg)
}
