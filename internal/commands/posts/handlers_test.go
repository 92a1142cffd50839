package postscmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

type recordingWriter struct {
	upserts []interfaces.Post
	deletes []string
	clears  int
	err     error
}

func (w *recordingWriter) UpsertPost(_ context.Context, post interfaces.Post) (*interfaces.Post, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.upserts = append(w.upserts, post)
	return &post, nil
}

func (w *recordingWriter) DeletePost(_ context.Context, slug string) error {
	if w.err != nil {
		return w.err
	}
	w.deletes = append(w.deletes, slug)
	return nil
}

func (w *recordingWriter) ClearLocalEdits(context.Context) error {
	if w.err != nil {
		return w.err
	}
	w.clears++
	return nil
}

func TestUpsertPostHandlerInvokesWriter(t *testing.T) {
	writer := &recordingWriter{}
	var saved *interfaces.Post
	handler := NewUpsertPostHandler(writer, nil, func(post *interfaces.Post) { saved = post })

	if err := handler.Execute(context.Background(), validUpsert()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(writer.upserts) != 1 || writer.upserts[0].Slug != "hello-world" {
		t.Fatalf("expected one upsert, got %+v", writer.upserts)
	}
	if saved == nil || saved.Title != "Hello" {
		t.Fatalf("expected saved callback, got %+v", saved)
	}
}

func TestUpsertPostHandlerDryRunSkipsWriter(t *testing.T) {
	writer := &recordingWriter{}
	cmd := validUpsert()
	cmd.DryRun = true

	if err := NewUpsertPostHandler(writer, nil, nil).Execute(context.Background(), cmd); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(writer.upserts) != 0 {
		t.Fatalf("expected no writes on dry run, got %+v", writer.upserts)
	}
}

func TestUpsertPostHandlerRejectsInvalidMessage(t *testing.T) {
	writer := &recordingWriter{}
	err := NewUpsertPostHandler(writer, nil, nil).Execute(context.Background(), UpsertPostCommand{Slug: "x"})
	if !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(writer.upserts) != 0 {
		t.Fatal("expected writer not to be called")
	}
}

func TestDeletePostHandlerKeepsSourceCategory(t *testing.T) {
	writer := &recordingWriter{err: goerrors.New("post not found", goerrors.CategoryNotFound)}
	err := NewDeletePostHandler(writer, nil).Execute(context.Background(), DeletePostCommand{Slug: "gone"})
	if !goerrors.IsNotFound(err) {
		t.Fatalf("expected not found to pass through, got %v", err)
	}
}

func TestDeletePostHandlerInvokesWriter(t *testing.T) {
	writer := &recordingWriter{}
	if err := NewDeletePostHandler(writer, nil).Execute(context.Background(), DeletePostCommand{Slug: "gone"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(writer.deletes) != 1 || writer.deletes[0] != "gone" {
		t.Fatalf("unexpected deletes %v", writer.deletes)
	}
}

func TestClearLocalEditsHandlerWrapsPlainErrors(t *testing.T) {
	writer := &recordingWriter{err: errors.New("disk full")}
	err := NewClearLocalEditsHandler(writer, nil).Execute(context.Background(), ClearLocalEditsCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}

	writer.err = nil
	if err := NewClearLocalEditsHandler(writer, nil).Execute(context.Background(), ClearLocalEditsCommand{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if writer.clears != 1 {
		t.Fatalf("expected one clear, got %d", writer.clears)
	}
}
