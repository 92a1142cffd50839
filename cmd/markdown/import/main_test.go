package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-notes/cmd/markdown/internal/bootstrap"
	"github.com/goliatone/go-notes/internal/logging"
	"github.com/goliatone/go-notes/internal/markdown"
	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/internal/source"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func stubBuilder(t *testing.T) *source.LocalSource {
	t.Helper()
	src := source.NewLocalSource(posts.NewMemoryRepository())
	original := moduleBuilder
	t.Cleanup(func() { moduleBuilder = original })
	moduleBuilder = func(bootstrap.Options) (*bootstrap.Module, error) {
		return &bootstrap.Module{
			Source: src,
			Logger: logging.NoOp(),
		}, nil
	}
	return src
}

func TestRunImportSavesDocumentsThroughCommandHandler(t *testing.T) {
	src := stubBuilder(t)
	dir := t.TempDir()
	writeDoc(t, dir, "first.md", "---\ntitle: First Post\nslug: first-post\ntag: go\ndate: 2024-03-01\nexcerpt: Opening notes\n---\n## Intro\n\nHello.\n")
	writeDoc(t, dir, "nested/welcome.md", "---\ntag: misc\ndate: 2024-03-02\n---\nWelcome to the notes.\n")
	writeDoc(t, dir, "ignored.txt", "not markdown")

	var out bytes.Buffer
	if err := runImport(context.Background(), []string{dir}, &out); err != nil {
		t.Fatalf("runImport returned error: %v", err)
	}

	status, err := src.DraftStatus(context.Background())
	if err != nil {
		t.Fatalf("draft status: %v", err)
	}
	if status.UpsertCount != 2 {
		t.Fatalf("expected 2 drafts, got %d (output %q)", status.UpsertCount, out.String())
	}

	post, err := src.PostBySlug(context.Background(), "first-post")
	if err != nil || post == nil {
		t.Fatalf("expected first-post, got %v err=%v", post, err)
	}
	if post.Title != "First Post" || post.Tag != "go" || !strings.HasPrefix(post.Markdown, "## Intro") {
		t.Fatalf("unexpected post %+v", post)
	}

	welcome, err := src.PostBySlug(context.Background(), "welcome")
	if err != nil || welcome == nil {
		t.Fatalf("expected slug derived from filename, got %v err=%v", welcome, err)
	}
	if welcome.Excerpt != "Welcome to the notes." {
		t.Fatalf("expected excerpt from first paragraph, got %q", welcome.Excerpt)
	}
	if !strings.Contains(out.String(), "imported 2 posts") {
		t.Fatalf("expected summary, got %q", out.String())
	}
}

func TestRunImportDryRunSkipsWrites(t *testing.T) {
	src := stubBuilder(t)
	dir := t.TempDir()
	writeDoc(t, dir, "draft.md", "---\ntitle: Draft\ntag: go\ndate: 2024-01-01\nexcerpt: x\n---\nBody\n")

	var out bytes.Buffer
	if err := runImport(context.Background(), []string{dir, "--dry-run"}, &out); err != nil {
		t.Fatalf("runImport returned error: %v", err)
	}
	status, _ := src.DraftStatus(context.Background())
	if status.UpsertCount != 0 {
		t.Fatalf("expected dry run to skip writes, got %d drafts", status.UpsertCount)
	}
	if !strings.Contains(out.String(), "dry run: 1 documents validated") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunImportRejectsInvalidDocuments(t *testing.T) {
	stubBuilder(t)
	dir := t.TempDir()
	writeDoc(t, dir, "untagged.md", "---\ntitle: No Tag\nslug: no-tag\ndate: 2024-01-01\nexcerpt: x\n---\nBody\n")

	err := runImport(context.Background(), []string{dir}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "untagged.md") {
		t.Fatalf("expected error naming the document, got %v", err)
	}
}

func TestRunImportRequiresDirectory(t *testing.T) {
	stubBuilder(t)
	if err := runImport(context.Background(), nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected missing directory argument to fail")
	}
}

func TestImportCommandDerivesMissingFields(t *testing.T) {
	modified := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	doc := &markdown.Document{
		Path:        "notes/scratch.md",
		FrontMatter: markdown.FrontMatter{Tag: "misc"},
		Body:        "# Scratch\n\n```\ncode\n```\n\nFirst real paragraph.\n",
		ModTime:     modified,
	}

	msg, err := importCommand(doc)
	if err != nil {
		t.Fatalf("importCommand: %v", err)
	}
	if msg.Title != "Scratch" {
		t.Fatalf("expected title from heading, got %q", msg.Title)
	}
	if msg.Slug != "scratch" {
		t.Fatalf("expected slug scratch, got %q", msg.Slug)
	}
	if msg.Date != "2024-05-06" {
		t.Fatalf("expected date from mod time, got %q", msg.Date)
	}
	if msg.Excerpt != "First real paragraph." {
		t.Fatalf("unexpected excerpt %q", msg.Excerpt)
	}
	if msg.ReadingTime != 1 {
		t.Fatalf("expected one minute reading time, got %v", msg.ReadingTime)
	}
}

func TestTruncateAddsEllipsis(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncate("abcdefghij", 4); got != "abcd…" {
		t.Fatalf("unexpected %q", got)
	}
}
