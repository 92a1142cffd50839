package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

func baseRepository() *posts.MemoryRepository {
	return posts.NewMemoryRepository(
		interfaces.Post{PostMeta: interfaces.PostMeta{Slug: "alpha", Title: "Alpha", Tag: "go", Date: "2024-01-01", Excerpt: "a"}, Markdown: "# Alpha"},
		interfaces.Post{PostMeta: interfaces.PostMeta{Slug: "beta", Title: "Beta", Tag: "web", Date: "2024-02-01", Excerpt: "b"}, Markdown: "# Beta"},
	)
}

func draft(slug, date string) interfaces.Post {
	return interfaces.Post{
		PostMeta: interfaces.PostMeta{Slug: slug, Title: "Draft " + slug, Tag: "go", Date: date, Excerpt: "draft"},
		Markdown: "draft body",
	}
}

func metaSlugs(list []interfaces.PostMeta) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.Slug)
	}
	return out
}

func TestLocalSourceOverlaysEdits(t *testing.T) {
	ctx := context.Background()
	src := NewLocalSource(baseRepository())

	replaced := draft("alpha", "2024-01-01")
	replaced.Title = "Alpha v2"
	if _, err := src.UpsertPost(ctx, replaced); err != nil {
		t.Fatalf("UpsertPost replace: %v", err)
	}
	if _, err := src.UpsertPost(ctx, draft("gamma", "2024-03-01")); err != nil {
		t.Fatalf("UpsertPost new: %v", err)
	}
	if err := src.DeletePost(ctx, "beta"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	all, err := src.AllPosts(ctx)
	if err != nil {
		t.Fatalf("AllPosts: %v", err)
	}
	got := metaSlugs(all)
	if len(got) != 2 || got[0] != "gamma" || got[1] != "alpha" {
		t.Fatalf("unexpected listing %v", got)
	}
	if all[1].Title != "Alpha v2" {
		t.Fatalf("expected upsert to replace base meta, got %q", all[1].Title)
	}

	if post, _ := src.PostBySlug(ctx, "beta"); post != nil {
		t.Fatalf("expected deleted post to be hidden")
	}
	status, _ := src.DraftStatus(ctx)
	if status.UpsertCount != 2 || status.DeletedCount != 1 {
		t.Fatalf("unexpected draft status %#v", status)
	}
}

func TestLocalSourceUpsertRestoresDeleted(t *testing.T) {
	ctx := context.Background()
	src := NewLocalSource(baseRepository())

	if err := src.DeletePost(ctx, "beta"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, err := src.UpsertPost(ctx, draft("beta", "2024-02-01")); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}
	status, _ := src.DraftStatus(ctx)
	if status.DeletedCount != 0 {
		t.Fatalf("expected slug to leave deletedSlugs, got %#v", status)
	}
}

func TestLocalSourceDeleteDraftOnly(t *testing.T) {
	ctx := context.Background()
	src := NewLocalSource(baseRepository())

	if _, err := src.UpsertPost(ctx, draft("gamma", "2024-03-01")); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}
	if err := src.DeletePost(ctx, "gamma"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	status, _ := src.DraftStatus(ctx)
	if status.UpsertCount != 0 || status.DeletedCount != 0 {
		t.Fatalf("draft-only delete should leave no trace, got %#v", status)
	}
}

func TestLocalSourceUpsertRequiresFields(t *testing.T) {
	post := draft("gamma", "2024-03-01")
	post.Excerpt = "  "
	_, err := NewLocalSource(baseRepository()).UpsertPost(context.Background(), post)
	if !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLocalSourceReadsBaseBody(t *testing.T) {
	post, err := NewLocalSource(baseRepository()).PostBySlug(context.Background(), "alpha")
	if err != nil || post == nil {
		t.Fatalf("PostBySlug: %v", err)
	}
	if post.Markdown != "# Alpha\n" {
		t.Fatalf("unexpected body %q", post.Markdown)
	}
}

func TestLocalSourceRelatedAndAdjacent(t *testing.T) {
	ctx := context.Background()
	src := NewLocalSource(baseRepository())
	if _, err := src.UpsertPost(ctx, draft("gamma", "2024-03-01")); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}

	related, _ := src.RelatedPosts(ctx, "gamma", "go", 0)
	if got := metaSlugs(related); len(got) != 1 || got[0] != "alpha" {
		t.Fatalf("unexpected related %v", got)
	}

	adjacent, _ := src.AdjacentPosts(ctx, "beta")
	if adjacent.Previous == nil || adjacent.Previous.Slug != "alpha" || adjacent.Next == nil || adjacent.Next.Slug != "gamma" {
		t.Fatalf("unexpected adjacency %#v", adjacent)
	}

	editable, _ := src.EditablePosts(ctx)
	if len(editable) != 3 {
		t.Fatalf("expected 3 editable posts, got %d", len(editable))
	}
}

func TestLocalSourcePersistsEdits(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "edits.json")

	first := NewLocalSource(baseRepository(), WithEditsPath(path))
	if _, err := first.UpsertPost(ctx, draft("gamma", "2024-03-01")); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}
	if err := first.DeletePost(ctx, "alpha"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	second := NewLocalSource(baseRepository(), WithEditsPath(path))
	got := metaSlugs(mustAll(t, second))
	if len(got) != 2 || got[0] != "gamma" || got[1] != "beta" {
		t.Fatalf("expected persisted edits to reload, got %v", got)
	}

	if err := second.ClearLocalEdits(ctx); err != nil {
		t.Fatalf("ClearLocalEdits: %v", err)
	}
	third := NewLocalSource(baseRepository(), WithEditsPath(path))
	if got := metaSlugs(mustAll(t, third)); len(got) != 2 || got[0] != "beta" {
		t.Fatalf("expected cleared edits, got %v", got)
	}
}

func TestLocalSourceFailedPersistKeepsPreviousEdits(t *testing.T) {
	ctx := context.Background()
	// A directory at the edits path makes the final rename fail.
	path := filepath.Join(t.TempDir(), "edits")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := NewLocalSource(baseRepository(), WithEditsPath(path))

	changed := draft("alpha", "2024-01-01")
	changed.Markdown = "changed body"
	if _, err := src.UpsertPost(ctx, changed); !goerrors.IsCategory(err, goerrors.CategoryInternal) {
		t.Fatalf("expected internal error from failed write, got %v", err)
	}
	if err := src.DeletePost(ctx, "beta"); err == nil {
		t.Fatal("expected DeletePost to fail")
	}
	if err := src.ClearLocalEdits(ctx); err == nil {
		t.Fatal("expected ClearLocalEdits to fail")
	}

	status, err := src.DraftStatus(ctx)
	if err != nil {
		t.Fatalf("DraftStatus: %v", err)
	}
	if status.UpsertCount != 0 || status.DeletedCount != 0 {
		t.Fatalf("expected no edits after failed writes, got %#v", status)
	}
	post, err := src.PostBySlug(ctx, "alpha")
	if err != nil || post == nil || post.Markdown != "# Alpha\n" {
		t.Fatalf("expected base alpha body, got %#v (%v)", post, err)
	}
	if post, _ := src.PostBySlug(ctx, "beta"); post == nil {
		t.Fatal("expected beta to stay visible")
	}
}

func TestLocalSourceCorruptEditsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edits.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	status, err := NewLocalSource(baseRepository(), WithEditsPath(path)).DraftStatus(context.Background())
	if err != nil {
		t.Fatalf("DraftStatus: %v", err)
	}
	if status.UpsertCount != 0 || status.DeletedCount != 0 {
		t.Fatalf("expected empty edits, got %#v", status)
	}
}

func TestDecodeEditsDropsUnusableEntries(t *testing.T) {
	edits := decodeEdits([]byte(`{"upserts": {"a": {"slug": "a", "title": "A", "readingTime": "3"}, "b": 7}, "deletedSlugs": ["x", 1]}`))
	if len(edits.Upserts) != 1 || edits.Upserts["a"].ReadingTime != 3 {
		t.Fatalf("unexpected upserts %#v", edits.Upserts)
	}
	if len(edits.DeletedSlugs) != 1 || edits.DeletedSlugs[0] != "x" {
		t.Fatalf("unexpected deleted slugs %#v", edits.DeletedSlugs)
	}
}

func TestLocalSourceInvalidateReloadsBase(t *testing.T) {
	ctx := context.Background()
	repo := baseRepository()
	src := NewLocalSource(repo)
	mustAll(t, src)

	list, _ := repo.ListMeta(ctx)
	list = append(list, interfaces.PostMeta{Slug: "delta", Date: "2025-01-01"})
	if err := repo.SaveMeta(ctx, list); err != nil {
		t.Fatalf("SaveMeta: %v", err)
	}
	if got := mustAll(t, src); len(got) != 2 {
		t.Fatalf("expected cached base, got %v", metaSlugs(got))
	}

	events := make(chan posts.ChangeEvent, 1)
	events <- posts.ChangeEvent{Type: posts.ChangeReloaded}
	close(events)
	src.Watch(ctx, events)

	if got := mustAll(t, src); len(got) != 3 || got[0].Slug != "delta" {
		t.Fatalf("expected reloaded base, got %v", metaSlugs(got))
	}
}

func mustAll(t *testing.T, src *LocalSource) []interfaces.PostMeta {
	t.Helper()
	all, err := src.AllPosts(context.Background())
	if err != nil {
		t.Fatalf("AllPosts: %v", err)
	}
	return all
}
