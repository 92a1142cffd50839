package posts

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

func seededService(t *testing.T) *Service {
	t.Helper()
	repo := NewMemoryRepository(
		interfaces.Post{PostMeta: interfaces.PostMeta{Slug: "first", Title: "First", Tag: "go", Date: "2024-01-01", Excerpt: "e"}, Markdown: "# First"},
		interfaces.Post{PostMeta: interfaces.PostMeta{Slug: "second", Title: "Second", Tag: "go", Date: "2024-02-01", Excerpt: "e"}, Markdown: "# Second"},
		interfaces.Post{PostMeta: interfaces.PostMeta{Slug: "third", Title: "Third", Tag: "", Date: "2024-03-01", Excerpt: "e"}},
	)
	return NewService(repo)
}

func TestServiceGet(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	post, err := svc.Get(ctx, "first")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.Markdown != "# First\n" {
		t.Fatalf("unexpected markdown %q", post.Markdown)
	}

	if _, err := svc.Get(ctx, "Not Valid"); !IsNotFound(err) {
		t.Fatalf("expected not found for invalid slug, got %v", err)
	}
	if _, err := svc.Get(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceTagsSkipEmpty(t *testing.T) {
	tags, err := seededService(t).Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "go" {
		t.Fatalf("expected [go], got %v", tags)
	}
}

func TestServiceRelatedDefaultsToPostTag(t *testing.T) {
	svc := seededService(t)
	related, err := svc.Related(context.Background(), "first", "", 50)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(related) != 1 || related[0].Slug != "second" {
		t.Fatalf("unexpected related %#v", related)
	}
	if _, err := svc.Related(context.Background(), "missing", "", 3); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClampRelatedLimit(t *testing.T) {
	cases := map[int]int{-1: 1, 0: 1, 3: 3, 20: 20, 21: 20}
	for in, want := range cases {
		if got := ClampRelatedLimit(in); got != want {
			t.Fatalf("ClampRelatedLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestServiceAdjacent(t *testing.T) {
	svc := seededService(t)
	adjacent, err := svc.Adjacent(context.Background(), "second")
	if err != nil {
		t.Fatalf("Adjacent: %v", err)
	}
	if adjacent.Previous.Slug != "first" || adjacent.Next.Slug != "third" {
		t.Fatalf("unexpected adjacency %#v", adjacent)
	}
}

func TestServiceSaveCreatesAndUpdates(t *testing.T) {
	svc := seededService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _ := svc.Subscribe(ctx)

	post := validPost()
	result, err := svc.Save(ctx, post)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !result.Created {
		t.Fatalf("expected create")
	}
	expectChange(t, events, ChangeCreated, post.Slug)

	post.Title = "Updated"
	result, err = svc.Save(ctx, post)
	if err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if result.Created {
		t.Fatalf("expected update")
	}
	expectChange(t, events, ChangeUpdated, post.Slug)

	list, _ := svc.List(ctx)
	if len(list) != 4 {
		t.Fatalf("expected 4 posts, got %d", len(list))
	}
}

func TestServiceSaveRejectsInvalid(t *testing.T) {
	post := validPost()
	post.Date = "yesterday"
	if _, err := seededService(t).Save(context.Background(), post); !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceDelete(t *testing.T) {
	svc := seededService(t)
	ctx := context.Background()

	if err := svc.Delete(ctx, "BAD slug"); !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
		t.Fatalf("expected bad input, got %v", err)
	}
	if err := svc.Delete(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, "first"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "first"); !IsNotFound(err) {
		t.Fatalf("expected deleted post to be gone, got %v", err)
	}
	body, _ := svc.Repository().ReadMarkdown(ctx, "first")
	if body != "" {
		t.Fatalf("expected markdown removed, got %q", body)
	}
}

func expectChange(t *testing.T, events <-chan ChangeEvent, want ChangeType, slug string) {
	t.Helper()
	select {
	case evt := <-events:
		if evt.Type != want || evt.Slug != slug {
			t.Fatalf("expected %s %s, got %#v", want, slug, evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
}
