package postscmd

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

func validUpsert() UpsertPostCommand {
	return UpsertPostCommand{
		Slug:     "hello-world",
		Title:    "Hello",
		Tag:      "go",
		Date:     "2024-05-01",
		Excerpt:  "hi",
		Markdown: "body",
	}
}

func TestUpsertPostCommandValidateRequiresFields(t *testing.T) {
	err := UpsertPostCommand{Slug: "hello"}.Validate()
	errs, ok := err.(validation.Errors)
	if !ok {
		t.Fatalf("expected validation.Errors, got %T (%v)", err, err)
	}
	for _, field := range []string{"title", "tag", "date", "excerpt", "markdown"} {
		if _, found := errs[field]; !found {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
}

func TestUpsertPostCommandValidateRejectsBadSlug(t *testing.T) {
	cmd := validUpsert()
	cmd.Slug = "Hello World"
	errs, ok := cmd.Validate().(validation.Errors)
	if !ok || errs["slug"] == nil {
		t.Fatalf("expected slug error, got %v", errs)
	}

	if err := validUpsert().Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
}

func TestUpsertPostCommandPostNormalises(t *testing.T) {
	cmd := UpsertFromPost(interfaces.Post{
		PostMeta: interfaces.PostMeta{Slug: " hello ", Title: " Hello "},
		Markdown: "\n body \n",
	})
	post := cmd.Post()
	if post.Slug != "hello" || post.Title != "Hello" || post.Markdown != "body" {
		t.Fatalf("unexpected post %+v", post)
	}
	if post.ReadingTime != 5 {
		t.Fatalf("expected default reading time, got %v", post.ReadingTime)
	}
}

func TestDeletePostCommandValidate(t *testing.T) {
	if err := (DeletePostCommand{}).Validate(); err == nil {
		t.Fatal("expected missing slug error")
	}
	if err := (DeletePostCommand{Slug: "../etc"}).Validate(); err == nil {
		t.Fatal("expected invalid slug error")
	}
	if err := (DeletePostCommand{Slug: "ok-slug"}).Validate(); err != nil {
		t.Fatalf("expected valid slug, got %v", err)
	}
}
