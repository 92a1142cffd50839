package postscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

const (
	upsertPostMessageType      = "notes.posts.upsert"
	deletePostMessageType      = "notes.posts.delete"
	clearLocalEditsMessageType = "notes.posts.clear_local_edits"
)

var slugRule = validation.By(func(value any) error {
	slug, _ := value.(string)
	if strings.TrimSpace(slug) == "" || posts.IsValidSlug(slug) {
		return nil
	}
	return validation.NewError("notes.posts.slug_invalid", "slug may only contain lowercase letters, digits and hyphens")
})

// UpsertPostCommand creates or replaces a post through the configured source.
type UpsertPostCommand struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Tag         string  `json:"tag"`
	Date        string  `json:"date"`
	Excerpt     string  `json:"excerpt"`
	Description string  `json:"description,omitempty"`
	ReadingTime float64 `json:"readingTime,omitempty"`
	Markdown    string  `json:"markdown"`
	// DryRun validates and logs without writing.
	DryRun bool `json:"dry_run,omitempty"`
}

// UpsertFromPost copies post into a command message.
func UpsertFromPost(post interfaces.Post) UpsertPostCommand {
	return UpsertPostCommand{
		Slug:        post.Slug,
		Title:       post.Title,
		Tag:         post.Tag,
		Date:        post.Date,
		Excerpt:     post.Excerpt,
		Description: post.Description,
		ReadingTime: post.ReadingTime,
		Markdown:    post.Markdown,
	}
}

// Type implements command.Message.
func (UpsertPostCommand) Type() string { return upsertPostMessageType }

// Validate checks the fields every source requires.
func (cmd UpsertPostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Slug, validation.Required, slugRule),
		validation.Field(&cmd.Title, validation.Required),
		validation.Field(&cmd.Tag, validation.Required),
		validation.Field(&cmd.Date, validation.Required),
		validation.Field(&cmd.Excerpt, validation.Required),
		validation.Field(&cmd.Markdown, validation.Required),
	)
}

// Post returns the normalised post carried by the command.
func (cmd UpsertPostCommand) Post() interfaces.Post {
	return posts.Clean(interfaces.Post{
		PostMeta: interfaces.PostMeta{
			Slug:        cmd.Slug,
			Title:       cmd.Title,
			Tag:         cmd.Tag,
			Date:        cmd.Date,
			Excerpt:     cmd.Excerpt,
			Description: cmd.Description,
			ReadingTime: cmd.ReadingTime,
		},
		Markdown: cmd.Markdown,
	})
}

// DeletePostCommand removes a post through the configured source.
type DeletePostCommand struct {
	Slug string `json:"slug"`
}

// Type implements command.Message.
func (DeletePostCommand) Type() string { return deletePostMessageType }

// Validate requires a well-formed slug.
func (cmd DeletePostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Slug, validation.Required, slugRule),
	)
}

// ClearLocalEditsCommand discards unpublished local edits.
type ClearLocalEditsCommand struct{}

// Type implements command.Message.
func (ClearLocalEditsCommand) Type() string { return clearLocalEditsMessageType }
