package posts

import (
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate applies the publishing rules: a well formed slug, every required
// field present and an ISO calendar date.
func Validate(post interfaces.Post) error {
	err := validation.ValidateStruct(&post,
		validation.Field(&post.Slug,
			validation.Required.Error("slug is required"),
			validation.Match(slugPattern).Error("slug may only contain lowercase letters, digits and hyphens"),
		),
		validation.Field(&post.Title, validation.Required.Error("title is required")),
		validation.Field(&post.Tag, validation.Required.Error("tag is required")),
		validation.Field(&post.Date,
			validation.Required.Error("date is required"),
			validation.Match(datePattern).Error("date must use the YYYY-MM-DD format"),
		),
		validation.Field(&post.Excerpt, validation.Required.Error("excerpt is required")),
		validation.Field(&post.Markdown, validation.Required.Error("markdown is required")),
	)
	return toValidationError(err)
}

// ValidateDraft only checks that the fields a local draft needs are present.
func ValidateDraft(post interfaces.Post) error {
	err := validation.ValidateStruct(&post,
		validation.Field(&post.Slug, validation.Required),
		validation.Field(&post.Title, validation.Required),
		validation.Field(&post.Tag, validation.Required),
		validation.Field(&post.Date, validation.Required),
		validation.Field(&post.Excerpt, validation.Required),
		validation.Field(&post.Markdown, validation.Required),
	)
	return toValidationError(err)
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	verr := goerrors.FromOzzoValidation(err, "post is incomplete or invalid")
	sort.Slice(verr.ValidationErrors, func(i, j int) bool {
		return verr.ValidationErrors[i].Field < verr.ValidationErrors[j].Field
	})
	return verr.WithTextCode(TextCodeInvalid)
}
