package posts

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeNotFound     = "POST_NOT_FOUND"
	TextCodeInvalidSlug  = "POST_INVALID_SLUG"
	TextCodeInvalid      = "POST_INVALID"
	TextCodeSlugMismatch = "POST_SLUG_MISMATCH"
	TextCodeMetaInvalid  = "POSTS_META_INVALID"
	TextCodeStorage      = "POSTS_STORAGE_FAILED"
)

// NotFoundError reports a slug with no matching post.
func NotFoundError(slug string) *goerrors.Error {
	return goerrors.New("post not found", goerrors.CategoryNotFound).
		WithTextCode(TextCodeNotFound).
		WithMetadata(map[string]any{"slug": slug})
}

// InvalidSlugError reports a slug outside [a-z0-9-].
func InvalidSlugError(slug string) *goerrors.Error {
	return goerrors.New("invalid slug", goerrors.CategoryBadInput).
		WithTextCode(TextCodeInvalidSlug).
		WithMetadata(map[string]any{"slug": slug})
}

// SlugMismatchError reports a request path slug that differs from the body.
func SlugMismatchError(pathSlug, bodySlug string) *goerrors.Error {
	return goerrors.New("request path does not match the post slug", goerrors.CategoryBadInput).
		WithTextCode(TextCodeSlugMismatch).
		WithMetadata(map[string]any{"path_slug": pathSlug, "body_slug": bodySlug})
}

func storageError(err error, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).WithTextCode(TextCodeStorage)
}

// IsNotFound reports whether err marks a missing post.
func IsNotFound(err error) bool {
	return goerrors.IsNotFound(err)
}
