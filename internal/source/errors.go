package source

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeUnknownMode      = "SOURCE_UNKNOWN_MODE"
	TextCodeBaseURLRequired  = "SOURCE_API_BASE_URL_REQUIRED"
	TextCodeRequestFailed    = "SOURCE_API_REQUEST_FAILED"
	TextCodeClearUnsupported = "SOURCE_CLEAR_UNSUPPORTED"
	TextCodeEditsPersist     = "SOURCE_EDITS_PERSIST_FAILED"
)

// ErrClearUnsupported is returned by APISource.ClearLocalEdits.
var ErrClearUnsupported = goerrors.New("local edits do not need clearing in API mode", goerrors.CategoryOperation).
	WithTextCode(TextCodeClearUnsupported)

// requestError keeps the remote status so callers can branch on category.
func requestError(status int, message string) *goerrors.Error {
	return goerrors.New(message, goerrors.HTTPStatusToCategory(status)).
		WithCode(status).
		WithTextCode(TextCodeRequestFailed)
}
