package admin

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "ADMIN_INVALID_CREDENTIALS"
	TextCodeSessionRequired    = "ADMIN_SESSION_REQUIRED"
	TextCodeWeakPassword       = "ADMIN_WEAK_PASSWORD"
	TextCodeStorage            = "ADMIN_STORAGE_FAILED"
	TextCodeUnknownStore       = "ADMIN_UNKNOWN_OPERATION_STORE"
)

var (
	// ErrInvalidCredentials is returned for a wrong username or password.
	ErrInvalidCredentials = goerrors.New("invalid username or password", goerrors.CategoryAuth).
				WithTextCode(TextCodeInvalidCredentials)

	// ErrSessionRequired is returned when a request carries no active session.
	ErrSessionRequired = goerrors.New("admin login required", goerrors.CategoryAuth).
				WithTextCode(TextCodeSessionRequired)
)

func storageError(err error, message string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).WithTextCode(TextCodeStorage)
}
