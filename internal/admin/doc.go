// Package admin implements the admin backend: the password policy, cookie
// sessions persisted to sessions.json, and the operation log with file or
// SQL storage.
package admin
