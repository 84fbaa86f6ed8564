// Package common defines shared constants and sentinel errors used across
// filevault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrNoAccess is returned when a resource is absent or the caller may not
	// touch it. The two cases are deliberately indistinguishable.
	ErrNoAccess = errors.New("not found or access denied")

	// Registration errors.
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Folder tree errors.
	ErrFolderCycle   = errors.New("folder hierarchy contains a cycle")
	ErrFolderTooDeep = errors.New("folder hierarchy too deep")
)
