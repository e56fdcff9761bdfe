package apperrors

import (
	"errors"
)

var (
	// Registration conflict: email is taken already
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Login failure. Deliberately the same error for unknown email and
	// wrong password so callers can't tell which check failed
	ErrAuthenticationFailed = errors.New("invalid email or password")

	// Access token failures: bad signature, malformed payload or expired
	ErrInvalidToken = errors.New("invalid access token")

	// Refresh session lifecycle failures
	ErrSessionNotFound = errors.New("refresh session not found")
	ErrSessionExpired  = errors.New("refresh session expired")

	// Storage kept failing transiently until retries ran out
	ErrServiceUnavailable = errors.New("service temporarily unavailable")

	// Password change failures
	ErrInvalidPassword  = errors.New("current password is incorrect")
	ErrPasswordMismatch = errors.New("new passwords do not match")

	ErrTodoNotFound = errors.New("todo not found")
)
