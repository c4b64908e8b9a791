package auth

import "errors"

var (
	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when no account matches the login email.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoSubject is returned when a request reaches a protected route without an authenticated user.
	ErrNoSubject = errors.New("no authenticated user")
)
