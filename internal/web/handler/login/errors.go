// Package login provides the API handler for password login.
package login

import "errors"

var (
	// ErrInvalidCredentials is returned when the email and/or password are not valid.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDisabled is returned when an inactive account tries to log in.
	ErrAccountDisabled = errors.New("user account is disabled")
)
