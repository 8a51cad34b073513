package login

import "errors"

var (
	// ErrInvalidCredentials is returned when the provided username and/or password are not valid.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInternalServerError is returned for unexpected failures during the login process.
	ErrInternalServerError = errors.New("internal server error")
)
