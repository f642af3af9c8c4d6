package domain

import "errors"

// Sentinel errors shared by services and repositories. Controllers map them
// to HTTP statuses with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("not authorized")
	ErrDuplicateUser      = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)
