package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrUpstream       = errors.New("upstream service error")

	// Credential and token errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")

	// Uniqueness violations, both match ErrConflict
	ErrEmailTaken    = fmt.Errorf("email %w", ErrConflict)
	ErrUsernameTaken = fmt.Errorf("username %w", ErrConflict)
)
