package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by stores on unique constraint violations.
	ErrAlreadyExists = errors.New("already exists")
	// ErrPasswordMismatch is returned by PasswordHasher.Compare.
	ErrPasswordMismatch = errors.New("password mismatch")
)
