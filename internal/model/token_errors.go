package model

import "errors"

var (
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenOwnerMismatch = errors.New("refresh token owner mismatch")
)
