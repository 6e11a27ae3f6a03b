package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager signs and verifies access/refresh tokens.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
	GenerateRefreshToken(userID uuid.UUID, email string) (string, error)
	ParseAccessToken(token string) (TokenClaims, error)
	ParseRefreshToken(token string) (TokenClaims, error)
}

// TokenClaims is the identity reconstructed from a verified token.
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is an access token together with the refresh token issued alongside it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is the result of a successful registration or login.
type Session struct {
	User   User
	Tokens TokenPair
}
