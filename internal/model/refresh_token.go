package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists issued refresh tokens keyed by token hash.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	// Consume atomically loads and deletes the row. Only one caller can
	// consume a given hash; the others get ErrNotFound.
	Consume(ctx context.Context, tokenHash string) (RefreshToken, error)
	// Delete removes the row; a missing row is not an error.
	Delete(ctx context.Context, tokenHash string) error
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) error
}

type RefreshToken struct {
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the row is past its expiry at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
