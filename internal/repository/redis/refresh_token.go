package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dtroode/taskboard-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenStore)(nil)

// RefreshTokenStore keeps refresh token rows in redis. Each row lives under
// its own key with a TTL equal to the row expiry; a per-user set indexes the
// hashes so every session of a user can be revoked at once.
type RefreshTokenStore struct {
	client goredis.UniversalClient
	prefix string
}

func NewRefreshTokenStore(client goredis.UniversalClient, prefix string) *RefreshTokenStore {
	return &RefreshTokenStore{
		client: client,
		prefix: prefix,
	}
}

type refreshTokenValue struct {
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *RefreshTokenStore) key(tokenHash string) string {
	return s.prefix + ":rt:" + tokenHash
}

func (s *RefreshTokenStore) userKey(userID uuid.UUID) string {
	return s.prefix + ":rt:user:" + userID.String()
}

func (s *RefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		// already dead; redis would keep it forever with a zero TTL
		return nil
	}

	data, err := json.Marshal(refreshTokenValue{
		UserID:    token.UserID,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode refresh token: %w", err)
	}

	userKey := s.userKey(token.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.key(token.TokenHash), data, ttl)
		pipe.SAdd(ctx, userKey, token.TokenHash)
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// Consume uses GETDEL, so only one caller ever receives the row.
func (s *RefreshTokenStore) Consume(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	data, err := s.client.GetDel(ctx, s.key(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	var v refreshTokenValue
	if err := json.Unmarshal(data, &v); err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to decode refresh token: %w", err)
	}

	if err := s.client.SRem(ctx, s.userKey(v.UserID), tokenHash).Err(); err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to unindex refresh token: %w", err)
	}

	return model.RefreshToken{
		TokenHash: tokenHash,
		UserID:    v.UserID,
		ExpiresAt: v.ExpiresAt,
		CreatedAt: v.CreatedAt,
	}, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, tokenHash string) error {
	_, err := s.Consume(ctx, tokenHash)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	userKey := s.userKey(userID)
	hashes, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list refresh tokens by user: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, s.key(h))
	}
	keys = append(keys, userKey)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh tokens by user: %w", err)
	}
	return nil
}

// Ping reports whether redis is reachable.
func (s *RefreshTokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
