package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/taskboard-server/internal/apperrors"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
)

// TokenService provides high-level operations for issuing, refreshing,
// and revoking tokens. It composes the TokenManager and RefreshTokenStore.
type TokenService struct {
	manager    model.TokenManager
	store      model.RefreshTokenStore
	logger     *logger.Logger
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(manager model.TokenManager, store model.RefreshTokenStore, logger *logger.Logger, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		manager:    manager,
		store:      store,
		logger:     logger,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue signs a new token pair and persists the refresh half. It is the
// only place refresh token rows are written.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, email string) (model.TokenPair, error) {
	access, err := s.manager.GenerateAccessToken(userID, email)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(userID, email)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue refresh: %w", err)
	}

	now := s.now()
	rt := model.RefreshToken{
		TokenHash: hashRefresh(refresh),
		UserID:    userID,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, rt); err != nil {
		return model.TokenPair{}, fmt.Errorf("persist refresh: %w", err)
	}

	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates a refresh token. The presented row is consumed before the
// new pair is issued: if issuing fails the user has to log in again, but the
// old token never stays usable next to the new one.
func (s *TokenService) Refresh(ctx context.Context, presented string) (model.TokenPair, error) {
	if presented == "" {
		return model.TokenPair{}, apperrors.NewErrRefreshTokenRequired()
	}

	claims, err := s.manager.ParseRefreshToken(presented)
	if err != nil {
		s.logger.Debug("Token service: refresh token rejected by codec",
			"error", err.Error())
		s.revoke(ctx, presented)
		return model.TokenPair{}, apperrors.NewErrInvalidRefreshToken(err)
	}

	rt, err := s.store.Consume(ctx, hashRefresh(presented))
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Token service: refresh token not found or already used",
			"user_id", claims.UserID)
		return model.TokenPair{}, apperrors.NewErrInvalidRefreshToken(model.ErrTokenInvalid)
	}
	if err != nil {
		s.logger.Error("Token service: failed to consume refresh token",
			"user_id", claims.UserID,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("consume refresh: %w", err)
	}

	if rt.Expired(s.now()) {
		return model.TokenPair{}, apperrors.NewErrInvalidRefreshToken(model.ErrTokenExpired)
	}
	if rt.UserID != claims.UserID {
		s.logger.Warn("Token service: refresh token owner mismatch",
			"claim_user_id", claims.UserID,
			"row_user_id", rt.UserID)
		return model.TokenPair{}, apperrors.NewErrInvalidRefreshToken(model.ErrTokenOwnerMismatch)
	}

	pair, err := s.Issue(ctx, claims.UserID, claims.Email)
	if err != nil {
		s.logger.Error("Token service: failed to issue rotated tokens",
			"user_id", claims.UserID,
			"error", err.Error())
		return model.TokenPair{}, err
	}

	s.logger.Debug("Token service: refresh token rotated",
		"user_id", claims.UserID)

	return pair, nil
}

// Logout forgets the refresh token. Unknown and empty tokens are not errors.
func (s *TokenService) Logout(ctx context.Context, presented string) error {
	if presented == "" {
		return nil
	}
	if err := s.store.Delete(ctx, hashRefresh(presented)); err != nil {
		s.logger.Error("Token service: failed to delete refresh token",
			"error", err.Error())
		return fmt.Errorf("delete refresh: %w", err)
	}
	return nil
}

// revoke drops the stored row of a rejected token, if there is one. A token
// whose signature has expired has a row expiring at the same second, so
// this is where naturally expired rows leave the store.
func (s *TokenService) revoke(ctx context.Context, presented string) {
	if err := s.store.Delete(ctx, hashRefresh(presented)); err != nil {
		s.logger.Warn("Token service: failed to revoke rejected refresh token",
			"error", err.Error())
	}
}

func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return s.store.DeleteAllByUser(ctx, userID)
}

// GetUserID verifies an access token and returns its subject.
func (s *TokenService) GetUserID(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.manager.ParseAccessToken(token)
	if err != nil {
		return uuid.Nil, apperrors.NewErrInvalidAuthorizationToken(err)
	}
	return claims.UserID, nil
}

func hashRefresh(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
