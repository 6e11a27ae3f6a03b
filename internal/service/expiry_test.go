package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskboard-server/internal/apperrors"
	"github.com/dtroode/taskboard-server/internal/config"
	"github.com/dtroode/taskboard-server/internal/model"
	"github.com/dtroode/taskboard-server/internal/testutil"
	"github.com/dtroode/taskboard-server/internal/token"
)

// memoryRefreshStore keeps rows until they are consumed or deleted, like
// the postgres store. Nothing expires on its own.
type memoryRefreshStore struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken
}

func newMemoryRefreshStore() *memoryRefreshStore {
	return &memoryRefreshStore{rows: make(map[string]model.RefreshToken)}
}

func (s *memoryRefreshStore) Create(_ context.Context, token model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[token.TokenHash] = token
	return nil
}

func (s *memoryRefreshStore) Consume(_ context.Context, tokenHash string) (model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.rows[tokenHash]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	delete(s.rows, tokenHash)
	return rt, nil
}

func (s *memoryRefreshStore) Delete(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, tokenHash)
	return nil
}

func (s *memoryRefreshStore) DeleteAllByUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, rt := range s.rows {
		if rt.UserID == userID {
			delete(s.rows, hash)
		}
	}
	return nil
}

func (s *memoryRefreshStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func TestTokenService_Refresh_ExpiredTokenRevokesRow(t *testing.T) {
	ctx := context.Background()
	jwtCfg := config.JWT{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Second,
		RefreshTTL:    time.Second,
		Issuer:        "test",
	}
	store := newMemoryRefreshStore()
	svc := NewTokenService(token.NewJWT(jwtCfg), store, testutil.MakeNoopLogger(), jwtCfg.RefreshTTL)

	pair, err := svc.Issue(ctx, uuid.New(), "a@b.c")
	require.NoError(t, err)
	require.Equal(t, 1, store.count())

	time.Sleep(2100 * time.Millisecond)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	assert.ErrorIs(t, err, model.ErrTokenExpired)
	assert.Equal(t, 0, store.count())
}

func TestTokenService_Refresh_ForgedTokenLeavesOtherRows(t *testing.T) {
	ctx := context.Background()
	jwtCfg := config.JWT{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		Issuer:        "test",
	}
	store := newMemoryRefreshStore()
	svc := NewTokenService(token.NewJWT(jwtCfg), store, testutil.MakeNoopLogger(), jwtCfg.RefreshTTL)

	_, err := svc.Issue(ctx, uuid.New(), "a@b.c")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, "not-a-jwt")
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	assert.Equal(t, 1, store.count())
}
