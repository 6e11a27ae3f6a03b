package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskboard-server/internal/apperrors"
	"github.com/dtroode/taskboard-server/internal/mocks"
	"github.com/dtroode/taskboard-server/internal/model"
	"github.com/dtroode/taskboard-server/internal/testutil"
)

func newTestAuthHandler(t *testing.T) (*Auth, *mocks.AuthService, *mocks.SessionService) {
	authService := mocks.NewAuthService(t)
	sessionService := mocks.NewSessionService(t)
	return NewAuth(authService, sessionService, noopRecorder{}, testutil.MakeNoopLogger()), authService, sessionService
}

func post(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuth_Register(t *testing.T) {
	h, authService, _ := newTestAuthHandler(t)
	name := "Alice"
	session := model.Session{
		User: model.User{
			ID:           uuid.New(),
			Email:        "alice@example.com",
			PasswordHash: "must-not-leak",
			Name:         &name,
			CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		Tokens: model.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
	}
	authService.On("Register", mock.Anything, model.RegisterParams{
		Email:    "alice@example.com",
		Password: "secret1",
		Name:     &name,
	}).Return(session, nil).Once()

	rec := httptest.NewRecorder()
	h.Register(rec, post(`{"email":" alice@example.com ","password":"secret1","name":"Alice"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "User registered successfully", env.Message)
	assert.JSONEq(t, `{
		"user": {"id": "`+session.User.ID.String()+`", "email": "alice@example.com", "name": "Alice", "createdAt": "2026-01-02T03:04:05Z"},
		"accessToken": "access",
		"refreshToken": "refresh"
	}`, string(env.Data))
	assert.NotContains(t, rec.Body.String(), "must-not-leak")
}

func TestAuth_Register_Rejected(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		setup       func(*mocks.AuthService)
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "invalid email",
			body:        `{"email":"nope","password":"secret1"}`,
			setup:       func(*mocks.AuthService) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "email must be a valid email",
		},
		{
			name:        "short password",
			body:        `{"email":"a@b.co","password":"123"}`,
			setup:       func(*mocks.AuthService) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "password must be at least 6 characters",
		},
		{
			name:        "malformed body",
			body:        `{"email":`,
			setup:       func(*mocks.AuthService) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
		{
			name: "email taken",
			body: `{"email":"a@b.co","password":"secret1"}`,
			setup: func(s *mocks.AuthService) {
				s.On("Register", mock.Anything, mock.Anything).Return(model.Session{}, apperrors.NewErrEmailIsTaken()).Once()
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "User with this email already exists",
		},
		{
			name: "internal failure",
			body: `{"email":"a@b.co","password":"secret1"}`,
			setup: func(s *mocks.AuthService) {
				s.On("Register", mock.Anything, mock.Anything).Return(model.Session{}, assert.AnError).Once()
			},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, authService, _ := newTestAuthHandler(t)
			tt.setup(authService)

			rec := httptest.NewRecorder()
			h.Register(rec, post(tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMessage, env.Message)
		})
	}
}

func TestAuth_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h, authService, _ := newTestAuthHandler(t)
		authService.On("Login", mock.Anything, model.LoginParams{Email: "bob@example.com", Password: "pw"}).
			Return(model.Session{User: model.User{ID: uuid.New(), Email: "bob@example.com"}, Tokens: model.TokenPair{AccessToken: "a", RefreshToken: "r"}}, nil).Once()

		rec := httptest.NewRecorder()
		h.Login(rec, post(`{"email":"bob@example.com","password":"pw"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "Login successful", env.Message)

		var data sessionResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "a", data.AccessToken)
		assert.Equal(t, "r", data.RefreshToken)
		assert.Nil(t, data.User.Name)
	})

	t.Run("bad credentials", func(t *testing.T) {
		h, authService, _ := newTestAuthHandler(t)
		authService.On("Login", mock.Anything, mock.Anything).
			Return(model.Session{}, apperrors.NewErrInvalidCredentials(model.ErrPasswordMismatch)).Once()

		rec := httptest.NewRecorder()
		h.Login(rec, post(`{"email":"bob@example.com","password":"wrong"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", decodeEnvelope(t, rec).Message)
	})

	t.Run("missing password", func(t *testing.T) {
		h, _, _ := newTestAuthHandler(t)

		rec := httptest.NewRecorder()
		h.Login(rec, post(`{"email":"bob@example.com"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "password is required", decodeEnvelope(t, rec).Message)
	})
}

func TestAuth_Refresh(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h, _, sessionService := newTestAuthHandler(t)
		sessionService.On("Refresh", mock.Anything, "old").
			Return(model.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil).Once()

		rec := httptest.NewRecorder()
		h.Refresh(rec, post(`{"refreshToken":"old"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "Tokens refreshed successfully", env.Message)
		assert.JSONEq(t, `{"accessToken":"a2","refreshToken":"r2"}`, string(env.Data))
	})

	t.Run("missing token", func(t *testing.T) {
		h, _, sessionService := newTestAuthHandler(t)
		sessionService.On("Refresh", mock.Anything, "").Return(model.TokenPair{}, apperrors.NewErrRefreshTokenRequired()).Once()

		rec := httptest.NewRecorder()
		h.Refresh(rec, post(`{}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Refresh token is required", decodeEnvelope(t, rec).Message)
	})

	t.Run("reused token", func(t *testing.T) {
		h, _, sessionService := newTestAuthHandler(t)
		sessionService.On("Refresh", mock.Anything, "used").
			Return(model.TokenPair{}, apperrors.NewErrInvalidRefreshToken(model.ErrTokenInvalid)).Once()

		rec := httptest.NewRecorder()
		h.Refresh(rec, post(`{"refreshToken":"used"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired refresh token", decodeEnvelope(t, rec).Message)
	})
}

func TestAuth_Logout(t *testing.T) {
	t.Run("with token", func(t *testing.T) {
		h, _, sessionService := newTestAuthHandler(t)
		sessionService.On("Logout", mock.Anything, "r").Return(nil).Once()

		rec := httptest.NewRecorder()
		h.Logout(rec, post(`{"refreshToken":"r"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.True(t, env.Success)
		assert.Equal(t, "Logged out successfully", env.Message)
		assert.Empty(t, env.Data)
	})

	t.Run("empty body", func(t *testing.T) {
		h, _, sessionService := newTestAuthHandler(t)
		sessionService.On("Logout", mock.Anything, "").Return(nil).Once()

		rec := httptest.NewRecorder()
		h.Logout(rec, post(``))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
