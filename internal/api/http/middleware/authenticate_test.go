package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpcontext "github.com/dtroode/taskboard-server/internal/api/http/context"
	"github.com/dtroode/taskboard-server/internal/apperrors"
	"github.com/dtroode/taskboard-server/internal/mocks"
	"github.com/dtroode/taskboard-server/internal/model"
	"github.com/dtroode/taskboard-server/internal/testutil"
)

func TestAuthenticate_Handle(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name        string
		header      string
		setup       func(ts *mocks.TokenService)
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "valid token",
			header:     "Bearer good",
			setup:      func(ts *mocks.TokenService) { ts.On("GetUserID", mock.Anything, "good").Return(userID, nil).Once() },
			wantStatus: http.StatusOK,
		},
		{
			name:       "scheme is case insensitive",
			header:     "bearer good",
			setup:      func(ts *mocks.TokenService) { ts.On("GetUserID", mock.Anything, "good").Return(userID, nil).Once() },
			wantStatus: http.StatusOK,
		},
		{
			name:        "missing header",
			header:      "",
			setup:       func(*mocks.TokenService) {},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No token provided",
		},
		{
			name:        "wrong scheme",
			header:      "Basic dXNlcjpwYXNz",
			setup:       func(*mocks.TokenService) {},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No token provided",
		},
		{
			name:        "scheme without token",
			header:      "Bearer ",
			setup:       func(*mocks.TokenService) {},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No token provided",
		},
		{
			name:        "bare token",
			header:      "good",
			setup:       func(*mocks.TokenService) {},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No token provided",
		},
		{
			name:   "expired token",
			header: "Bearer old",
			setup: func(ts *mocks.TokenService) {
				ts.On("GetUserID", mock.Anything, "old").
					Return(uuid.Nil, apperrors.NewErrInvalidAuthorizationToken(model.ErrTokenExpired)).Once()
			},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid or expired token",
		},
		{
			name:        "nil subject",
			header:      "Bearer weird",
			setup:       func(ts *mocks.TokenService) { ts.On("GetUserID", mock.Anything, "weird").Return(uuid.Nil, nil).Once() },
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid or expired token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := mocks.NewTokenService(t)
			tt.setup(ts)
			cm := httpcontext.NewManager()
			m := NewAuthenticate(ts, cm, testutil.MakeNoopLogger())

			var (
				reached bool
				gotID   uuid.UUID
			)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				gotID, _ = cm.GetUserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			m.Handle(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, reached)
				assert.Equal(t, userID, gotID)
				return
			}

			assert.False(t, reached)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMessage, body["message"])
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer a b", "", false},
		{"Token abc", "", false},
		{"Bearer", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := bearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticate_AttachesIdentityOnlyOnSuccess(t *testing.T) {
	userID := uuid.New()
	ts := mocks.NewTokenService(t)
	cm := mocks.NewContextManager(t)
	m := NewAuthenticate(ts, cm, testutil.MakeNoopLogger())
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	ts.On("GetUserID", mock.Anything, "expired").Return(uuid.Nil, model.ErrTokenExpired).Once()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer expired")
	m.Handle(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	cm.AssertNotCalled(t, "SetUserIDToContext", mock.Anything, mock.Anything)

	ts.On("GetUserID", mock.Anything, "good").Return(userID, nil).Once()
	cm.On("SetUserIDToContext", mock.Anything, userID).Return(context.Background()).Once()
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer good")
	m.Handle(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
