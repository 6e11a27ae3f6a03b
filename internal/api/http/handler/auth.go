package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/taskboard-server/internal/api/http/response"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
)

// AuthService registers and logs in users.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.Session, error)
	Login(ctx context.Context, params model.LoginParams) (model.Session, error)
}

// SessionService rotates and revokes refresh tokens.
type SessionService interface {
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// EventRecorder counts session events.
type EventRecorder interface {
	AuthEvent(event string, err error)
}

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Name     *string `json:"name" validate:"omitnil,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type sessionResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func newSessionResponse(s model.Session) sessionResponse {
	return sessionResponse{
		User: userResponse{
			ID:        s.User.ID,
			Email:     s.User.Email,
			Name:      s.User.Name,
			CreatedAt: s.User.CreatedAt,
		},
		AccessToken:  s.Tokens.AccessToken,
		RefreshToken: s.Tokens.RefreshToken,
	}
}

// Auth serves /api/auth.
type Auth struct {
	authService    AuthService
	sessionService SessionService
	events         EventRecorder
	logger         *logger.Logger
}

func NewAuth(authService AuthService, sessionService SessionService, events EventRecorder, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		sessionService: sessionService,
		events:         events,
		logger:         logger,
	}
}

func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(w, r, &in, false); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	session, err := h.authService.Register(r.Context(), model.RegisterParams{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
	})
	h.events.AuthEvent("register", err)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", newSessionResponse(session))
}

func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(w, r, &in, false); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	session, err := h.authService.Login(r.Context(), model.LoginParams{
		Email:    in.Email,
		Password: in.Password,
	})
	h.events.AuthEvent("login", err)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Login successful", newSessionResponse(session))
}

func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshTokenRequest
	if err := decodeStrict(w, r, &in, true); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	tokens, err := h.sessionService.Refresh(r.Context(), in.RefreshToken)
	h.events.AuthEvent("refresh", err)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Tokens refreshed successfully", tokensResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	var in refreshTokenRequest
	if err := decodeStrict(w, r, &in, true); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	err := h.sessionService.Logout(r.Context(), in.RefreshToken)
	h.events.AuthEvent("logout", err)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Logged out successfully", nil)
}
