package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/taskboard-server/internal/config"
	"github.com/dtroode/taskboard-server/internal/model"
)

var _ model.TokenManager = (*JWT)(nil)

// Claims represents JWT claims carried by both token kinds.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	TokenType string    `json:"typ"`
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

type signingKey struct {
	secret    []byte
	ttl       time.Duration
	tokenType string
}

// JWT implements TokenManager backed by symmetric HMAC, with one key per
// token kind.
type JWT struct {
	access  signingKey
	refresh signingKey
	issuer  string
	now     func() time.Time
}

// NewJWT creates a token manager from the JWT section of the config.
func NewJWT(cfg config.JWT) *JWT {
	return &JWT{
		access:  signingKey{secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL, tokenType: typeAccess},
		refresh: signingKey{secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL, tokenType: typeRefresh},
		issuer:  cfg.Issuer,
		now:     time.Now,
	}
}

// GenerateAccessToken creates a short-lived access token.
func (j *JWT) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	token, err := j.sign(j.access, userID, email)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// GenerateRefreshToken creates a long-lived refresh token. Every token gets
// a fresh jti, so two tokens for the same user are never equal.
func (j *JWT) GenerateRefreshToken(userID uuid.UUID, email string) (string, error) {
	token, err := j.sign(j.refresh, userID, email)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.TokenClaims, error) {
	return j.verify(j.access, tokenString)
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (j *JWT) ParseRefreshToken(tokenString string) (model.TokenClaims, error) {
	return j.verify(j.refresh, tokenString)
}

func (j *JWT) sign(key signingKey, userID uuid.UUID, email string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.ttl)),
		},
		UserID:    userID,
		Email:     email,
		TokenType: key.tokenType,
	})

	return token.SignedString(key.secret)
}

func (j *JWT) verify(key signingKey, tokenString string) (model.TokenClaims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return key.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.TokenClaims{}, fmt.Errorf("%w: %s token", model.ErrTokenExpired, key.tokenType)
		}
		return model.TokenClaims{}, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}
	if claims.TokenType != key.tokenType {
		return model.TokenClaims{}, fmt.Errorf("%w: token type mismatch: %s", model.ErrTokenInvalid, claims.TokenType)
	}
	if claims.UserID == uuid.Nil {
		return model.TokenClaims{}, fmt.Errorf("%w: missing user id", model.ErrTokenInvalid)
	}

	return model.TokenClaims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
