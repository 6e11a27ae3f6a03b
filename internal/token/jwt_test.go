package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/taskboard-server/internal/config"
	"github.com/dtroode/taskboard-server/internal/model"
)

func testConfig() config.JWT {
	return config.JWT{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "taskboard-test",
	}
}

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	j := NewJWT(testConfig())
	u := uuid.New()

	access, err := j.GenerateAccessToken(u, "a@example.com")
	require.NoError(t, err)

	got, err := j.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, u, got.UserID)
	assert.Equal(t, "a@example.com", got.Email)
	assert.WithinDuration(t, got.IssuedAt.Add(15*time.Minute), got.ExpiresAt, time.Second)
}

func TestJWT_RefreshToken_Roundtrip(t *testing.T) {
	j := NewJWT(testConfig())
	u := uuid.New()

	refresh, err := j.GenerateRefreshToken(u, "a@example.com")
	require.NoError(t, err)

	got, err := j.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, u, got.UserID)
	assert.WithinDuration(t, got.IssuedAt.Add(7*24*time.Hour), got.ExpiresAt, time.Second)
}

func TestJWT_RefreshTokens_AreUnique(t *testing.T) {
	j := NewJWT(testConfig())
	fixed := time.Now()
	j.now = func() time.Time { return fixed }
	u := uuid.New()

	first, err := j.GenerateRefreshToken(u, "a@example.com")
	require.NoError(t, err)
	second, err := j.GenerateRefreshToken(u, "a@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestJWT_KindsAreNotInterchangeable(t *testing.T) {
	j := NewJWT(testConfig())
	u := uuid.New()

	access, err := j.GenerateAccessToken(u, "a@example.com")
	require.NoError(t, err)
	refresh, err := j.GenerateRefreshToken(u, "a@example.com")
	require.NoError(t, err)

	_, err = j.ParseRefreshToken(access)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)

	_, err = j.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_TypeClaimChecked(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	j := NewJWT(cfg)

	refresh, err := j.GenerateRefreshToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	_, err = j.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT(testConfig())
	issued := time.Now()
	j.now = func() time.Time { return issued }

	access, err := j.GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	j.now = func() time.Time { return issued.Add(16 * time.Minute) }

	_, err = j.ParseAccessToken(access)
	assert.ErrorIs(t, err, model.ErrTokenExpired)
	assert.NotErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_Tampered(t *testing.T) {
	j := NewJWT(testConfig())
	access, err := j.GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	parts := strings.Split(access, ".")
	require.Len(t, parts, 3)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "taskboard-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:    uuid.New(),
		TokenType: typeAccess,
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	tests := []struct {
		name  string
		token string
	}{
		{name: "foreign payload", token: parts[0] + "." + forgedParts[1] + "." + parts[2]},
		{name: "foreign signature", token: parts[0] + "." + parts[1] + "." + forgedParts[2]},
		{name: "wrong secret", token: forged},
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.ParseAccessToken(tt.token)
			assert.ErrorIs(t, err, model.ErrTokenInvalid)
		})
	}
}

func TestJWT_RejectsOtherSigningMethods(t *testing.T) {
	j := NewJWT(testConfig())

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "taskboard-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:    uuid.New(),
		TokenType: typeAccess,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = j.ParseAccessToken(unsigned)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_WrongIssuer(t *testing.T) {
	j := NewJWT(testConfig())
	other := testConfig()
	other.Issuer = "someone-else"

	access, err := NewJWT(other).GenerateAccessToken(uuid.New(), "a@example.com")
	require.NoError(t, err)

	_, err = j.ParseAccessToken(access)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)
}
