package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/config"
	"github.com/arzfeed/pricegate-api/internal/ierr"
)

const testJWTSecret = "test-secret-0123456789"

func newTestAuthService(t *testing.T, issuer string) *AuthService {
	t.Helper()
	svc, err := NewAuthService(&config.AuthConfig{JWTSecret: testJWTSecret, Issuer: issuer}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService(&config.AuthConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	svc := newTestAuthService(t, "")

	raw := signToken(t, testJWTSecret, Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acct-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "acct-42", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestAuthService(t, "")

	raw := signToken(t, testJWTSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acct-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, err := svc.ValidateToken(raw)
	assert.ErrorIs(t, err, ierr.ErrInvalidToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := newTestAuthService(t, "")

	raw := signToken(t, "some-other-secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acct-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := svc.ValidateToken(raw)
	assert.ErrorIs(t, err, ierr.ErrInvalidToken)
}

func TestValidateTokenMissingSubject(t *testing.T) {
	svc := newTestAuthService(t, "")

	raw := signToken(t, testJWTSecret, Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := svc.ValidateToken(raw)
	assert.ErrorIs(t, err, ierr.ErrInvalidToken)
}

func TestValidateTokenIssuerEnforced(t *testing.T) {
	svc := newTestAuthService(t, "https://id.arzfeed.dev")

	wrongIssuer := signToken(t, testJWTSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acct-42",
			Issuer:    "https://evil.example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	_, err := svc.ValidateToken(wrongIssuer)
	assert.ErrorIs(t, err, ierr.ErrInvalidToken)

	good := signToken(t, testJWTSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acct-42",
			Issuer:    "https://id.arzfeed.dev",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	_, err = svc.ValidateToken(good)
	assert.NoError(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := newTestAuthService(t, "")

	_, err := svc.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ierr.ErrInvalidToken)
}
