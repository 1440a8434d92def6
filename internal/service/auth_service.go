package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/arzfeed/pricegate-api/internal/config"
	"github.com/arzfeed/pricegate-api/internal/ierr"
)

// Claims is what the external identity provider signs into bearer tokens.
// Subject is the opaque account id keys are owned by.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

func NewAuthService(cfg *config.AuthConfig, logger *zap.Logger) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth JWT secret is required")
	}
	return &AuthService{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		logger: logger.Named("AuthService"),
	}, nil
}

func (s *AuthService) ValidateToken(rawToken string) (*Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		s.logger.Warn("Bearer token validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ierr.ErrInvalidToken)
	}

	s.logger.Debug("Bearer token validated", zap.String("subject", claims.Subject))
	return &claims, nil
}
