package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/intervu-ai/intervu-server/internal/config"
	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const roleInterviewer = "interviewer"

// authService gates the interviewer dashboard behind a single configured
// credential pair. There is no interviewer user table; candidates never
// authenticate at all.
type authService struct {
	cfg        config.AuthConfig
	jwtManager *jwt.JWTManager
}

func NewAuthService(cfg config.AuthConfig, jwtManager *jwt.JWTManager) domain.AuthService {
	return &authService{
		cfg:        cfg,
		jwtManager: jwtManager,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	if !strings.EqualFold(email, s.cfg.AdminEmail) {
		return "", ErrInvalidCredentials
	}

	if !s.passwordMatches(password) {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(s.cfg.AdminEmail, roleInterviewer)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (string, error) {
	claims, err := s.jwtManager.Validate(token)
	if err != nil {
		return "", err
	}
	if claims.Role != roleInterviewer {
		return "", jwt.ErrInvalidToken
	}
	return claims.Email, nil
}

func (s *authService) passwordMatches(password string) bool {
	if s.cfg.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.cfg.AdminPassword), []byte(password)) == 1
}
