package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-helpdesk/internal/auth"
	"github.com/spec-kit/campus-helpdesk/internal/config"
	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

// AuthService issues bearer tokens for directory users.
type AuthService struct {
	directory repository.DirectoryRepository
	tokens    *auth.TokenManager
}

// NewAuthService creates the service.
func NewAuthService(cfg config.Config, directory repository.DirectoryRepository) *AuthService {
	return &AuthService{
		directory: directory,
		tokens:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}
}

// IssueToken signs a token for the user with email. When password is not empty it
// must match the stored hash.
func (s *AuthService) IssueToken(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.directory.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if password != "" {
		if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
	}
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
