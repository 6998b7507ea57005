// Package security issues and revokes the API's bearer tokens.
package security

import (
	"context"
	"errors"

	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/domain/shared"
	"github.com/restapi/backend/internal/infrastructure/auth"
	"github.com/restapi/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// UserFinder loads users for authentication
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*identity.User, error)
	FindOne(ctx context.Context, id string, required bool) (*identity.User, error)
}

var (
	errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid credentials.")
	errTokenRevoked       = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
)

// AuthService handles authentication operations
type AuthService struct {
	users     UserFinder
	tokens    *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users UserFinder,
	tokens *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Login checks the credentials and returns a token pair carrying the user's roles.
func (s *AuthService) Login(ctx context.Context, username, password string) (*auth.TokenPair, *identity.User, error) {
	log := logger.Enrich(ctx, s.logger)

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, shared.ErrNotFound) {
		log.Warn("Login for unknown user", zap.String("username", username))
		return nil, nil, errInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.VerifyPassword(password) {
		log.Warn("Login with wrong password", zap.String("username", username))
		return nil, nil, errInvalidCredentials
	}

	pair, err := s.tokens.IssueFor(user)
	if err != nil {
		log.Error("Failed to issue tokens", zap.Error(err))
		return nil, nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to issue tokens")
	}

	log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))
	return pair, user, nil
}

// Refresh exchanges a refresh token for a new pair. The used refresh token is revoked
// and roles are read again from the user's current groups.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	log := logger.Enrich(ctx, s.logger)

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		log.Warn("Refresh token rejected", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		}
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errTokenRevoked
	}

	user, err := s.users.FindOne(ctx, claims.UserID, false)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return nil, err
	}
	pair, err := s.tokens.IssueFor(user)
	if err != nil {
		return nil, err
	}

	log.Info("Token refreshed", zap.String("user_id", user.ID.String()))
	return pair, nil
}

// Logout revokes the access token identified by claims for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return err
	}

	logger.Enrich(ctx, s.logger).Info("User logged out",
		zap.String("user_id", claims.UserID),
		zap.String("jti", claims.ID))
	return nil
}

// IsRevoked reports whether the token id was revoked by a logout or refresh.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.blacklist.IsRevoked(ctx, jti)
}
