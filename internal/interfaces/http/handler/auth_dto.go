package handler

import (
	"time"

	"github.com/restapi/backend/internal/infrastructure/auth"
)

// GetTokenRequest represents the credentials exchanged for a token pair
type GetTokenRequest struct {
	Username string `json:"username" binding:"required,max=180"`
	Password string `json:"password" binding:"required,max=4096"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents an issued token pair
// @Description Bearer token pair
type TokenResponse struct {
	Token                 string    `json:"token"`
	RefreshToken          string    `json:"refreshToken"`
	ExpiresAt             time.Time `json:"expiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType" example:"Bearer"`
}

func newTokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		Token:                 pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		ExpiresAt:             pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}
