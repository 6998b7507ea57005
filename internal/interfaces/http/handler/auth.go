package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/infrastructure/auth"
	"github.com/restapi/backend/internal/interfaces/http/dto"
	"github.com/restapi/backend/internal/interfaces/http/middleware"
)

// Authenticator issues, refreshes and revokes bearer tokens
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.TokenPair, *identity.User, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

// UserLoader loads a user by id
type UserLoader interface {
	FindOne(ctx context.Context, id string, required bool) (*identity.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService Authenticator
	users       UserLoader
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService Authenticator, users UserLoader) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
	}
}

// GetToken godoc
// @ID           getToken
// @Summary      Get a token
// @Description  Exchange username and password for a bearer token pair. Roles come from the user's groups.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body GetTokenRequest true "Credentials"
// @Success      200 {object} APIResponse[TokenResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/get_token [post]
func (h *AuthHandler) GetToken(c *gin.Context) {
	var req GetTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pair, _, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTokenResponse(pair))
}

// RefreshToken godoc
// @ID           refreshToken
// @Summary      Refresh a token
// @Description  Exchange a refresh token for a new pair. The used refresh token is revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[TokenResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTokenResponse(pair))
}

// Logout godoc
// @ID           logout
// @Summary      Logout
// @Description  Revoke the bearer token used for this request
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[MessageData]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Logged out successfully"})
}

// Profile godoc
// @ID           getProfile
// @Summary      Current user
// @Description  Get the authenticated user
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[dto.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	userID := middleware.GetJWTUserID(c)
	if userID == "" {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.users.FindOne(c.Request.Context(), userID, false)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if user == nil {
		h.Unauthorized(c, "User no longer exists")
		return
	}

	h.Success(c, dto.NewUserResponse(user))
}
