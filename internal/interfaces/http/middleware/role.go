package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/interfaces/http/dto"
)

// RequireRole rejects requests whose token does not grant role, directly or through the
// role hierarchy. It must run after the JWT middleware.
func RequireRole(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(RequestIDKey)))
			return
		}
		if !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Access denied", c.GetString(RequestIDKey)))
			return
		}
		c.Next()
	}
}
