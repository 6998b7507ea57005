package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/infrastructure/auth"
	"github.com/restapi/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "test-issuer",
	})
}

// newTestUser returns a user holding role through one group.
func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	u := identity.NewUser()
	require.NoError(t, u.SetUsername("testuser"))
	g := identity.NewUserGroup()
	require.NoError(t, g.SetName("Group"))
	require.NoError(t, g.SetRole(role))
	g.AddUser(u)
	return u
}

func newTestTokenPair(t *testing.T, jwtService *auth.JWTService, role identity.Role) (*auth.TokenPair, *identity.User) {
	t.Helper()
	u := newTestUser(t, role)
	pair, err := jwtService.IssueFor(u)
	require.NoError(t, err)
	return pair, u
}

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}
