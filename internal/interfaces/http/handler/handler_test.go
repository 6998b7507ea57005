package handler

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/restapi/backend/internal/application/resource"
	"github.com/restapi/backend/internal/application/security"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/infrastructure/auth"
	"github.com/restapi/backend/internal/infrastructure/config"
	"github.com/restapi/backend/internal/infrastructure/persistence"
	"github.com/restapi/backend/internal/interfaces/form"
	"github.com/restapi/backend/internal/interfaces/http/middleware"
	"github.com/restapi/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testEnv wires the handlers over an in-memory database the way the server does.
type testEnv struct {
	db        *gorm.DB
	users     *resource.UserResource
	groups    *resource.UserGroupResource
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	v := resource.NewValidator()
	groups := resource.NewUserGroupResource(persistence.NewGormUserGroupRepository(db), v, zap.NewNop())
	users := resource.NewUserResource(
		persistence.NewGormUserRepository(db),
		form.NewUserGroupTransformer(groups),
		v,
		zap.NewNop(),
	)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "test-issuer",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	authHandler := NewAuthHandler(security.NewAuthService(users, jwtService, blacklist, zap.NewNop()), users)
	userHandler := NewUserHandler(users)
	groupHandler := NewUserGroupHandler(groups, users)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.UnitOfWork(db, zap.NewNop()))
	api := router.Group("/api/v1")
	api.POST("/auth/get_token", authHandler.GetToken)
	api.POST("/auth/refresh", authHandler.RefreshToken)

	cfg := middleware.DefaultJWTConfig(jwtService)
	cfg.TokenBlacklist = blacklist
	secured := api.Group("", middleware.JWTAuthMiddlewareWithConfig(cfg))
	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/profile", authHandler.Profile)
	secured.GET("/user", userHandler.List)
	secured.GET("/user/:id", userHandler.Get)
	secured.POST("/user", userHandler.Create)
	secured.PUT("/user/:id", userHandler.Update)
	secured.PATCH("/user/:id", userHandler.Patch)
	secured.DELETE("/user/:id", userHandler.Delete)
	secured.GET("/user_group", groupHandler.List)
	secured.GET("/user_group/:id", groupHandler.Get)
	secured.POST("/user_group", groupHandler.Create)
	secured.PATCH("/user_group/:id", groupHandler.Patch)
	secured.DELETE("/user_group/:id", groupHandler.Delete)
	secured.POST("/user_group/:id/user/:user", groupHandler.AttachUser)
	secured.DELETE("/user_group/:id/user/:user", groupHandler.DetachUser)

	return &testEnv{
		db:        db,
		users:     users,
		groups:    groups,
		jwt:       jwtService,
		blacklist: blacklist,
		router:    router,
	}
}

func (e *testEnv) group(t *testing.T, name string, role identity.Role) *identity.UserGroup {
	t.Helper()
	d := &resource.UserGroupDTO{}
	d.SetName(name)
	d.SetRole(string(role))
	g, err := e.groups.Create(context.Background(), d)
	require.NoError(t, err)
	return g
}

// user stores a user with the given password, member of the given groups.
func (e *testEnv) user(t *testing.T, username, password string, groups ...*identity.UserGroup) *identity.User {
	t.Helper()
	u := identity.NewUser()
	require.NoError(t, u.SetUsername(username))
	require.NoError(t, u.SetFirstName("First"))
	require.NoError(t, u.SetLastName("Last"))
	require.NoError(t, u.SetEmail(username+"@example.com"))
	if password != "" {
		require.NoError(t, u.SetPlainPassword(password))
	} else {
		u.PasswordHash = "$2a$04$hash"
	}
	u.SetGroups(groups)
	require.NoError(t, e.users.Save(context.Background(), u, true, false))
	return u
}

// token returns an access token for a fresh user holding role.
func (e *testEnv) token(t *testing.T, role identity.Role) string {
	t.Helper()
	u := e.user(t, "caller-"+string(role), "", e.group(t, "Callers "+string(role), role))
	pair, err := e.jwt.IssueFor(u)
	require.NoError(t, err)
	return pair.AccessToken
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decode returns the envelope's data field.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.True(t, envelope.Success, rec.Body.String())
	return envelope.Data
}
