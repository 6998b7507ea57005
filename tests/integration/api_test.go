package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/restapi/backend/internal/application/resource"
	"github.com/restapi/backend/internal/application/security"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/domain/shared"
	"github.com/restapi/backend/internal/infrastructure/auth"
	"github.com/restapi/backend/internal/infrastructure/config"
	"github.com/restapi/backend/internal/infrastructure/persistence"
	"github.com/restapi/backend/internal/interfaces/form"
	"github.com/restapi/backend/internal/interfaces/http/handler"
	"github.com/restapi/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiServer struct {
	engine *gin.Engine
	db     *TestDB
	users  *resource.UserResource
	groups *resource.UserGroupResource
	logs   *persistence.GormLogRequestRepository
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tdb := NewTestDB(t)

	v := resource.NewValidator()
	groups := resource.NewUserGroupResource(persistence.NewGormUserGroupRepository(tdb.DB), v, zap.NewNop())
	users := resource.NewUserResource(persistence.NewGormUserRepository(tdb.DB), form.NewUserGroupTransformer(groups), v, zap.NewNop())
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "integration",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	logs := persistence.NewGormLogRequestRepository(tdb.DB)

	cfg := &config.Config{
		HTTP:       config.HTTPConfig{MaxBodySize: 1 << 20},
		RequestLog: config.RequestLogConfig{Enabled: true, IgnoredRoutes: []string{"/health"}},
	}
	engine := router.New(router.Dependencies{
		Config:      cfg,
		Logger:      zap.NewNop(),
		DB:          tdb.DB,
		JWT:         jwtService,
		Blacklist:   blacklist,
		LogRequests: logs,
		System:      handler.NewSystemHandler(&persistence.Database{DB: tdb.DB}, "integration"),
		Auth:        handler.NewAuthHandler(security.NewAuthService(users, jwtService, blacklist, zap.NewNop()), users),
		Users:       handler.NewUserHandler(users),
		UserGroups:  handler.NewUserGroupHandler(groups, users),
	})
	return &apiServer{engine: engine, db: tdb, users: users, groups: groups, logs: logs}
}

func (s *apiServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func data[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

// seedRoot stores a root user directly, bypassing the API
func (s *apiServer) seedRoot(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	g := &resource.UserGroupDTO{}
	g.SetName("Root users")
	g.SetRole(string(identity.RoleRoot))
	group, err := s.groups.Create(ctx, g)
	require.NoError(t, err)

	u := identity.NewUser()
	require.NoError(t, u.SetUsername("john-root"))
	require.NoError(t, u.SetFirstName("John"))
	require.NoError(t, u.SetLastName("Root"))
	require.NoError(t, u.SetEmail("john.root@example.com"))
	require.NoError(t, u.SetPlainPassword("password-root"))
	u.SetGroups([]*identity.UserGroup{group})
	require.NoError(t, s.users.Save(ctx, u, true, false))
}

func (s *apiServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/get_token", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return data[handler.TokenResponse](t, rec).Token
}

func TestAPI_UserLifecycle(t *testing.T) {
	s := newAPIServer(t)
	s.seedRoot(t)
	root := s.login(t, "john-root", "password-root")

	rec := s.do(t, http.MethodPost, "/api/v1/user_group", root, map[string]string{
		"name": "Editors",
		"role": string(identity.RoleAdmin),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	groupID := data[map[string]any](t, rec)["id"].(string)

	rec = s.do(t, http.MethodPost, "/api/v1/user", root, map[string]any{
		"username":      "alice",
		"firstName":     "Alice",
		"lastName":      "Liddell",
		"email":         "alice@example.com",
		"plainPassword": "wonderland",
		"userGroups":    []string{groupID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userID := data[map[string]any](t, rec)["id"].(string)

	rec = s.do(t, http.MethodPost, "/api/v1/user", root, map[string]any{
		"username":      "ALICE",
		"firstName":     "Other",
		"lastName":      "Alice",
		"email":         "other@example.com",
		"plainPassword": "wonderland",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	alice := s.login(t, "alice", "wonderland")
	rec = s.do(t, http.MethodGet, "/api/v1/profile", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := data[map[string]any](t, rec)
	assert.ElementsMatch(t, []any{"ROLE_ADMIN", "ROLE_USER", "ROLE_LOGGED"}, profile["roles"])

	rec = s.do(t, http.MethodDelete, "/api/v1/user_group/"+groupID+"/user/"+userID, root, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, data[[]any](t, rec))

	rec = s.do(t, http.MethodPost, "/api/v1/user_group/"+groupID+"/user/"+userID, root, nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/v1/user/"+userID, root, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/user_group/"+groupID, root, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_RequestLogIsStoredAsJSONB(t *testing.T) {
	s := newAPIServer(t)
	s.seedRoot(t)
	root := s.login(t, "john-root", "password-root")

	s.do(t, http.MethodGet, "/health", "", nil)
	s.do(t, http.MethodGet, "/api/v1/user?search=john", root, nil)

	entries, total, err := s.logs.FindAll(context.Background(), shared.DefaultFilter())
	require.NoError(t, err)
	require.EqualValues(t, 2, total, "get_token and the list call are logged")

	var listCall bool
	for _, e := range entries {
		if e.Path == "/api/v1/user" {
			listCall = true
			assert.Equal(t, "john", e.Parameters["search"])
			assert.NotNil(t, e.UserID)
		}
		if e.Path == "/api/v1/auth/get_token" {
			assert.Equal(t, "*******", e.Parameters["password"])
		}
	}
	assert.True(t, listCall)

	var headers string
	require.NoError(t, s.db.DB.Raw(`SELECT jsonb_typeof(headers) FROM log_request LIMIT 1`).Scan(&headers).Error)
	assert.Equal(t, "object", headers)
}
