package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/infrastructure/config"
	"github.com/restapi/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg config.SwaggerConfig) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func requestFrom(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rec := requestFrom(swaggerRouter(config.SwaggerConfig{Enabled: false}), "10.0.0.1:1234")
		testutil.AssertErrorEnvelope(t, rec, http.StatusNotFound, "ERR_NOT_FOUND")
	})

	t.Run("enabled without restriction", func(t *testing.T) {
		rec := requestFrom(swaggerRouter(config.SwaggerConfig{Enabled: true}), "203.0.113.7:1234")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ip whitelist", func(t *testing.T) {
		router := swaggerRouter(config.SwaggerConfig{
			Enabled:    true,
			AllowedIPs: []string{"127.0.0.1", "10.0.0.0/8", "not-an-ip"},
		})

		assert.Equal(t, http.StatusOK, requestFrom(router, "127.0.0.1:5000").Code)
		assert.Equal(t, http.StatusOK, requestFrom(router, "10.20.30.40:5000").Code)

		rec := requestFrom(router, "192.168.1.1:5000")
		testutil.AssertErrorEnvelope(t, rec, http.StatusForbidden, "ERR_FORBIDDEN")
	})
}
