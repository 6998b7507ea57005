package middleware

import (
	"net/http"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestControllerFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/user":                      "user",
		"/api/v1/user/:id":                  "user",
		"/api/v1/user_group/:id/user/:user": "user_group",
		"/api/v2/auth/get_token":            "auth",
		"/":                                 "",
		"/api/v1/:id":                       "",
	}
	for route, want := range tests {
		assert.Equal(t, want, controllerFromRoute(route), route)
	}
}

func TestProfilingLabels(t *testing.T) {
	labelsOf := func(c *gin.Context) map[string]string {
		got := map[string]string{}
		pprof.ForLabels(c.Request.Context(), func(k, v string) bool {
			got[k] = v
			return true
		})
		return got
	}

	t.Run("labels matched routes", func(t *testing.T) {
		var got map[string]string
		router := gin.New()
		router.Use(ProfilingLabels(true))
		router.GET("/api/v1/user/:id", func(c *gin.Context) {
			got = labelsOf(c)
			c.Status(http.StatusOK)
		})

		serve(router, http.MethodGet, "/api/v1/user/42", nil)
		assert.Equal(t, map[string]string{
			"route":      "/api/v1/user/:id",
			"method":     http.MethodGet,
			"controller": "user",
		}, got)
	})

	t.Run("skips health", func(t *testing.T) {
		var got map[string]string
		router := gin.New()
		router.Use(ProfilingLabels(true))
		router.GET("/health", func(c *gin.Context) {
			got = labelsOf(c)
			c.Status(http.StatusOK)
		})

		serve(router, http.MethodGet, "/health", nil)
		assert.Empty(t, got)
	})

	t.Run("disabled", func(t *testing.T) {
		var got map[string]string
		router := gin.New()
		router.Use(ProfilingLabels(false))
		router.GET("/api/v1/user", func(c *gin.Context) {
			got = labelsOf(c)
			c.Status(http.StatusOK)
		})

		serve(router, http.MethodGet, "/api/v1/user", nil)
		assert.Empty(t, got)
	})
}
