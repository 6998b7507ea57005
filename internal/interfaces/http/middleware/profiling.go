package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/infrastructure/telemetry"
)

// ProfilingLabels tags profiling samples taken while a request runs with its route
// pattern, method and resource. Unmatched routes, /health and swagger are skipped.
func ProfilingLabels(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" || strings.HasPrefix(route, "/swagger") {
			c.Next()
			return
		}

		labels := map[string]string{
			telemetry.ProfilingLabelRoute:      route,
			telemetry.ProfilingLabelMethod:     c.Request.Method,
			telemetry.ProfilingLabelController: controllerFromRoute(route),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// controllerFromRoute returns the first static segment after the /api/vN prefix:
// "/api/v1/user_group/:id/user/:user" gives "user_group".
func controllerFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || (s[0] != 'v' && s[0] != 'V') {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
