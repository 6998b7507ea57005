// Package middleware provides the gin middleware chain of the API.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/infrastructure/telemetry"
)

// HTTPMetrics returns a middleware that records request count and latency per route.
// A nil recorder yields a pass-through middleware.
func HTTPMetrics(metrics *telemetry.HTTPMetrics) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.Record(c.Request.Context(), c.Request.Method, routePattern(c), c.Writer.Status(), time.Since(start))
	}
}

// routePattern returns the matched route (e.g. "/api/v1/user/:id") rather than the raw
// path, keeping metric cardinality bounded.
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
