package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func attributes(span sdktrace.ReadOnlySpan) map[attribute.Key]string {
	out := map[attribute.Key]string{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value.Emit()
	}
	return out
}

func TestTracing(t *testing.T) {
	recorder := withSpanRecorder(t)
	jwtService := newTestJWTService()
	pair, user := newTestTokenPair(t, jwtService, identity.RoleUser)

	router := gin.New()
	router.Use(RequestID(), Tracing(TracingConfig{ServiceName: "rest-api", Enabled: true}), SpanAttributes())
	api := router.Group("/api", JWTAuthMiddleware(jwtService))
	api.GET("/profile", func(c *gin.Context) { c.Status(http.StatusOK) })
	api.GET("/admin", RequireRole(identity.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(router, http.MethodGet, "/api/profile", bearer(pair.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := attributes(spans[0])
	assert.Equal(t, rec.Header().Get(RequestIDHeader), attrs["request_id"])
	assert.Equal(t, user.ID.String(), attrs["user_id"])
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)

	serve(router, http.MethodGet, "/api/admin", bearer(pair.AccessToken))
	spans = recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestTracing_Disabled(t *testing.T) {
	recorder := withSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}), SpanAttributes())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test", nil).Code)
	assert.Empty(t, recorder.Ended())
}
