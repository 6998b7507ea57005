package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/logrequest"
	"github.com/restapi/backend/internal/infrastructure/config"
	"github.com/restapi/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// RequestLog writes a LogRequest row after every request whose route is not ignored.
// Ignored routes are matched against the gin route pattern (e.g. "/swagger/*any").
// Persistence failures are logged and never change the response.
func RequestLog(cfg config.RequestLogConfig, repo logrequest.Repository, log *zap.Logger) gin.HandlerFunc {
	if !cfg.Enabled || repo == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	masker := logrequest.NewMasker(cfg.SensitiveProperties)

	return func(c *gin.Context) {
		if slices.Contains(cfg.IgnoredRoutes, c.FullPath()) {
			c.Next()
			return
		}

		start := time.Now()
		body := captureBody(c)

		c.Next()

		entry := logrequest.New(c.Request.Method, c.Request.URL.Path)
		entry.Scheme = requestScheme(c)
		entry.Host = c.Request.Host
		entry.Query = c.Request.URL.RawQuery
		entry.ClientIP = c.ClientIP()
		entry.UserAgent = c.Request.UserAgent()
		entry.Headers = masker.MaskHeaders(c.Request.Header)
		entry.Parameters = masker.Mask(requestParameters(c, body))
		entry.StatusCode = c.Writer.Status()
		entry.ResponseSize = max(c.Writer.Size(), 0)
		entry.Duration = time.Since(start)
		if id, err := uuid.Parse(GetJWTUserID(c)); err == nil {
			entry.UserID = &id
		}

		ctx := context.WithoutCancel(c.Request.Context())
		if err := repo.Save(ctx, entry); err != nil {
			logger.Enrich(ctx, log).Error("Failed to persist request log",
				zap.String("path", entry.Path),
				zap.Error(err),
			)
		}
	}
}

// captureBody reads the request body and puts an identical reader back for the handlers.
// A read error (such as the body limit) is replayed to the handler after the bytes read.
func captureBody(c *gin.Context) []byte {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	data, err := io.ReadAll(c.Request.Body)
	original := c.Request.Body
	if err != nil {
		c.Request.Body = readCloser{io.MultiReader(bytes.NewReader(data), errReader{err}), original}
		return nil
	}
	c.Request.Body = readCloser{bytes.NewReader(data), original}
	return data
}

type readCloser struct {
	io.Reader
	io.Closer
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

// requestParameters merges the query string and a JSON object body.
// Body keys win over query keys of the same name.
func requestParameters(c *gin.Context, body []byte) map[string]any {
	params := make(map[string]any)
	for k, v := range c.Request.URL.Query() {
		if len(v) == 1 {
			params[k] = v[0]
		} else {
			params[k] = v
		}
	}
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}

	if len(body) > 0 && strings.Contains(c.ContentType(), "json") {
		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err == nil {
			for k, v := range decoded {
				params[k] = v
			}
		}
	}
	return params
}

func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(proto)
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
