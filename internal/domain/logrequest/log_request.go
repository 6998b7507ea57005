// Package logrequest models the audit trail of API requests.
package logrequest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/shared"
)

// Masked replaces the value of every sensitive header or parameter.
const Masked = "*******"

// DefaultSensitiveProperties are masked when no list is configured.
var DefaultSensitiveProperties = []string{"password", "token", "authorization", "cookie", "secret"}

// LogRequest is one handled HTTP request.
type LogRequest struct {
	shared.BaseEntity
	UserID       *uuid.UUID
	Method       string
	Scheme       string
	Host         string
	Path         string
	Query        string
	ClientIP     string
	UserAgent    string
	Headers      map[string]any
	Parameters   map[string]any
	StatusCode   int
	ResponseSize int
	Duration     time.Duration
	MainRequest  bool
}

// New creates a log entry for the given request line.
func New(method, path string) *LogRequest {
	return &LogRequest{
		BaseEntity:  shared.NewBaseEntity(),
		Method:      method,
		Path:        path,
		Headers:     map[string]any{},
		Parameters:  map[string]any{},
		MainRequest: true,
	}
}

// IsError reports whether the response was a client or server error.
func (l *LogRequest) IsError() bool {
	return l.StatusCode >= http.StatusBadRequest
}

// Repository persists request logs
type Repository interface {
	Save(ctx context.Context, entry *LogRequest) error
	FindAll(ctx context.Context, filter shared.Filter) ([]*LogRequest, int64, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// Masker hides the values of sensitive keys. A key is sensitive when it contains a
// configured entry, ignoring case, '_' and '-', at any depth.
type Masker struct {
	keys []string
}

// NewMasker creates a masker for keys, falling back to DefaultSensitiveProperties.
func NewMasker(keys []string) *Masker {
	if len(keys) == 0 {
		keys = DefaultSensitiveProperties
	}
	m := &Masker{keys: make([]string, 0, len(keys))}
	for _, k := range keys {
		if k = normalizeKey(k); k != "" {
			m.keys = append(m.keys, k)
		}
	}
	return m
}

// Mask returns a copy of values with sensitive entries replaced by Masked.
func (m *Masker) Mask(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if m.sensitive(k) {
			out[k] = Masked
			continue
		}
		out[k] = m.maskValue(v)
	}
	return out
}

// MaskHeaders flattens and masks HTTP headers. Multi-valued headers stay lists.
func (m *Masker) MaskHeaders(h http.Header) map[string]any {
	flat := make(map[string]any, len(h))
	for k, v := range h {
		key := strings.ToLower(k)
		if len(v) == 1 {
			flat[key] = v[0]
			continue
		}
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		flat[key] = list
	}
	return m.Mask(flat)
}

func (m *Masker) maskValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return m.Mask(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = m.maskValue(item)
		}
		return out
	default:
		return v
	}
}

func (m *Masker) sensitive(key string) bool {
	key = normalizeKey(key)
	for _, k := range m.keys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	return strings.NewReplacer("_", "", "-", "").Replace(k)
}
