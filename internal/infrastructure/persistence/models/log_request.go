package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/logrequest"
	"github.com/restapi/backend/internal/domain/shared"
)

// LogRequestModel is the persistence model for a LogRequest. Headers and parameters
// are stored as JSON documents.
type LogRequestModel struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID       *uuid.UUID     `gorm:"type:uuid;index"`
	Method       string         `gorm:"type:varchar(255);not null"`
	Scheme       string         `gorm:"type:varchar(5);not null"`
	Host         string         `gorm:"type:varchar(255);not null"`
	Path         string         `gorm:"type:varchar(255);not null"`
	Query        string         `gorm:"type:varchar(255)"`
	ClientIP     string         `gorm:"column:client_ip;type:varchar(255);not null"`
	UserAgent    string         `gorm:"type:varchar(255)"`
	Headers      map[string]any `gorm:"serializer:json;not null"`
	Parameters   map[string]any `gorm:"serializer:json;not null"`
	StatusCode   int            `gorm:"not null"`
	ResponseSize int            `gorm:"not null"`
	DurationMs   int64          `gorm:"column:duration_ms;not null"`
	MainRequest  bool           `gorm:"not null"`
	CreatedAt    time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (LogRequestModel) TableName() string {
	return "log_request"
}

// LogRequestModelFromDomain creates a persistence model from a domain LogRequest.
func LogRequestModelFromDomain(l *logrequest.LogRequest) *LogRequestModel {
	headers, params := l.Headers, l.Parameters
	if headers == nil {
		headers = map[string]any{}
	}
	if params == nil {
		params = map[string]any{}
	}
	return &LogRequestModel{
		ID:           l.ID,
		UserID:       l.UserID,
		Method:       l.Method,
		Scheme:       l.Scheme,
		Host:         l.Host,
		Path:         l.Path,
		Query:        l.Query,
		ClientIP:     l.ClientIP,
		UserAgent:    l.UserAgent,
		Headers:      headers,
		Parameters:   params,
		StatusCode:   l.StatusCode,
		ResponseSize: l.ResponseSize,
		DurationMs:   l.Duration.Milliseconds(),
		MainRequest:  l.MainRequest,
		CreatedAt:    l.CreatedAt,
	}
}

// ToDomain converts the persistence model to a domain LogRequest.
func (m *LogRequestModel) ToDomain() *logrequest.LogRequest {
	return &logrequest.LogRequest{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.CreatedAt,
		},
		UserID:       m.UserID,
		Method:       m.Method,
		Scheme:       m.Scheme,
		Host:         m.Host,
		Path:         m.Path,
		Query:        m.Query,
		ClientIP:     m.ClientIP,
		UserAgent:    m.UserAgent,
		Headers:      m.Headers,
		Parameters:   m.Parameters,
		StatusCode:   m.StatusCode,
		ResponseSize: m.ResponseSize,
		Duration:     time.Duration(m.DurationMs) * time.Millisecond,
		MainRequest:  m.MainRequest,
	}
}
