package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnknownProperty, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeTokenInvalid, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorCodes_AllMappedAndPrefixed(t *testing.T) {
	for code, status := range ErrorCodeHTTPStatus {
		assert.True(t, strings.HasPrefix(code, "ERR_"), code)
		assert.GreaterOrEqual(t, status, http.StatusBadRequest, code)
	}
	for domainCode, code := range domainErrorCodes {
		_, ok := ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "%s maps to unregistered %s", domainCode, code)
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"INVALID_CREDENTIALS", ErrCodeUnauthorized},
		{"TOKEN_REVOKED", ErrCodeTokenInvalid},
		{"PASSWORD_HASH_ERROR", ErrCodeInternal},
		{"INVALID_USERNAME", ErrCodeInvalidInput},
		{"INVALID_GROUP_NAME", ErrCodeInvalidInput},
		{ErrCodeValidation, ErrCodeValidation},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse("NOT_FOUND", "User not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "User not found", resp.Error.Message)
	assert.False(t, resp.Error.Timestamp.Before(before))
}

func TestErrorEnvelopeJSON(t *testing.T) {
	resp := NewValidationErrorResponse("Validation failed", "req-1", []ValidationDetail{
		{Field: "username", Message: "This value should not be blank."},
	})

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["success"])
	assert.NotContains(t, raw, "data")

	errObj := raw["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errObj["code"])
	assert.Equal(t, "req-1", errObj["request_id"])
	details := errObj["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "username", details[0].(map[string]any)["field"])
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		total     int64
		pageSize  int
		wantPages int
		wantSize  int
	}{
		{100, 10, 10, 10},
		{101, 10, 11, 10},
		{0, 10, 0, 10},
		{9, 10, 1, 10},
		{100, 0, 5, DefaultPageSize},
		{100, -1, 5, DefaultPageSize},
	}
	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta([]string{}, tt.total, 1, tt.pageSize)
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, tt.wantPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.wantSize, resp.Meta.PageSize)
		assert.Equal(t, tt.total, resp.Meta.Total)
	}
}
