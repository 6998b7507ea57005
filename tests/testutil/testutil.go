// Package testutil holds helpers shared by the package tests: an in-memory SQLite
// schema and assertions on the response envelope.
package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// AssertErrorEnvelope asserts an error envelope with the status and code, returning
// the parsed body.
func AssertErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder, status int, code string) map[string]any {
	t.Helper()

	assert.Equal(t, status, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	errMap, ok := body["error"].(map[string]any)
	require.True(t, ok, "Expected error object in response")
	assert.Equal(t, code, errMap["code"])
	return body
}
