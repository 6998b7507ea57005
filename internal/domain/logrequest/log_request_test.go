package logrequest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMasker_Mask(t *testing.T) {
	m := NewMasker(nil)

	got := m.Mask(map[string]any{
		"username": "john",
		"Password": "secret",
		"nested": map[string]any{
			"plain_password": "secret",
			"keep":           1,
		},
		"list": []any{map[string]any{"token": "abc"}, "x"},
	})

	assert.Equal(t, "john", got["username"])
	assert.Equal(t, Masked, got["Password"])
	assert.Equal(t, map[string]any{"plain_password": Masked, "keep": 1}, got["nested"])
	assert.Equal(t, []any{map[string]any{"token": Masked}, "x"}, got["list"])
}

func TestMasker_MatchesCompoundKeys(t *testing.T) {
	got := NewMasker(nil).Mask(map[string]any{
		"refreshToken":  "eyJ.refresh.sig",
		"access_token":  "eyJ.access.sig",
		"newPassword":   "secret",
		"client-secret": "s",
		"Set-Cookie":    "sid=1",
		"tokenType":     "Bearer",
		"username":      "john",
	})

	for _, key := range []string{"refreshToken", "access_token", "newPassword", "client-secret", "Set-Cookie", "tokenType"} {
		assert.Equal(t, Masked, got[key], key)
	}
	assert.Equal(t, "john", got["username"])
}

func TestMasker_IgnoresEmptyKeys(t *testing.T) {
	got := NewMasker([]string{"", "-"}).Mask(map[string]any{"username": "john"})
	assert.Equal(t, "john", got["username"])
}

func TestMasker_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"password": "secret"}
	NewMasker(nil).Mask(in)
	assert.Equal(t, "secret", in["password"])
}

func TestMasker_MaskHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abc")
	h.Set("Content-Type", "application/json")
	h.Add("Accept", "text/html")
	h.Add("Accept", "application/json")

	got := NewMasker(nil).MaskHeaders(h)

	assert.Equal(t, Masked, got["authorization"])
	assert.Equal(t, "application/json", got["content-type"])
	assert.Equal(t, []any{"text/html", "application/json"}, got["accept"])
}

func TestMasker_CustomKeys(t *testing.T) {
	m := NewMasker([]string{"X-Api-Key"})

	got := m.Mask(map[string]any{"x_api_key": "k", "password": "p"})
	assert.Equal(t, Masked, got["x_api_key"])
	assert.Equal(t, "p", got["password"])
}

func TestLogRequest_IsError(t *testing.T) {
	l := New(http.MethodGet, "/api/v1/user")
	l.StatusCode = http.StatusOK
	assert.False(t, l.IsError())
	l.StatusCode = http.StatusNotFound
	assert.True(t, l.IsError())
	assert.True(t, l.MainRequest)
}
