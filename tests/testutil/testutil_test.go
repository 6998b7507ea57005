package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDB(t *testing.T) {
	db := NewSQLiteDB(t)

	for _, table := range []string{"user", "user_group", "user_has_user_group", "log_request"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestNewSQLiteDB_Isolated(t *testing.T) {
	first := NewSQLiteDB(t)
	require.NoError(t, first.Exec(`INSERT INTO user_group (id, name, role, created_at, updated_at)
		VALUES ('g1', 'Admins', 'ROLE_ADMIN', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`).Error)

	var count int64
	require.NoError(t, NewSQLiteDB(t).Table("user_group").Count(&count).Error)
	assert.Zero(t, count)
}

func TestAssertErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   gin.H{"code": "ERR_NOT_FOUND", "message": "Resource not found"},
	})

	body := AssertErrorEnvelope(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
	assert.Equal(t, "Resource not found", body["error"].(map[string]any)["message"])
}
