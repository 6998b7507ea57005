package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqliteSchema mirrors the tables created by the postgres migrations.
var sqliteSchema = []string{
	`CREATE TABLE "user" (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		language TEXT NOT NULL,
		locale TEXT NOT NULL,
		timezone TEXT NOT NULL,
		password TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX uq_user_username ON "user" (username)`,
	`CREATE UNIQUE INDEX uq_user_email ON "user" (email)`,
	`CREATE TABLE user_group (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE user_has_user_group (
		user_id TEXT NOT NULL,
		user_group_id TEXT NOT NULL,
		PRIMARY KEY (user_id, user_group_id)
	)`,
	`CREATE TABLE log_request (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		method TEXT NOT NULL,
		scheme TEXT NOT NULL,
		host TEXT NOT NULL,
		path TEXT NOT NULL,
		query TEXT,
		client_ip TEXT NOT NULL,
		user_agent TEXT,
		headers TEXT NOT NULL,
		parameters TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		response_size INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		main_request INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	)`,
}

// NewSQLiteDB opens an in-memory SQLite database holding the identity and request log
// tables. Errors are translated so unique violations surface as gorm.ErrDuplicatedKey.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range sqliteSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}
