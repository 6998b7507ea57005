// Package integration runs the API and the migrations against a real PostgreSQL server
// started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/restapi/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB is a migrated PostgreSQL database owned by one test
type TestDB struct {
	DB             *gorm.DB
	SQLDB          *sql.DB
	DSN            string
	MigrationsPath string
}

// NewTestDB starts a fresh postgres:16-alpine container. Unless skipMigrations is set
// every migration is applied. Skipped in -short mode.
func NewTestDB(t *testing.T, skipMigrations ...bool) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs docker, skipped in -short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("api_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tdb := &TestDB{DB: db, SQLDB: sqlDB, DSN: dsn, MigrationsPath: findMigrationsPath(t)}
	if len(skipMigrations) == 0 || !skipMigrations[0] {
		m := tdb.Migrator(t)
		require.NoError(t, m.Up())
	}
	return tdb
}

// Migrator returns a migrator over a dedicated connection, closed with the test
func (tdb *TestDB) Migrator(t *testing.T) *migration.Migrator {
	t.Helper()
	conn, err := sql.Open("postgres", tdb.DSN)
	require.NoError(t, err)

	m, err := migration.New(context.Background(), conn, tdb.MigrationsPath, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// ColumnType returns the data_type of table.column
func (tdb *TestDB) ColumnType(t *testing.T, table, column string) string {
	t.Helper()
	var dataType string
	err := tdb.DB.Raw(
		`SELECT data_type FROM information_schema.columns WHERE table_name = ? AND column_name = ?`,
		table, column,
	).Scan(&dataType).Error
	require.NoError(t, err)
	return dataType
}

func findMigrationsPath(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok)

	dir := filepath.Dir(filename)
	for range 4 {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatal("Could not find migrations directory")
	return ""
}
