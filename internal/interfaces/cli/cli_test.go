package cli

import (
	"bytes"
	"context"
	"database/sql"
	"time"

	"github.com/restapi/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockMigrator struct {
	mock.Mock
}

func (m *mockMigrator) Up() error         { return m.Called().Error(0) }
func (m *mockMigrator) Down() error       { return m.Called().Error(0) }
func (m *mockMigrator) Steps(n int) error { return m.Called(n).Error(0) }
func (m *mockMigrator) GoTo(v uint) error { return m.Called(v).Error(0) }
func (m *mockMigrator) Force(v int) error { return m.Called(v).Error(0) }
func (m *mockMigrator) Drop() error       { return m.Called().Error(0) }
func (m *mockMigrator) Close() error      { return m.Called().Error(0) }
func (m *mockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func testConfig() *config.Config {
	return &config.Config{
		Wait:       config.WaitConfig{Timeout: 6 * time.Second, Interval: 2 * time.Second},
		Migrations: config.MigrationsConfig{Path: "migrations"},
	}
}

// newTestApp returns an app writing to a buffer whose sleeps are recorded instead of waited.
func newTestApp(opts ...Option) (*App, *bytes.Buffer, *[]time.Duration) {
	var out bytes.Buffer
	var slept []time.Duration
	base := []Option{
		WithOutput(&out),
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return ctx.Err()
		}),
	}
	return NewApp(testConfig(), zap.NewNop(), append(base, opts...)...), &out, &slept
}

func withDB(db *sql.DB) Option {
	return WithDBOpener(func(string) (*sql.DB, error) { return db, nil })
}

func withMigrator(m Migrator) Option {
	return WithMigratorFactory(func(context.Context, string) (Migrator, error) { return m, nil })
}
