// Package cli holds the console commands: database readiness, schema migrations
// and request log maintenance.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/restapi/backend/internal/infrastructure/config"
	"github.com/restapi/backend/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Migrator is the subset of *migration.Migrator the migrate commands drive
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	GoTo(version uint) error
	Version() (uint, bool, error)
	Force(version int) error
	Drop() error
	Close() error
}

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// App carries what the console commands share
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer

	openDB      func(dsn string) (*sql.DB, error)
	newMigrator func(ctx context.Context, path string) (Migrator, error)
	sleep       Sleeper

	migrationsPath string
}

// Option configures an App
type Option func(*App)

// WithOutput redirects command output
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithDBOpener replaces the database/sql opener used by db:wait and migrate
func WithDBOpener(open func(dsn string) (*sql.DB, error)) Option {
	return func(a *App) { a.openDB = open }
}

// WithMigratorFactory replaces the migrator constructor
func WithMigratorFactory(f func(ctx context.Context, path string) (Migrator, error)) Option {
	return func(a *App) { a.newMigrator = f }
}

// WithSleeper replaces the wait between db:wait probes
func WithSleeper(s Sleeper) Option {
	return func(a *App) { a.sleep = s }
}

// NewApp creates the console application
func NewApp(cfg *config.Config, logger *zap.Logger, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		logger: logger,
		out:    os.Stdout,
		openDB: func(dsn string) (*sql.DB, error) {
			return sql.Open("postgres", dsn)
		},
		sleep: sleepContext,
	}
	a.newMigrator = a.openMigrator
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Execute runs the console with args
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// RootCommand builds the command tree
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "console",
		Short:         "REST API backend console",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.out)
	root.PersistentFlags().StringVar(&a.migrationsPath, "migrations-path", "", "path to the migrations directory (default from config)")

	root.AddCommand(a.newWaitCommand())
	root.AddCommand(a.newMigrateCommand())
	root.AddCommand(a.newLogsCleanupCommand())
	return root
}

func (a *App) path() string {
	if a.migrationsPath != "" {
		return a.migrationsPath
	}
	return a.cfg.Migrations.Path
}

// migratorWithDB closes the connection the migrator was built on
type migratorWithDB struct {
	*migration.Migrator
	db *sql.DB
}

func (m *migratorWithDB) Close() error {
	err := m.Migrator.Close()
	if dbErr := m.db.Close(); err == nil {
		err = dbErr
	}
	return err
}

func (a *App) openMigrator(ctx context.Context, path string) (Migrator, error) {
	db, err := a.openDB(a.cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	m, err := migration.New(ctx, db, path, a.logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &migratorWithDB{Migrator: m, db: db}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (a *App) success(msg string) {
	fmt.Fprintf(a.out, "[OK] %s\n", msg)
}

func (a *App) comment(msg string) {
	fmt.Fprintf(a.out, "// %s\n", msg)
}

func (a *App) failure(msg string) {
	fmt.Fprintf(a.out, "[ERROR] %s\n", msg)
}
