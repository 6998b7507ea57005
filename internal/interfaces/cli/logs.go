package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/restapi/backend/internal/infrastructure/persistence"
	"github.com/restapi/backend/internal/infrastructure/scheduler"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNothingToPurge is returned when logs:cleanup runs without a retention
var ErrNothingToPurge = errors.New("retention must be positive")

func (a *App) newLogsCleanupCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "logs:cleanup",
		Short: "Deletes request logs older than the retention",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				a.failure("Retention is 0, request logs are kept forever")
				return ErrNothingToPurge
			}

			db, err := a.openDB(a.cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			purger, err := newLogPurger(db)
			if err != nil {
				return err
			}

			cfg := scheduler.DefaultLogCleanupConfig()
			cfg.Retention = olderThan
			job, err := scheduler.NewLogCleanup(cfg, purger, a.logger)
			if err != nil {
				return err
			}

			deleted, err := job.RunOnce(cmd.Context())
			if err != nil {
				a.failure("Request log cleanup failed")
				return err
			}
			a.success(fmt.Sprintf("Removed %d request log entries older than %s", deleted, olderThan))
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", a.cfg.RequestLog.Retention, "delete entries created before now minus this duration")
	return cmd
}

func newLogPurger(db *sql.DB) (scheduler.LogRequestPurger, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return persistence.NewGormLogRequestRepository(gdb), nil
}
