package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrDatabaseUnavailable is returned when db:wait gives up
var ErrDatabaseUnavailable = errors.New("database unavailable")

const listTablesQuery = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()`

func (a *App) newWaitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "db:wait",
		Short: "Waits for database availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB(a.cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			return a.WaitDatabase(cmd.Context(), db)
		},
	}
}

// WaitDatabase probes db every Wait.Interval until it answers or Wait.Timeout
// seconds have been tried.
func (a *App) WaitDatabase(ctx context.Context, db *sql.DB) error {
	interval := a.cfg.Wait.Interval
	for i := time.Duration(0); i < a.cfg.Wait.Timeout; i += interval {
		err := probe(ctx, db)
		if err == nil {
			a.success("Connection to the database is ok!")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		a.logger.Debug("Database probe failed", zap.Error(err))
		a.comment(fmt.Sprintf("Trying to connect to the database seconds:%d", int(i.Seconds())))
		if err := a.sleep(ctx, interval); err != nil {
			return err
		}
	}

	a.failure("Can not connect to the database")
	return ErrDatabaseUnavailable
}

func probe(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return err
	}
	return rows.Close()
}
