package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/restapi/backend/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrDropNotConfirmed is returned by migrate drop without --confirm
var ErrDropNotConfirmed = errors.New("drop cancelled, use 'migrate drop --confirm' to confirm")

func (a *App) newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		a.migratorCommand("up", "Apply all pending migrations", cobra.NoArgs, func(m Migrator, _ []string) error {
			return m.Up()
		}),
		a.migratorCommand("down", "Roll back all migrations", cobra.NoArgs, func(m Migrator, _ []string) error {
			return m.Down()
		}),
		a.newStepCommand(),
		a.migratorCommand("goto VERSION", "Migrate to a specific version", cobra.ExactArgs(1), func(m Migrator, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.GoTo(uint(version))
		}),
		a.migratorCommand("version", "Show the current migration version", cobra.NoArgs, a.printVersion),
		a.migratorCommand("force VERSION", "Record VERSION without running migrations", cobra.ExactArgs(1), func(m Migrator, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(version)
		}),
		a.newDropCommand(),
		a.newCreateCommand(),
		a.newListCommand(),
	)
	return cmd
}

func (a *App) migratorCommand(use, short string, args cobra.PositionalArgs, run func(Migrator, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withMigrator(cmd, func(m Migrator) error { return run(m, args) })
		},
	}
}

func (a *App) withMigrator(cmd *cobra.Command, run func(Migrator) error) error {
	m, err := a.newMigrator(cmd.Context(), a.path())
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			a.logger.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return run(m)
}

// step takes negative counts, so flag parsing is off
func (a *App) newStepCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "step N",
		Short:              "Apply N migrations (positive up, negative down)",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("step requires exactly one argument, got %d", len(args))
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n == 0 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return a.withMigrator(cmd, func(m Migrator) error { return m.Steps(n) })
		},
	}
}

func (a *App) printVersion(m Migrator, _ []string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		a.comment("No migrations applied")
		return nil
	}
	suffix := ""
	if dirty {
		suffix = " (dirty)"
	}
	a.success(fmt.Sprintf("Current migration version: %d%s", version, suffix))
	return nil
}

func (a *App) newDropCommand() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every database object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				a.failure("This will DROP all database objects. Re-run with --confirm.")
				return ErrDropNotConfirmed
			}
			return a.withMigrator(cmd, func(m Migrator) error { return m.Drop() })
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm dropping all database objects")
	return cmd
}

func (a *App) newCreateCommand() *cobra.Command {
	var noTransaction bool
	cmd := &cobra.Command{
		Use:   "create NAME [DESCRIPTION]",
		Short: "Create a new migration file pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			description := ""
			if len(args) == 2 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(a.path(), args[0], description, !noTransaction)
			if err != nil {
				return err
			}
			a.success("Migration created " + mf.Version)
			fmt.Fprintln(a.out, mf.UpPath)
			fmt.Fprintln(a.out, mf.DownPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noTransaction, "no-transaction", false, "do not wrap the migration in BEGIN/COMMIT")
	return cmd
}

func (a *App) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			migrations, err := migration.ListMigrations(a.path())
			if err != nil {
				return err
			}
			if len(migrations) == 0 {
				a.comment("No migrations found")
				return nil
			}
			for _, m := range migrations {
				fmt.Fprintln(a.out, "  -", m)
			}
			return nil
		},
	}
}
