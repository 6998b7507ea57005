package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommands(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		expect func(m *mockMigrator)
	}{
		{"up", []string{"migrate", "up"}, func(m *mockMigrator) { m.On("Up").Return(nil) }},
		{"down", []string{"migrate", "down"}, func(m *mockMigrator) { m.On("Down").Return(nil) }},
		{"step forward", []string{"migrate", "step", "2"}, func(m *mockMigrator) { m.On("Steps", 2).Return(nil) }},
		{"step back", []string{"migrate", "step", "-1"}, func(m *mockMigrator) { m.On("Steps", -1).Return(nil) }},
		{"goto", []string{"migrate", "goto", "20231028000000"}, func(m *mockMigrator) { m.On("GoTo", uint(20231028000000)).Return(nil) }},
		{"force", []string{"migrate", "force", "20231028000000"}, func(m *mockMigrator) { m.On("Force", 20231028000000).Return(nil) }},
		{"drop", []string{"migrate", "drop", "--confirm"}, func(m *mockMigrator) { m.On("Drop").Return(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockMigrator{}
			tt.expect(m)
			m.On("Close").Return(nil)

			app, _, _ := newTestApp(withMigrator(m))
			require.NoError(t, app.Execute(context.Background(), tt.args))
			m.AssertExpectations(t)
		})
	}
}

func TestMigrateCommands_Errors(t *testing.T) {
	t.Run("failure is returned and the migrator closed", func(t *testing.T) {
		m := &mockMigrator{}
		m.On("Up").Return(errors.New("dirty database"))
		m.On("Close").Return(nil)

		app, _, _ := newTestApp(withMigrator(m))
		assert.EqualError(t, app.Execute(context.Background(), []string{"migrate", "up"}), "dirty database")
		m.AssertExpectations(t)
	})

	t.Run("drop needs confirmation", func(t *testing.T) {
		m := &mockMigrator{}
		app, out, _ := newTestApp(withMigrator(m))

		err := app.Execute(context.Background(), []string{"migrate", "drop"})
		assert.ErrorIs(t, err, ErrDropNotConfirmed)
		assert.Contains(t, out.String(), "[ERROR]")
		m.AssertNotCalled(t, "Drop")
	})

	t.Run("bad arguments never open the database", func(t *testing.T) {
		opened := false
		app, _, _ := newTestApp(WithMigratorFactory(func(context.Context, string) (Migrator, error) {
			opened = true
			return &mockMigrator{}, nil
		}))

		assert.Error(t, app.Execute(context.Background(), []string{"migrate", "step", "zero"}))
		assert.Error(t, app.Execute(context.Background(), []string{"migrate", "step", "0"}))
		assert.Error(t, app.Execute(context.Background(), []string{"migrate", "goto", "-3"}))
		assert.Error(t, app.Execute(context.Background(), []string{"migrate", "force"}))
		assert.False(t, opened)
	})
}

func TestMigrateVersion(t *testing.T) {
	tests := []struct {
		name    string
		version uint
		dirty   bool
		want    string
	}{
		{"nothing applied", 0, false, "// No migrations applied\n"},
		{"clean", 20231029164236, false, "[OK] Current migration version: 20231029164236\n"},
		{"dirty", 20231029164236, true, "[OK] Current migration version: 20231029164236 (dirty)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockMigrator{}
			m.On("Version").Return(tt.version, tt.dirty, nil)
			m.On("Close").Return(nil)

			app, out, _ := newTestApp(withMigrator(m))
			require.NoError(t, app.Execute(context.Background(), []string{"migrate", "version"}))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestMigrateCreateAndList(t *testing.T) {
	dir := t.TempDir()
	app, out, _ := newTestApp()

	require.NoError(t, app.Execute(context.Background(),
		[]string{"--migrations-path", dir, "migrate", "list"}))
	assert.Equal(t, "// No migrations found\n", out.String())

	out.Reset()
	require.NoError(t, app.Execute(context.Background(),
		[]string{"--migrations-path", dir, "migrate", "create", "add audit table", "Audit trail", "--no-transaction"}))
	assert.Contains(t, out.String(), "[OK] Migration created")

	files, err := filepath.Glob(filepath.Join(dir, "*_add_audit_table.*.sql"))
	require.NoError(t, err)
	require.Len(t, files, 2)
	up, err := os.ReadFile(files[1])
	require.NoError(t, err)
	assert.Contains(t, string(up), "Description: Audit trail")
	assert.NotContains(t, string(up), "BEGIN;")

	out.Reset()
	require.NoError(t, app.Execute(context.Background(),
		[]string{"--migrations-path", dir, "migrate", "list"}))
	assert.Contains(t, out.String(), "_add_audit_table")
}

func TestMigrationsPath(t *testing.T) {
	var got string
	app, _, _ := newTestApp(WithMigratorFactory(func(_ context.Context, path string) (Migrator, error) {
		got = path
		m := &mockMigrator{}
		m.On("Up").Return(nil)
		m.On("Close").Return(nil)
		return m, nil
	}))

	require.NoError(t, app.Execute(context.Background(), []string{"migrate", "up"}))
	assert.Equal(t, "migrations", got)

	require.NoError(t, app.Execute(context.Background(), []string{"--migrations-path", "/srv/migrations", "migrate", "up"}))
	assert.Equal(t, "/srv/migrations", got)
}
