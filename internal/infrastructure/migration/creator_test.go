package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stockplan/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add plan lines", "add_plan_lines"},
		{"Add-Plan-Lines", "add_plan_lines"},
		{"ADD_PLAN_LINES", "add_plan_lines"},
		{"add__plan__lines", "add_plan_lines"},
		{"Add Index 123", "add_index_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("numbers after the highest existing version", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{"000001_init.up.sql", "000001_init.down.sql", "000007_late.up.sql", "000007_late.down.sql"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
		}

		mf, err := CreateMigration(dir, "add ledger index", "Speeds up snapshots")
		require.NoError(t, err)
		assert.Equal(t, "000008", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000008_add_ledger_index.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000008_add_ledger_index.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add ledger index")
		assert.Contains(t, string(up), "Speeds up snapshots")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
	})

	t.Run("creates the directory", func(t *testing.T) {
		nested := filepath.Join(t.TempDir(), "nested", "migrations")

		mf, err := CreateMigration(nested, "init", "")
		require.NoError(t, err)
		assert.Equal(t, "000001", mf.Version)

		info, err := os.Stat(nested)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})

	t.Run("rejects non-numeric versions", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "abc_init.up.sql"), []byte("-- test"), 0o644))

		_, err := CreateMigration(dir, "next", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists up migrations once each", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{
			"000001_init.up.sql", "000001_init.down.sql",
			"000002_plans.up.sql", "000002_plans.down.sql",
			"README.md",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init", "000002_plans"}, names)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		names, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case filepath.Ext(name) != ".sql":
		case len(name) > 7 && name[len(name)-7:] == ".up.sql":
			ups[name[:len(name)-7]] = true
		case len(name) > 9 && name[len(name)-9:] == ".down.sql":
			downs[name[:len(name)-9]] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}
