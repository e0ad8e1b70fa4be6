package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/autocare/platform/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add revenue index", "add_revenue_index"},
		{"Add-Revenue-Index", "add_revenue_index"},
		{"ADD_REVENUE_INDEX", "add_revenue_index"},
		{"add__revenue__index", "add_revenue_index"},
		{"Parts Cache 2", "parts_cache_2"},
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

func TestCreateMigration_SequentialVersions(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add sync logs", "Track agent sync runs")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_sync_logs.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_add_sync_logs.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add_sync_logs")
	assert.Contains(t, string(up), "Track agent sync runs")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback of add_sync_logs")

	second, err := CreateMigration(dir, "index revenue date", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000002_add_users.up.sql":     {Data: []byte("--")},
		"sql/000001_init_schema.up.sql":   {Data: []byte("--")},
		"sql/000001_init_schema.down.sql": {Data: []byte("--")},
		"sql/README.md":                   {Data: []byte("docs")},
		"sql/notes.up.sql":                {Data: []byte("--")},
		"sql/subdir.up.sql/x":             {Data: []byte("--")},
	}

	got, err := ListMigrations(fsys, "sql")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Entry{Version: 1, Name: "init_schema", HasDown: true}, got[0])
	assert.Equal(t, Entry{Version: 2, Name: "add_users", HasDown: false}, got[1])
	assert.Equal(t, "000002_add_users", got[1].BaseName())
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	got, err := ListMigrations(os.DirFS(t.TempDir()), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddedSchemasArePaired(t *testing.T) {
	for _, dir := range []string{migrations.ServerDir, migrations.AgentDir} {
		t.Run(dir, func(t *testing.T) {
			got, err := ListMigrations(migrations.FS, dir)
			require.NoError(t, err)
			require.NotEmpty(t, got)
			for i, e := range got {
				assert.Equal(t, uint(i+1), e.Version, "versions must be contiguous")
				assert.True(t, e.HasDown, "%s has no down migration", e.BaseName())
			}
		})
	}
}
