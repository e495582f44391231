package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../migrations"

func TestLoadMigrationFiles(t *testing.T) {
	runner := NewMigrationRunner(nil, migrationsDir, nil)

	migrations, err := runner.LoadMigrationFiles()
	require.NoError(t, err)
	require.Len(t, migrations, 3, "down migrations are not loaded")

	assert.Equal(t, "001_create_companies_table", migrations[0].Version)
	assert.Equal(t, "002_create_users_table", migrations[1].Version)
	assert.Equal(t, "003_create_indexes", migrations[2].Version)

	assert.Contains(t, migrations[0].SQLContent, "CREATE TABLE companies")
	assert.Contains(t, migrations[1].SQLContent, "CREATE TABLE users")
	assert.Contains(t, migrations[1].SQLContent, "REFERENCES companies")
	assert.Contains(t, migrations[1].SQLContent, "idx_users_username_lower")
	assert.Contains(t, migrations[2].SQLContent, "idx_users_birth_date")

	for _, m := range migrations {
		assert.Len(t, m.Checksum, 64, "sha256 hex checksum for %s", m.Version)
		assert.Equal(t, calculateChecksum(m.SQLContent), m.Checksum)
	}
}

func TestLoadMigrationFiles_MissingDirectory(t *testing.T) {
	runner := NewMigrationRunner(nil, filepath.Join(t.TempDir(), "nope"), nil)

	_, err := runner.LoadMigrationFiles()
	assert.Error(t, err)
}

func TestLoadMigrationFiles_SortsAndSkipsNonSQL(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_b.sql":      "SELECT 2;",
		"001_a.sql":      "SELECT 1;",
		"001_down_a.sql": "SELECT -1;",
		"README.md":      "docs",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	migrations, err := NewMigrationRunner(nil, dir, nil).LoadMigrationFiles()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001_a", migrations[0].Version)
	assert.Equal(t, "002_b", migrations[1].Version)
}

func TestDownFilename(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"001_create_companies_table", "001_down_create_companies_table.sql"},
		{"003_create_indexes", "003_down_create_indexes.sql"},
		{"004", "004_down.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, DownFilename(tt.version))
		})
	}
}

func TestEveryMigrationHasRollback(t *testing.T) {
	migrations, err := NewMigrationRunner(nil, migrationsDir, nil).LoadMigrationFiles()
	require.NoError(t, err)

	for _, m := range migrations {
		_, err := os.Stat(filepath.Join(migrationsDir, DownFilename(m.Version)))
		assert.NoError(t, err, "rollback file for %s", m.Version)
	}
}

func TestCalculateChecksum(t *testing.T) {
	assert.Equal(t, calculateChecksum("SELECT 1;"), calculateChecksum("SELECT 1;"))
	assert.NotEqual(t, calculateChecksum("SELECT 1;"), calculateChecksum("SELECT 2;"))
}
