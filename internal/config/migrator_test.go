package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMigratorConfig_DefaultFolderPerDialect(t *testing.T) {
	t.Setenv("MIGRATIONS_FOLDER", "")
	os.Unsetenv("MIGRATIONS_FOLDER")

	assert.Equal(t, "migrations/sqlite", NewMigratorConfig("sqlite3").MigrationsFolder)
	assert.Equal(t, "migrations/postgres", NewMigratorConfig("postgres").MigrationsFolder)
}

func TestNewMigratorConfig_DefaultFoldersShipWithTree(t *testing.T) {
	t.Setenv("MIGRATIONS_FOLDER", "")
	os.Unsetenv("MIGRATIONS_FOLDER")

	for _, dialect := range []string{"sqlite3", "postgres"} {
		folder := NewMigratorConfig(dialect).MigrationsFolder

		info, err := os.Stat(filepath.Join("..", "..", folder))
		require.NoError(t, err, dialect)
		assert.True(t, info.IsDir(), dialect)
	}
}

func TestNewMigratorConfig_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_FOLDER", "/app/migrations/sqlite")

	assert.Equal(t, "/app/migrations/sqlite", NewMigratorConfig("sqlite3").MigrationsFolder)
}
