package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableNames(t *testing.T, dsn string) []string {
	t.Helper()
	database, err := Open(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	defer database.Close()

	var names []string
	require.NoError(t, database.Select(&names,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> 'schema_migrations' ORDER BY name`))
	return names
}

func TestOpenCreatesSchema(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "forum.db")

	assert.Equal(t, []string{"api_logs", "categories", "comments", "posts", "users"}, tableNames(t, dsn))
	_, err := os.Stat(dsn)
	assert.NoError(t, err)

	// reopening an up-to-date database is fine
	assert.Len(t, tableNames(t, dsn), 5)
}

func TestMigrateDown(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "forum.db")
	require.NoError(t, Migrate(DriverSQLite, dsn, true))
	require.NoError(t, Migrate(DriverSQLite, dsn, true))
	require.NoError(t, Migrate(DriverSQLite, dsn, false))

	database, err := sql.Open(DriverSQLite, dsn)
	require.NoError(t, err)
	defer database.Close()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'`).Scan(&n))
	assert.Zero(t, n)
}

func TestUnsupportedDriver(t *testing.T) {
	err := Migrate("mysql", "root@/forum", true)
	assert.Error(t, err)
}

func TestPrepareIgnoresMemory(t *testing.T) {
	assert.NoError(t, prepare(DriverSQLite, ":memory:"))
	assert.NoError(t, prepare(DriverSQLite, "file::memory:?cache=shared"))
	assert.NoError(t, prepare(DriverPostgres, "postgres://localhost/forum"))
}
