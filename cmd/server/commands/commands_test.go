package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forumapi/internal/db"
	"forumapi/internal/repository/sqlstore"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestSeedCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "seed.db")
	env := filepath.Join(t.TempDir(), "missing.env")

	out := run(t, "seed", "--env-file", env, "--db-driver", db.DriverSQLite, "--db-dsn", dsn, "--count", "3")
	assert.Contains(t, out, "Seeded 3 users, 3 categories, 3 posts, 3 comments")

	database, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	defer database.Close()
	posts, err := sqlstore.New(database).Posts.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestMigrateCommands(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "migrate.db")
	env := filepath.Join(t.TempDir(), "missing.env")

	assert.Contains(t, run(t, "migrate", "up", "--env-file", env, "--db-driver", db.DriverSQLite, "--db-dsn", dsn), "Migrations applied")
	assert.Contains(t, run(t, "migrate", "down", "--env-file", env, "--db-driver", db.DriverSQLite, "--db-dsn", dsn), "Migrations rolled back")
}

func TestLoadConfigFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("FORUM_DB_DSN", "from-env.db")
	envFile, dbDriver, dbDSN = "", "", "from-flag.db"
	t.Cleanup(func() { dbDSN = "" })

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-flag.db", cfg.DBDSN)
	assert.Equal(t, db.DriverSQLite, cfg.DBDriver)
}
