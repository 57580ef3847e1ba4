package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

//go:embed migrations
var migrationsFS embed.FS

// Open connects to the database and brings its schema up to date.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if err := prepare(driver, dsn); err != nil {
		return nil, err
	}
	if err := Migrate(driver, dsn, true); err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY under load.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// Migrate applies (up) or rolls back (down) every embedded migration for the driver.
// It uses its own connection, which is closed before returning.
func Migrate(driver, dsn string, up bool) error {
	if err := prepare(driver, dsn); err != nil {
		return err
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	m, err := newMigrator(driver, conn)
	if err != nil {
		return err
	}
	defer m.Close()

	if up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	return nil
}

func newMigrator(driver string, conn *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+migrationsDir(driver))
	if err != nil {
		return nil, err
	}

	var target database.Driver
	switch driver {
	case DriverSQLite:
		target, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	case DriverPostgres:
		target, err = migratepgx.WithInstance(conn, &migratepgx.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		src.Close()
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, driver, target)
}

func migrationsDir(driver string) string {
	if driver == DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// prepare creates the parent directory of a sqlite database file.
func prepare(driver, dsn string) error {
	if driver != DriverSQLite {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0755)
}
