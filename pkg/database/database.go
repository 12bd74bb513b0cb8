package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	migrate "github.com/rubenv/sql-migrate"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB is a migrated database handle together with the driver it was opened with.
type DB struct {
	*sql.DB
	Driver string
}

// Open connects to the configured driver and applies pending migrations.
func Open(driver, pgURL, pgHost, sqlitePath string) (*DB, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgres(pgURL, pgHost)
	case DriverSQLite:
		return NewSQLite(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func applyMigrations(db *sql.DB, dialect string) error {
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations,
		Root:       "migrations",
	}

	n, err := migrate.Exec(db, dialect, source, migrate.Up)
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	slog.Info("database migrations applied", "dialect", dialect, "count", n)
	return nil
}
