package database

import (
	"database/sql"
	"fmt"

	"github.com/uptrace/bun/driver/pgdriver"
)

// NewPostgres opens a Postgres connection. DATABASE_URL wins when set, otherwise a local
// development DSN is built from host.
func NewPostgres(url, host string) (*DB, error) {
	dsn := url
	if dsn == "" {
		dsn = fmt.Sprintf("postgres://postgres:postgres@%s/postgres?sslmode=disable", host)
	}

	db := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if err := applyMigrations(db, "postgres"); err != nil {
		return nil, err
	}

	return &DB{DB: db, Driver: DriverPostgres}, nil
}
