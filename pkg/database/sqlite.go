package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// NewSQLite opens (or creates) the SQLite database at path.
func NewSQLite(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db, "sqlite3"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, Driver: DriverSQLite}, nil
}
