// Package database persists fetched encyclopedia articles in SQLite.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrArticleNotFound is returned when no cached article has the title
var ErrArticleNotFound = errors.New("article not found")

// DB represents the database connection
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
}

// New opens the SQLite database at path. ":memory:" opens a private
// in-memory database.
func New(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	memory := path == ":memory:" || strings.Contains(path, "mode=memory")
	dsn := path
	if !strings.Contains(dsn, "_pragma=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		if !memory {
			dsn += "&_pragma=journal_mode(WAL)"
		}
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: would see its own empty database
	if memory {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn, logger: slog.Default().With("component", "database")}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}
