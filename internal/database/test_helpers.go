package database

import (
	"path/filepath"
	"testing"
)

// NewTestDB opens a migrated in-memory database closed at test cleanup
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// NewTestFileDB opens a migrated database file in a temporary directory
func NewTestFileDB(t testing.TB) (*DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "biasanalyzer.db")
	db, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db, path
}
