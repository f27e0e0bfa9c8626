package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database for testing
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}

	// Create appStateKV table
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS appStateKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create appStateKV table: %v", err)
	}

	return db
}

// InsertState inserts a key-value pair into the state table
func InsertState(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	insertSQL := "INSERT INTO appStateKV (key, value) VALUES (?, ?)"
	if _, err := db.Exec(insertSQL, key, value); err != nil {
		t.Fatalf("Failed to insert state: %v", err)
	}
}

// ReadState reads a value from the state table, failing the test when the key
// is absent
func ReadState(t *testing.T, db *sql.DB, key string) string {
	t.Helper()
	var value string
	if err := db.QueryRow("SELECT value FROM appStateKV WHERE key = ?", key).Scan(&value); err != nil {
		t.Fatalf("Failed to read state key %q: %v", key, err)
	}
	return value
}
