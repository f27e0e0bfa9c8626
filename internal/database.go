package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenDatabase opens (creating if needed) the SQLite database backing the
// durable state slot and ensures the key-value table exists.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS appStateKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "open", Err: fmt.Errorf("failed to create state table: %w", err)}
	}

	return db, nil
}

// GetStateValue reads a value from the appStateKV table. A missing key returns
// ok=false with no error.
func GetStateValue(db *sql.DB, key string) (string, bool, error) {
	var value sql.NullString
	err := db.QueryRow("SELECT value FROM appStateKV WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, &PersistenceError{Op: "load", Err: err}
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// SetStateValue writes a value into the appStateKV table, replacing any
// previous value for the key.
func SetStateValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(
		"INSERT INTO appStateKV (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}
