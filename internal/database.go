package internal

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

const datasetSchema = `
CREATE TABLE IF NOT EXISTS classifications (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	label TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cursors (
	name TEXT PRIMARY KEY,
	value TEXT
);`

// OpenDatasetDBReadOnly opens an existing dataset mirror without write
// access. A missing file is an error rather than a new empty database.
func OpenDatasetDBReadOnly(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	// The query string only reaches sqlite for file: URIs
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}
	return db, nil
}

// LoadDatasetMirror reads a dataset back from the mirror at path
func LoadDatasetMirror(path string) (*Dataset, error) {
	db, err := OpenDatasetDBReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	ds, err := LoadDatasetDB(db)
	if err != nil {
		return nil, &IntegrityError{Path: path, Err: fmt.Errorf("%w: %v", ErrMalformedDataset, err)}
	}
	LogInfo("Loaded %d entries from dataset mirror %s", ds.Len(), path)
	return ds, nil
}

// OpenDatasetDB opens or creates a SQLite dataset mirror and ensures its schema
func OpenDatasetDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := EnsureDatasetSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureDatasetSchema creates the dataset tables if they are missing
func EnsureDatasetSchema(db *sql.DB) error {
	if _, err := db.Exec(datasetSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveDatasetDB replaces the database contents with ds in one transaction
func SaveDatasetDB(db *sql.DB, ds *Dataset) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM classifications"); err != nil {
		return fmt.Errorf("failed to clear classifications: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO classifications (id, text, label) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ds.SortedIDs() {
		entry := ds.Entries[id]
		if _, err := stmt.Exec(id, entry.Text, entry.Label); err != nil {
			return fmt.Errorf("failed to insert %s: %w", id, err)
		}
	}

	upsert := "INSERT INTO cursors (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value"
	for name, value := range map[string]string{"start_timestamp": ds.Cursors.Start, "end_timestamp": ds.Cursors.End} {
		var v sql.NullString
		if value != "" {
			v = sql.NullString{String: value, Valid: true}
		}
		if _, err := tx.Exec(upsert, name, v); err != nil {
			return fmt.Errorf("failed to store cursor %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// LoadDatasetDB reads a dataset back from its SQLite mirror
func LoadDatasetDB(db *sql.DB) (*Dataset, error) {
	rows, err := db.Query("SELECT id, text, label FROM classifications")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	ds := NewDataset()
	for rows.Next() {
		var id string
		var entry Entry
		if err := rows.Scan(&id, &entry.Text, &entry.Label); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		ds.Entries[id] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	cursorRows, err := db.Query("SELECT name, value FROM cursors")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer cursorRows.Close()

	for cursorRows.Next() {
		var name string
		var value sql.NullString
		if err := cursorRows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		switch name {
		case "start_timestamp":
			ds.Cursors.Start = value.String
		case "end_timestamp":
			ds.Cursors.End = value.String
		}
	}
	if err := cursorRows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return ds, nil
}
