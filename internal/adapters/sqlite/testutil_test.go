// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/tkitrace/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	// Use the authoritative schema from schema.go
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedSheet inserts a sheet with raw JSON rows.
func seedSheet(t *testing.T, db *sql.DB, name, header string, rows ...string) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO sheets (name, header) VALUES (?, ?)", name, header); err != nil {
		t.Fatalf("failed to seed sheet: %v", err)
	}
	for i, cells := range rows {
		if _, err := db.Exec("INSERT INTO sheet_rows (sheet_name, row_index, cells) VALUES (?, ?, ?)", name, i+1, cells); err != nil {
			t.Fatalf("failed to seed row: %v", err)
		}
	}
}
