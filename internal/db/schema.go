package db

import "database/sql"

// SchemaSQL is the complete schema for a fresh mirror database.
// This schema reflects the current state after all migrations.
//
// All repository tests load it through GetSchemaSQL() so test databases cannot
// drift from production ones. When adding columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Sheets (one mirrored tracking range per name)
CREATE TABLE IF NOT EXISTS sheets (
	name TEXT PRIMARY KEY,
	header TEXT NOT NULL,
	imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Sheet rows (raw cells as a JSON array, in source order)
CREATE TABLE IF NOT EXISTS sheet_rows (
	sheet_name TEXT NOT NULL,
	row_index INTEGER NOT NULL,
	cells TEXT NOT NULL,
	PRIMARY KEY (sheet_name, row_index),
	FOREIGN KEY (sheet_name) REFERENCES sheets(name) ON DELETE CASCADE
);
`

// InitSchema creates the schema on a fresh database or migrates an existing one.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		// schema_version table exists - run any pending migrations
		return RunMigrations(database)
	}

	// Fresh install - create modern schema directly and mark every migration applied
	if _, err := database.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
