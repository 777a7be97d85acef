// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/tkitrace/internal/ports/secondary"
)

// SheetMirror implements secondary.SheetMirror with SQLite.
// It serves one named sheet as a row source and accepts full replacements of any sheet.
type SheetMirror struct {
	db    *sql.DB
	sheet string
	now   func() time.Time
}

// NewSheetMirror creates a mirror that reads the given sheet.
func NewSheetMirror(db *sql.DB, sheet string) *SheetMirror {
	return &SheetMirror{db: db, sheet: sheet, now: time.Now}
}

// Name identifies the source in logs and reports.
func (m *SheetMirror) Name() string {
	return "sqlite:" + m.sheet
}

// Fetch reads the mirrored sheet as a snapshot.
// An unknown sheet yields an empty snapshot so callers report an empty dataset.
func (m *SheetMirror) Fetch(ctx context.Context) (*secondary.Snapshot, error) {
	snap := &secondary.Snapshot{
		ID:        uuid.NewString(),
		Source:    m.Name(),
		FetchedAt: m.now(),
	}

	var header string
	err := m.db.QueryRowContext(ctx, `SELECT header FROM sheets WHERE name = ?`, m.sheet).Scan(&header)
	if err == sql.ErrNoRows {
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet %s: %w", m.sheet, err)
	}
	if err := json.Unmarshal([]byte(header), &snap.Header); err != nil {
		return nil, fmt.Errorf("failed to decode header of sheet %s: %w", m.sheet, err)
	}

	rows, err := m.db.QueryContext(ctx,
		`SELECT row_index, cells FROM sheet_rows WHERE sheet_name = ? ORDER BY row_index`,
		m.sheet,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows of sheet %s: %w", m.sheet, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			index int
			cells string
			row   []string
		)
		if err := rows.Scan(&index, &cells); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(cells), &row); err != nil {
			return nil, fmt.Errorf("failed to decode row %d of sheet %s: %w", index, m.sheet, err)
		}
		snap.Rows = append(snap.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return snap, nil
}

// Replace stores header and rows as the full content of the named sheet.
func (m *SheetMirror) Replace(ctx context.Context, sheet string, header []string, rows [][]string) error {
	encodedHeader, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sheets (name, header, imported_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET header = excluded.header, imported_at = excluded.imported_at`,
		sheet, string(encodedHeader), m.now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to upsert sheet %s: %w", sheet, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet_name = ?`, sheet); err != nil {
		return fmt.Errorf("failed to clear rows of sheet %s: %w", sheet, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sheet_rows (sheet_name, row_index, cells) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if row == nil {
			row = []string{}
		}
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, sheet, i+1, string(cells)); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sheet %s: %w", sheet, err)
	}
	return nil
}

// Sheets lists the mirrored sheet names with their row counts.
func (m *SheetMirror) Sheets(ctx context.Context) ([]secondary.MirroredSheet, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT s.name, COUNT(r.row_index), COALESCE(s.imported_at, '')
		FROM sheets s
		LEFT JOIN sheet_rows r ON r.sheet_name = s.name
		GROUP BY s.name
		ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	var sheets []secondary.MirroredSheet
	for rows.Next() {
		var s secondary.MirroredSheet
		if err := rows.Scan(&s.Name, &s.RowCount, &s.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		sheets = append(sheets, s)
	}
	return sheets, rows.Err()
}

var _ secondary.SheetMirror = (*SheetMirror)(nil)
