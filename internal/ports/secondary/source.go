package secondary

import (
	"context"
	"time"
)

// RowSource defines the secondary port for fetching a tracking snapshot.
// Implementations return the raw range: header row first, string cells only.
type RowSource interface {
	// Fetch retrieves the current snapshot.
	Fetch(ctx context.Context) (*Snapshot, error)

	// Name identifies the source in logs and reports.
	Name() string
}

// Snapshot is one fetched copy of the full source table.
type Snapshot struct {
	ID        string
	Source    string
	Header    []string
	Rows      [][]string
	FetchedAt time.Time
}

// SheetMirror defines the secondary port for the local copy of a tracking sheet.
type SheetMirror interface {
	RowSource

	// Replace stores header and rows as the full content of the named sheet.
	Replace(ctx context.Context, sheet string, header []string, rows [][]string) error

	// Sheets lists the mirrored sheet names with their row counts.
	Sheets(ctx context.Context) ([]MirroredSheet, error)
}

// MirroredSheet describes one sheet held by the mirror.
type MirroredSheet struct {
	Name       string
	RowCount   int
	ImportedAt string
}
