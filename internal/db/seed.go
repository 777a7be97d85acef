package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SeedSheet is the sheet name the development fixtures are stored under.
const SeedSheet = "Echo"

// seedHeader mirrors the header row of the production tracking sheet.
var seedHeader = []string{"#", "MAC", "BATCH", "LAB TESTING DATE", "Testing_Date01", "Testing_Date02", "Production Date", "Shippent Date", "NOTES"}

// seedRows covers every stage plus the data problems seen in the real sheet:
// blank MACs, unparseable dates, back-filled shipments and ragged rows.
var seedRows = [][]string{
	{"1", "A4:CF:12:00:00:01", "B-2401", "08/01/2024", "12-01-24", "19-01-24", "02-02-24", "09-02-24", ""},
	{"2", "A4:CF:12:00:00:02", "B-2401", "08/01/2024", "13-01-24", "22-01-24", "05-02-24", "09-02-24", ""},
	{"3", "A4:CF:12:00:00:03", "B-2401", "09/01/2024", "15-01-24", "25-01-24", "07-02-24", "", "awaiting courier"},
	{"4", "A4:CF:12:00:00:04", "B-2402", "15/01/2024", "20-01-24", "29-01-24", "", "", ""},
	{"5", "A4:CF:12:00:00:05", "B-2402", "16/01/2024", "22-01-24", "", "", "", ""},
	{"6", "A4:CF:12:00:00:06", "B-2402", "17/01/2024", "", "", "", "", "retest"},
	{"7", "", "B-2402", "17/01/2024", "23-01-24", "", "", "", "unlabelled unit"},
	{"8", "A4:CF:12:00:00:08", "B-2403", "", "", "", "", "20-02-24", "back-filled"},
	{"9", "A4:CF:12:00:00:09", "B-2403", "2024-01-18", "24/01/2024", "", "", "", "wrong formats"},
	{"10", "A4:CF:12:00:00:10", "B-2403"},
	{"11", "   ", "B-2403", "18/01/2024"},
}

// SeedFixtures populates the mirror with a development copy of the tracking sheet.
// The sheet is replaced in one transaction; on error the previous content is kept.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().Format(time.RFC3339)

	header, err := json.Marshal(seedHeader)
	if err != nil {
		return fmt.Errorf("seed header: %w", err)
	}

	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO sheets (name, header, imported_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET header = excluded.header, imported_at = excluded.imported_at`,
		SeedSheet, string(header), now,
	); err != nil {
		return fmt.Errorf("seed sheets: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sheet_rows WHERE sheet_name = ?", SeedSheet); err != nil {
		return fmt.Errorf("seed clear rows: %w", err)
	}

	for i, row := range seedRows {
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("seed row %d: %w", i+1, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO sheet_rows (sheet_name, row_index, cells) VALUES (?, ?, ?)",
			SeedSheet, i+1, string(cells),
		); err != nil {
			return fmt.Errorf("seed sheet_rows: %w", err)
		}
	}

	return tx.Commit()
}
