//go:build ignore

package main

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Exports a mirrored sheet back to CSV, e.g. to hand a snapshot to someone
// without access to the spreadsheet.
//
//	go run scripts/export_mirror.go -sheet Echo -out echo.csv
func main() {
	sheet := flag.String("sheet", "Echo", "Mirrored sheet to export")
	out := flag.String("out", "", "Output file (default: stdout)")
	dbPath := flag.String("db", "", "Mirror database (default: ~/.tkitrace/mirror.db)")
	dryRun := flag.Bool("dry-run", false, "Print row counts without writing")
	flag.Parse()

	if *dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home dir: %v\n", err)
			os.Exit(1)
		}
		*dbPath = filepath.Join(homeDir, ".tkitrace", "mirror.db")
	}

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	header, rows, err := loadSheet(db, *sheet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sheet %s: %v\n", *sheet, err)
		os.Exit(1)
	}

	if *dryRun {
		fmt.Printf("Sheet %s: %d columns, %d rows\n", *sheet, len(header), len(rows))
		fmt.Println("=== DRY RUN - Nothing written ===")
		return
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		os.Exit(1)
	}
	if err := cw.WriteAll(rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing rows: %v\n", err)
		os.Exit(1)
	}

	if *out != "" {
		fmt.Printf("✓ Exported %d rows from %s to %s\n", len(rows), *sheet, *out)
	}
}

func loadSheet(db *sql.DB, sheet string) ([]string, [][]string, error) {
	var rawHeader string
	if err := db.QueryRow("SELECT header FROM sheets WHERE name = ?", sheet).Scan(&rawHeader); err != nil {
		return nil, nil, err
	}

	var header []string
	if err := json.Unmarshal([]byte(rawHeader), &header); err != nil {
		return nil, nil, fmt.Errorf("decode header: %w", err)
	}

	rs, err := db.Query("SELECT cells FROM sheet_rows WHERE sheet_name = ? ORDER BY row_index ASC", sheet)
	if err != nil {
		return nil, nil, err
	}
	defer rs.Close()

	var rows [][]string
	for rs.Next() {
		var raw string
		if err := rs.Scan(&raw); err != nil {
			return nil, nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, nil, fmt.Errorf("decode row: %w", err)
		}
		rows = append(rows, cells)
	}

	return header, rows, rs.Err()
}
