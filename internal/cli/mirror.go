package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tkitrace/internal/adapters/csvfile"
	"github.com/example/tkitrace/internal/ctxutil"
	"github.com/example/tkitrace/internal/db"
	"github.com/example/tkitrace/internal/wire"
)

// sheetReplacer is the part of the sheet mirror used by import.
type sheetReplacer interface {
	Replace(ctx context.Context, sheet string, header []string, rows [][]string) error
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [csv-file]",
		Short: "Load a CSV export of the tracking sheet into the local mirror",
		Long: `Replace the content of a mirrored sheet with a CSV export.
The first CSV record is the header row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext(cmd)

			mirror, err := wire.Mirror()
			if err != nil {
				return fmt.Errorf("failed to open mirror: %w", err)
			}

			sheet, _ := cmd.Flags().GetString("sheet")
			if sheet == "" {
				cfg, err := wire.Config()
				if err != nil {
					return err
				}
				sheet = cfg.MirrorSheet
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			n, err := importCSV(ctx, mirror, f, sheet)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d rows into sheet %s\n", n, sheet)
			return nil
		},
	}
	cmd.Flags().String("sheet", "", "Target sheet name (default: mirror_sheet from config)")
	return cmd
}

// importCSV reads a CSV export and stores it as the full content of sheet.
func importCSV(ctx context.Context, mirror sheetReplacer, r io.Reader, sheet string) (int, error) {
	header, rows, err := csvfile.Read(r)
	if err != nil {
		return 0, err
	}
	if len(header) == 0 {
		return 0, fmt.Errorf("csv has no header row")
	}

	if err := mirror.Replace(ctx, sheet, header, rows); err != nil {
		return 0, fmt.Errorf("failed to import sheet %s: %w", sheet, err)
	}

	ctxutil.Logger(ctx).WithField("sheet", sheet).WithField("rows", len(rows)).Info("sheet imported")
	return len(rows), nil
}

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample tracking data into the local mirror",
		Long: fmt.Sprintf(`Replace sheet %s in the local mirror with sample devices.
The sample covers every stage and a few malformed rows.`, db.SeedSheet),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := wire.MirrorDB()
			if err != nil {
				return fmt.Errorf("failed to open mirror: %w", err)
			}

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed mirror: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded sheet %s\n", db.SeedSheet)
			return nil
		},
	}
}

// MirrorCmd returns the mirror command
func MirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Inspect the local sheet mirror",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sheets",
		Short: "List mirrored sheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext(cmd)

			mirror, err := wire.Mirror()
			if err != nil {
				return fmt.Errorf("failed to open mirror: %w", err)
			}

			sheets, err := mirror.Sheets(ctx)
			if err != nil {
				return fmt.Errorf("failed to list sheets: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(sheets) == 0 {
				fmt.Fprintln(out, "No sheets mirrored")
				return nil
			}

			fmt.Fprintf(out, "\n%-20s %-8s %s\n", "SHEET", "ROWS", "IMPORTED")
			fmt.Fprintln(out, "────────────────────────────────────────────────────────────────")
			for _, s := range sheets {
				fmt.Fprintf(out, "%-20s %-8d %s\n", s.Name, s.RowCount, s.ImportedAt)
			}
			fmt.Fprintln(out)
			return nil
		},
	})

	return cmd
}
