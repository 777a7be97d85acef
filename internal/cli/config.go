package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tkitrace/internal/config"
	"github.com/example/tkitrace/internal/wire"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tkitrace configuration",
		Long: `Configuration is resolved from defaults, .tkitrace/config.json in the
working directory, a .env file, and TKI_* environment variables, in that order.`,
	}
	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write .tkitrace/config.json in the working directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			source, _ := cmd.Flags().GetString("source")
			spreadsheetID, _ := cmd.Flags().GetString("spreadsheet-id")
			csvPath, _ := cmd.Flags().GetString("csv")
			force, _ := cmd.Flags().GetBool("force")

			return initConfig(cmd.OutOrStdout(), dir, source, spreadsheetID, csvPath, force)
		},
	}
	cmd.Flags().String("source", config.SourceSQLite, "Row source: sheets, sqlite or csv")
	cmd.Flags().String("spreadsheet-id", "", "Google Sheets spreadsheet ID (source sheets)")
	cmd.Flags().String("csv", "", "CSV export path (source csv)")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing config")
	return cmd
}

func initConfig(out io.Writer, dir, source, spreadsheetID, csvPath string, force bool) error {
	path := config.Path(dir)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}

	cfg := config.Default()
	cfg.Source = source
	cfg.Sheets.SpreadsheetID = spreadsheetID
	cfg.CSVPath = csvPath
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.SaveConfig(dir, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ Wrote %s (source: %s)\n", path, cfg.Source)
	return nil
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := wire.Config()
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
