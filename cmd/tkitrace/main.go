package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tkitrace/internal/cli"
	"github.com/example/tkitrace/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "tkitrace",
		Short:   "tkitrace - production tracking for TKI devices",
		Version: version.String(),
		Long: `tkitrace reads the device tracking sheet, derives each device's stage
from its recorded milestone dates, and reports the days spent between stages.`,
		SilenceUsage: true,
	}

	// Reports
	rootCmd.AddCommand(cli.ReportCmd())
	rootCmd.AddCommand(cli.StageCmd())
	rootCmd.AddCommand(cli.DevicesCmd())
	rootCmd.AddCommand(cli.ChartCmd())

	// Local mirror
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.SeedCmd())
	rootCmd.AddCommand(cli.MirrorCmd())

	rootCmd.AddCommand(cli.ConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
