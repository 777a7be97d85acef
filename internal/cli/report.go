package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/tkitrace/internal/core/stage"
	"github.com/example/tkitrace/internal/ports/primary"
	"github.com/example/tkitrace/internal/wire"
)

// ReportCmd returns the report command
func ReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show stage counts and average durations",
		Long: `Fetch the tracking snapshot, derive each device's stage and the days
between stages, and print the process summary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext(cmd)
			adapter, err := wire.ReportAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return adapter.Summary(ctx, refreshFlag(cmd))
		},
	}
	addRefreshFlag(cmd)
	return cmd
}

// StageCmd returns the stage command
func StageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage [stage]",
		Short: "List devices currently at a stage",
		Long: fmt.Sprintf(`List the devices whose current stage is exactly the given one.

Stages: %s`, strings.Join(stageNames(), ", ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: stageNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := stage.Parse(args[0])
			if err != nil {
				return err
			}

			ctx := NewContext(cmd)
			adapter, err := wire.ReportAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return adapter.Stage(ctx, st, refreshFlag(cmd))
		},
	}
	addRefreshFlag(cmd)
	return cmd
}

// ChartCmd returns the chart command
func ChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Chart total process days per completed device",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext(cmd)
			adapter, err := wire.ReportAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return adapter.Chart(ctx, refreshFlag(cmd))
		},
	}
	addRefreshFlag(cmd)
	return cmd
}

// DevicesCmd returns the devices command
func DevicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List every device with its dates and durations",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := deviceFilters(cmd)
			if err != nil {
				return err
			}

			ctx := NewContext(cmd)
			adapter, err := wire.ReportAdapterWithOutput(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return adapter.Devices(ctx, filters)
		},
	}
	cmd.Flags().StringP("stage", "s", "", "Only devices currently at this stage")
	cmd.Flags().StringP("batch", "b", "", "Only devices from this batch")
	addRefreshFlag(cmd)
	return cmd
}

func deviceFilters(cmd *cobra.Command) (primary.DeviceFilters, error) {
	filters := primary.DeviceFilters{Refresh: refreshFlag(cmd)}
	filters.Batch, _ = cmd.Flags().GetString("batch")

	if raw, _ := cmd.Flags().GetString("stage"); raw != "" {
		st, err := stage.Parse(raw)
		if err != nil {
			return filters, err
		}
		filters.Stage = &st
	}
	return filters, nil
}

func stageNames() []string {
	names := make([]string, 0, len(stage.All))
	for _, st := range stage.All {
		names = append(names, st.String())
	}
	return names
}
