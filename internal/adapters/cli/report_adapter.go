// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/example/tkitrace/internal/core/engine"
	"github.com/example/tkitrace/internal/core/stage"
	"github.com/example/tkitrace/internal/ports/primary"
)

const barWidth = 40

// ReportAdapter is a thin adapter that renders TrackingService results.
// It depends only on the TrackingService interface, enabling easy testing with mocks.
type ReportAdapter struct {
	service primary.TrackingService
	out     io.Writer
}

// NewReportAdapter creates a new ReportAdapter with the given service.
func NewReportAdapter(service primary.TrackingService, out io.Writer) *ReportAdapter {
	return &ReportAdapter{
		service: service,
		out:     out,
	}
}

// Summary prints stage counts and mean durations.
func (a *ReportAdapter) Summary(ctx context.Context, refresh bool) error {
	report, err := a.service.GetReport(ctx, primary.ReportRequest{Refresh: refresh})
	if err != nil {
		return a.handleError(err)
	}

	a.snapshotHeader(report.Snapshot)

	s := report.Summary
	fmt.Fprintln(a.out, color.New(color.Bold).Sprint("Process Summary"))
	fmt.Fprintf(a.out, "  %-20s %d\n", "Total devices", s.Total)
	for _, st := range stage.All {
		fmt.Fprintf(a.out, "  %-20s %d\n", st.Label(), s.Count(st))
	}
	if s.Dropped > 0 {
		fmt.Fprintf(a.out, "  %s\n", color.New(color.FgYellow).Sprintf("(%d rows without MAC skipped)", s.Dropped))
	}
	fmt.Fprintln(a.out)

	fmt.Fprintln(a.out, color.New(color.Bold).Sprint("Average Time Between Stages"))
	printed := 0
	for _, t := range engine.Transitions {
		m := s.Mean(t)
		if !m.Valid {
			continue
		}
		line := fmt.Sprintf("  %-24s %s days (n=%d)", t.Label()+":", m, m.Samples)
		if t == engine.TotalProcess {
			line = color.New(color.FgGreen).Sprint(line)
		}
		fmt.Fprintln(a.out, line)
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(a.out, "  No stage durations available yet")
	}
	fmt.Fprintln(a.out)

	return nil
}

// stageColumn is one column of a per-stage detail table.
type stageColumn struct {
	title string
	value func(engine.DeviceRecord) string
}

var (
	colID    = stageColumn{"ID", func(r engine.DeviceRecord) string { return r.ID }}
	colMAC   = stageColumn{"MAC", func(r engine.DeviceRecord) string { return r.MAC }}
	colBatch = stageColumn{"BATCH", func(r engine.DeviceRecord) string { return r.Batch }}
	colStage = stageColumn{"STAGE", func(r engine.DeviceRecord) string { return r.Stage.Label() }}
)

func dateColumn(title string, f engine.Field) stageColumn {
	return stageColumn{title, func(r engine.DeviceRecord) string { return r.Date(f).String() }}
}

func daysColumn(title string, t engine.Transition) stageColumn {
	return stageColumn{title, func(r engine.DeviceRecord) string { return r.Durations.Get(t).String() }}
}

// stageColumns lists the detail columns shown for devices at each stage.
var stageColumns = map[stage.Stage][]stageColumn{
	stage.Pending:        {colID, colMAC, colBatch},
	stage.LabTest:        {colID, colMAC, colBatch, dateColumn("LAB DATE", engine.FieldLabTestDate)},
	stage.QC1:            {colID, colMAC, colBatch, dateColumn("QC1 DATE", engine.FieldQC1Date), daysColumn("LAB→QC1", engine.LabToQC1)},
	stage.QC2:            {colID, colMAC, colBatch, dateColumn("QC2 DATE", engine.FieldQC2Date), daysColumn("QC1→QC2", engine.QC1ToQC2)},
	stage.ProductionDone: {colID, colMAC, colBatch, dateColumn("PROD DATE", engine.FieldProductionDate), daysColumn("TOTAL", engine.TotalProcess)},
	stage.Shipped:        {colID, colMAC, colBatch, dateColumn("PROD DATE", engine.FieldProductionDate), daysColumn("TOTAL", engine.TotalProcess)},
}

var deviceColumns = []stageColumn{
	colID, colMAC, colBatch, colStage,
	dateColumn("LAB", engine.FieldLabTestDate),
	dateColumn("QC1", engine.FieldQC1Date),
	dateColumn("QC2", engine.FieldQC2Date),
	dateColumn("PROD", engine.FieldProductionDate),
	dateColumn("SHIP", engine.FieldShipmentDate),
	daysColumn("L→Q1", engine.LabToQC1),
	daysColumn("Q1→Q2", engine.QC1ToQC2),
	daysColumn("Q2→P", engine.QC2ToProduction),
	daysColumn("P→S", engine.ProductionToShipment),
	daysColumn("TOTAL", engine.TotalProcess),
}

// Stage prints the devices currently at st with that stage's detail columns.
func (a *ReportAdapter) Stage(ctx context.Context, st stage.Stage, refresh bool) error {
	list, err := a.service.ListDevices(ctx, primary.DeviceFilters{Stage: &st, Refresh: refresh})
	if err != nil {
		return a.handleError(err)
	}

	fmt.Fprintf(a.out, "\n%s (%d)\n", color.New(color.Bold).Sprint(st.Label()), len(list.Records))
	if len(list.Records) == 0 {
		fmt.Fprintf(a.out, "No devices at %s\n\n", st.Label())
		return nil
	}
	a.table(stageColumns[st], list.Records)
	return nil
}

// Devices prints every matching record with raw dates and derived durations.
func (a *ReportAdapter) Devices(ctx context.Context, filters primary.DeviceFilters) error {
	list, err := a.service.ListDevices(ctx, filters)
	if err != nil {
		return a.handleError(err)
	}

	if len(list.Records) == 0 {
		fmt.Fprintln(a.out, "No devices found")
		return nil
	}

	a.snapshotHeader(list.Snapshot)
	a.table(deviceColumns, list.Records)
	return nil
}

// Chart prints a horizontal bar of total process days per completed device.
func (a *ReportAdapter) Chart(ctx context.Context, refresh bool) error {
	bars, err := a.service.TotalDurations(ctx, primary.ReportRequest{Refresh: refresh})
	if err != nil {
		return a.handleError(err)
	}

	fmt.Fprintln(a.out, color.New(color.Bold).Sprint("Total Duration per Device (days)"))
	if len(bars) == 0 {
		fmt.Fprintln(a.out, "No devices have completed the process yet")
		return nil
	}

	maxDays := 0
	for _, b := range bars {
		maxDays = max(maxDays, abs(b.Days))
	}

	// Only the label column is aligned; the coloured bar is the trailing cell.
	w := tabwriter.NewWriter(a.out, 0, 0, 1, ' ', 0)
	for _, b := range bars {
		n := 0
		if maxDays > 0 {
			n = abs(b.Days) * barWidth / maxDays
		}
		bar := strings.Repeat("█", n)
		if b.Days < 0 {
			bar = color.New(color.FgRed).Sprint(bar)
		} else {
			bar = color.New(color.FgCyan).Sprint(bar)
		}
		fmt.Fprintf(w, "%s\t│%s %d\n", b.Label, bar, b.Days)
	}
	w.Flush()
	fmt.Fprintln(a.out)
	return nil
}

func (a *ReportAdapter) snapshotHeader(info primary.SnapshotInfo) {
	fetched := ""
	if !info.FetchedAt.IsZero() {
		fetched = ", fetched " + info.FetchedAt.Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(a.out, "\nSnapshot %s (%s, %d rows%s)\n\n", info.ID, info.Source, info.RowCount, fetched)
}

func (a *ReportAdapter) table(columns []stageColumn, records []engine.DeviceRecord) {
	titles := make([]string, len(columns))
	rules := make([]string, len(columns))
	for i, c := range columns {
		titles[i] = c.title
		rules[i] = strings.Repeat("─", utf8.RuneCountInString(c.title))
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(titles, "\t"))
	fmt.Fprintln(w, strings.Join(rules, "\t"))

	cells := make([]string, len(columns))
	for _, r := range records {
		for i, c := range columns {
			cells[i] = c.value(r)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	fmt.Fprintln(a.out)
}

// handleError turns an empty dataset into a warning; everything else is returned.
func (a *ReportAdapter) handleError(err error) error {
	if errors.Is(err, engine.ErrEmptyDataset) {
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("⚠ No data found in the tracking sheet."))
		return nil
	}
	return err
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
