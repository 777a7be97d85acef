package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/example/tkitrace/internal/core/engine"
	"github.com/example/tkitrace/internal/core/stage"
	"github.com/example/tkitrace/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

// mockTrackingService implements primary.TrackingService for testing
type mockTrackingService struct {
	getReportFn      func(ctx context.Context, req primary.ReportRequest) (*primary.Report, error)
	listDevicesFn    func(ctx context.Context, filters primary.DeviceFilters) (*primary.DeviceList, error)
	totalDurationsFn func(ctx context.Context, req primary.ReportRequest) ([]primary.DurationBar, error)

	// Track calls for verification
	lastReportReq primary.ReportRequest
	lastFilters   primary.DeviceFilters
}

func (m *mockTrackingService) GetReport(ctx context.Context, req primary.ReportRequest) (*primary.Report, error) {
	m.lastReportReq = req
	if m.getReportFn != nil {
		return m.getReportFn(ctx, req)
	}
	return &primary.Report{}, nil
}

func (m *mockTrackingService) ListDevices(ctx context.Context, filters primary.DeviceFilters) (*primary.DeviceList, error) {
	m.lastFilters = filters
	if m.listDevicesFn != nil {
		return m.listDevicesFn(ctx, filters)
	}
	return &primary.DeviceList{}, nil
}

func (m *mockTrackingService) TotalDurations(ctx context.Context, req primary.ReportRequest) ([]primary.DurationBar, error) {
	m.lastReportReq = req
	if m.totalDurationsFn != nil {
		return m.totalDurationsFn(ctx, req)
	}
	return nil, nil
}

func newTestReportAdapter() (*ReportAdapter, *mockTrackingService, *bytes.Buffer) {
	mock := &mockTrackingService{}
	out := &bytes.Buffer{}
	return NewReportAdapter(mock, out), mock, out
}

func shippedRecord() engine.DeviceRecord {
	r := engine.DeviceRecord{
		ID:             "7",
		MAC:            "AA:01",
		Batch:          "B1",
		LabTestDate:    engine.NewDate(2024, time.January, 1),
		QC1Date:        engine.NewDate(2024, time.January, 5),
		QC2Date:        engine.NewDate(2024, time.January, 10),
		ProductionDate: engine.NewDate(2024, time.January, 20),
		ShipmentDate:   engine.NewDate(2024, time.January, 25),
	}
	return engine.Enrich(r, engine.DefaultPolicy())
}

func TestReportAdapter_Summary(t *testing.T) {
	adapter, mock, out := newTestReportAdapter()

	summary := engine.Aggregate([]engine.DeviceRecord{shippedRecord()})
	summary.Dropped = 2
	mock.getReportFn = func(ctx context.Context, req primary.ReportRequest) (*primary.Report, error) {
		return &primary.Report{
			Snapshot: primary.SnapshotInfo{ID: "snap-1", Source: "csv:echo.csv", RowCount: 3},
			Summary:  summary,
		}, nil
	}

	if err := adapter.Summary(context.Background(), true); err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !mock.lastReportReq.Refresh {
		t.Error("expected refresh to be forwarded")
	}

	output := out.String()
	for _, want := range []string{
		"snap-1",
		"Total devices",
		"Shipped",
		"2 rows without MAC skipped",
		"Lab → NMEA 1:",
		"4.0 days (n=1)",
		"Total Process:",
		"24.0 days",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestReportAdapter_Summary_NoDurations(t *testing.T) {
	adapter, mock, out := newTestReportAdapter()

	pending := engine.Enrich(engine.DeviceRecord{MAC: "AA:09"}, engine.DefaultPolicy())
	mock.getReportFn = func(ctx context.Context, req primary.ReportRequest) (*primary.Report, error) {
		return &primary.Report{Summary: engine.Aggregate([]engine.DeviceRecord{pending})}, nil
	}

	if err := adapter.Summary(context.Background(), false); err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "No stage durations available yet") {
		t.Errorf("expected no-durations message, got:\n%s", output)
	}
	if strings.Contains(output, "days") {
		t.Errorf("absent means should not be printed, got:\n%s", output)
	}
	if strings.Contains(output, "skipped") {
		t.Errorf("dropped line should be hidden when zero, got:\n%s", output)
	}
}

func TestReportAdapter_EmptyDatasetIsWarning(t *testing.T) {
	adapter, mock, out := newTestReportAdapter()

	mock.getReportFn = func(ctx context.Context, req primary.ReportRequest) (*primary.Report, error) {
		return nil, fmt.Errorf("snapshot s1: %w", engine.ErrEmptyDataset)
	}

	if err := adapter.Summary(context.Background(), false); err != nil {
		t.Fatalf("expected empty dataset to be a warning, got %v", err)
	}
	if !strings.Contains(out.String(), "No data found") {
		t.Errorf("expected warning, got:\n%s", out.String())
	}
}

func TestReportAdapter_ServiceError(t *testing.T) {
	adapter, mock, _ := newTestReportAdapter()

	schemaErr := &engine.SchemaError{Missing: []string{"MAC"}}
	mock.listDevicesFn = func(ctx context.Context, filters primary.DeviceFilters) (*primary.DeviceList, error) {
		return nil, schemaErr
	}

	err := adapter.Devices(context.Background(), primary.DeviceFilters{})
	var target *engine.SchemaError
	if !errors.As(err, &target) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestReportAdapter_Stage(t *testing.T) {
	adapter, mock, out := newTestReportAdapter()

	mock.listDevicesFn = func(ctx context.Context, filters primary.DeviceFilters) (*primary.DeviceList, error) {
		return &primary.DeviceList{Records: []engine.DeviceRecord{shippedRecord()}}, nil
	}

	if err := adapter.Stage(context.Background(), stage.Shipped, false); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if mock.lastFilters.Stage == nil || *mock.lastFilters.Stage != stage.Shipped {
		t.Errorf("expected stage filter Shipped, got %v", mock.lastFilters.Stage)
	}

	output := out.String()
	for _, want := range []string{"Shipped (1)", "PROD DATE", "TOTAL", "AA:01", "2024-01-20", "24"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestReportAdapter_Stage_Empty(t *testing.T) {
	adapter, _, out := newTestReportAdapter()

	if err := adapter.Stage(context.Background(), stage.QC2, false); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if !strings.Contains(out.String(), "No devices at NMEA QC 02") {
		t.Errorf("expected empty message, got:\n%s", out.String())
	}
}

func TestReportAdapter_Devices(t *testing.T) {
	adapter, mock, out := newTestReportAdapter()

	qc1 := engine.Enrich(engine.DeviceRecord{
		ID:          "8",
		MAC:         "AA:02",
		Batch:       "B2",
		LabTestDate: engine.NewDate(2024, time.February, 1),
		QC1Date:     engine.NewDate(2024, time.February, 3),
	}, engine.DefaultPolicy())

	mock.listDevicesFn = func(ctx context.Context, filters primary.DeviceFilters) (*primary.DeviceList, error) {
		return &primary.DeviceList{Records: []engine.DeviceRecord{shippedRecord(), qc1}}, nil
	}

	if err := adapter.Devices(context.Background(), primary.DeviceFilters{Batch: "B2"}); err != nil {
		t.Fatalf("Devices failed: %v", err)
	}
	if mock.lastFilters.Batch != "B2" {
		t.Errorf("expected batch filter forwarded, got %q", mock.lastFilters.Batch)
	}

	output := out.String()
	for _, want := range []string{"STAGE", "NMEA QC 01", "Shipped", "2024-02-03", "AA:02"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestReportAdapter_Devices_None(t *testing.T) {
	adapter, _, out := newTestReportAdapter()

	if err := adapter.Devices(context.Background(), primary.DeviceFilters{}); err != nil {
		t.Fatalf("Devices failed: %v", err)
	}
	if !strings.Contains(out.String(), "No devices found") {
		t.Errorf("expected empty message, got:\n%s", out.String())
	}
}

func TestReportAdapter_Chart(t *testing.T) {
	adapter, mock, out := newTestReportAdapter()

	mock.totalDurationsFn = func(ctx context.Context, req primary.ReportRequest) ([]primary.DurationBar, error) {
		return []primary.DurationBar{
			{Label: "B1 (AA:01)", MAC: "AA:01", Days: 20},
			{Label: "B2 (AA:04)", MAC: "AA:04", Days: 10},
		}, nil
	}

	if err := adapter.Chart(context.Background(), false); err != nil {
		t.Fatalf("Chart failed: %v", err)
	}

	lines := strings.Split(out.String(), "\n")
	var long, short string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "B1 (AA:01)"):
			long = l
		case strings.HasPrefix(l, "B2 (AA:04)"):
			short = l
		}
	}
	if strings.Count(long, "█") != barWidth {
		t.Errorf("longest bar should span %d cells, got %q", barWidth, long)
	}
	if strings.Count(short, "█") != barWidth/2 {
		t.Errorf("half bar should span %d cells, got %q", barWidth/2, short)
	}
	if !strings.HasSuffix(long, " 20") {
		t.Errorf("expected day count suffix, got %q", long)
	}
}

func TestReportAdapter_Chart_Empty(t *testing.T) {
	adapter, _, out := newTestReportAdapter()

	if err := adapter.Chart(context.Background(), false); err != nil {
		t.Fatalf("Chart failed: %v", err)
	}
	if !strings.Contains(out.String(), "No devices have completed the process yet") {
		t.Errorf("expected empty chart message, got:\n%s", out.String())
	}
}

func lineContaining(t *testing.T, output, needle string) string {
	t.Helper()
	for _, l := range strings.Split(output, "\n") {
		if strings.Contains(l, needle) {
			return l
		}
	}
	t.Fatalf("no line contains %q in:\n%s", needle, output)
	return ""
}

func TestReportAdapter_Stage_AlignsLongValues(t *testing.T) {
	adapter, mock, out := newTestReportAdapter()

	short := engine.Enrich(engine.DeviceRecord{
		ID:          "1",
		MAC:         "AA:01",
		Batch:       "B1",
		LabTestDate: engine.NewDate(2024, time.January, 1),
	}, engine.DefaultPolicy())
	long := engine.Enrich(engine.DeviceRecord{
		ID:          "100000000",
		MAC:         "A4:CF:12:00:00:01:FF:FF:FF:FF",
		Batch:       "BATCH-2024-JANUARY-LONG",
		LabTestDate: engine.NewDate(2024, time.January, 2),
	}, engine.DefaultPolicy())

	mock.listDevicesFn = func(ctx context.Context, filters primary.DeviceFilters) (*primary.DeviceList, error) {
		return &primary.DeviceList{Records: []engine.DeviceRecord{short, long}}, nil
	}

	if err := adapter.Stage(context.Background(), stage.LabTest, false); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	output := out.String()
	header := strings.Index(lineContaining(t, output, "LAB DATE"), "LAB DATE")
	first := strings.Index(lineContaining(t, output, "AA:01"), "2024-01-01")
	second := strings.Index(lineContaining(t, output, "A4:CF"), "2024-01-02")
	if header != first || first != second {
		t.Errorf("date column misaligned: header=%d short=%d long=%d\n%s", header, first, second, output)
	}
}

func TestReportAdapter_Chart_AlignsNonASCIILabels(t *testing.T) {
	adapter, mock, out := newTestReportAdapter()

	mock.totalDurationsFn = func(ctx context.Context, req primary.ReportRequest) ([]primary.DurationBar, error) {
		return []primary.DurationBar{
			{Label: "Lô-1 (AA:01)", MAC: "AA:01", Days: 12},
			{Label: "B22 (AA:02)", MAC: "AA:02", Days: 6},
		}, nil
	}

	if err := adapter.Chart(context.Background(), false); err != nil {
		t.Fatalf("Chart failed: %v", err)
	}

	output := out.String()
	barColumn := func(line string) int {
		return utf8.RuneCountInString(line[:strings.Index(line, "│")])
	}
	first := barColumn(lineContaining(t, output, "AA:01"))
	second := barColumn(lineContaining(t, output, "AA:02"))
	if first != second {
		t.Errorf("bars start at different columns: %d vs %d\n%s", first, second, output)
	}
}
