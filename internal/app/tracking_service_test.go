package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/tkitrace/internal/core/engine"
	"github.com/example/tkitrace/internal/core/stage"
	"github.com/example/tkitrace/internal/ports/primary"
	"github.com/example/tkitrace/internal/ports/secondary"
)

var trackingHeader = []string{"#", "MAC", "BATCH", "LAB TESTING DATE", "Testing_Date01", "Testing_Date02", "Production Date", "Shippent Date"}

// mockRowSource implements secondary.RowSource for testing.
type mockRowSource struct {
	snapshot   *secondary.Snapshot
	fetchErr   error
	fetchCalls int
}

func (m *mockRowSource) Name() string { return "mock" }

func (m *mockRowSource) Fetch(ctx context.Context) (*secondary.Snapshot, error) {
	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.snapshot, nil
}

// mockCachedSource adds Refresh to mockRowSource.
type mockCachedSource struct {
	mockRowSource
	refreshCalls int
}

func (m *mockCachedSource) Refresh(ctx context.Context) (*secondary.Snapshot, error) {
	m.refreshCalls++
	return m.snapshot, nil
}

func newTestTrackingService(src secondary.RowSource) *TrackingServiceImpl {
	return NewTrackingService(src, engine.DefaultSchema(), engine.DefaultPolicy())
}

func sampleSnapshot() *secondary.Snapshot {
	return &secondary.Snapshot{
		ID:     "snap-1",
		Source: "mock",
		Header: trackingHeader,
		Rows: [][]string{
			{"1", "AA:01", "B1", "01/01/2024", "05-01-24", "10-01-24", "20-01-24", "25-01-24"},
			{"2", "AA:02", "B1", "02/01/2024", "06-01-24"},
			{"3", "", "B1", "02/01/2024"},
			{"4", "AA:04", "B2", "03/01/2024", "08-01-24", "12-01-24", "22-01-24", "30-01-24"},
			{"5", "AA:05", "B2"},
		},
	}
}

func TestTrackingService_GetReport(t *testing.T) {
	ctx := context.Background()

	t.Run("processes snapshot", func(t *testing.T) {
		svc := newTestTrackingService(&mockRowSource{snapshot: sampleSnapshot()})

		report, err := svc.GetReport(ctx, primary.ReportRequest{})
		if err != nil {
			t.Fatalf("GetReport failed: %v", err)
		}
		if report.Snapshot.ID != "snap-1" || report.Snapshot.RowCount != 5 {
			t.Errorf("Snapshot = %+v", report.Snapshot)
		}
		if report.Summary.Total != 4 {
			t.Errorf("Total = %d, want 4", report.Summary.Total)
		}
		if report.Summary.Dropped != 1 {
			t.Errorf("Dropped = %d, want 1", report.Summary.Dropped)
		}
		if report.Summary.Count(stage.Shipped) != 2 {
			t.Errorf("Shipped = %d, want 2", report.Summary.Count(stage.Shipped))
		}
		if len(report.ByStage[stage.QC1]) != 1 {
			t.Errorf("QC1 subset = %d, want 1", len(report.ByStage[stage.QC1]))
		}
		total := report.Summary.Mean(engine.TotalProcess)
		if !total.Valid || total.Value != 25.5 {
			t.Errorf("total mean = %+v, want 25.5", total)
		}
	})

	t.Run("empty dataset is reported distinctly", func(t *testing.T) {
		svc := newTestTrackingService(&mockRowSource{snapshot: &secondary.Snapshot{ID: "empty"}})

		_, err := svc.GetReport(ctx, primary.ReportRequest{})
		if !errors.Is(err, engine.ErrEmptyDataset) {
			t.Errorf("expected ErrEmptyDataset, got %v", err)
		}
	})

	t.Run("schema error propagates", func(t *testing.T) {
		svc := newTestTrackingService(&mockRowSource{snapshot: &secondary.Snapshot{
			ID:     "bad",
			Header: []string{"#", "BATCH"},
			Rows:   [][]string{{"1", "B1"}},
		}})

		_, err := svc.GetReport(ctx, primary.ReportRequest{})
		var schemaErr *engine.SchemaError
		if !errors.As(err, &schemaErr) {
			t.Errorf("expected SchemaError, got %v", err)
		}
	})

	t.Run("fetch error is wrapped", func(t *testing.T) {
		cause := errors.New("connection refused")
		svc := newTestTrackingService(&mockRowSource{fetchErr: cause})

		_, err := svc.GetReport(ctx, primary.ReportRequest{})
		if !errors.Is(err, cause) {
			t.Errorf("expected wrapped cause, got %v", err)
		}
	})

	t.Run("refresh uses refresher when available", func(t *testing.T) {
		src := &mockCachedSource{mockRowSource: mockRowSource{snapshot: sampleSnapshot()}}
		svc := newTestTrackingService(src)

		svc.GetReport(ctx, primary.ReportRequest{Refresh: true})
		svc.GetReport(ctx, primary.ReportRequest{})

		if src.refreshCalls != 1 || src.fetchCalls != 1 {
			t.Errorf("refresh=%d fetch=%d, want 1 and 1", src.refreshCalls, src.fetchCalls)
		}
	})

	t.Run("refresh falls back to fetch", func(t *testing.T) {
		src := &mockRowSource{snapshot: sampleSnapshot()}
		svc := newTestTrackingService(src)

		if _, err := svc.GetReport(ctx, primary.ReportRequest{Refresh: true}); err != nil {
			t.Fatalf("GetReport failed: %v", err)
		}
		if src.fetchCalls != 1 {
			t.Errorf("fetch calls = %d, want 1", src.fetchCalls)
		}
	})
}

func TestTrackingService_ListDevices(t *testing.T) {
	ctx := context.Background()
	svc := newTestTrackingService(&mockRowSource{snapshot: sampleSnapshot()})

	shipped := stage.Shipped
	pending := stage.Pending

	tests := []struct {
		name     string
		filters  primary.DeviceFilters
		wantMACs []string
	}{
		{name: "no filters", filters: primary.DeviceFilters{}, wantMACs: []string{"AA:01", "AA:02", "AA:04", "AA:05"}},
		{name: "by stage", filters: primary.DeviceFilters{Stage: &shipped}, wantMACs: []string{"AA:01", "AA:04"}},
		{name: "pending", filters: primary.DeviceFilters{Stage: &pending}, wantMACs: []string{"AA:05"}},
		{name: "by batch", filters: primary.DeviceFilters{Batch: "B1"}, wantMACs: []string{"AA:01", "AA:02"}},
		{name: "stage and batch", filters: primary.DeviceFilters{Stage: &shipped, Batch: "B2"}, wantMACs: []string{"AA:04"}},
		{name: "no match", filters: primary.DeviceFilters{Batch: "B9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.ListDevices(ctx, tt.filters)
			if err != nil {
				t.Fatalf("ListDevices failed: %v", err)
			}
			if len(list.Records) != len(tt.wantMACs) {
				t.Fatalf("got %d records, want %d", len(list.Records), len(tt.wantMACs))
			}
			for i, mac := range tt.wantMACs {
				if list.Records[i].MAC != mac {
					t.Errorf("Records[%d].MAC = %q, want %q", i, list.Records[i].MAC, mac)
				}
			}
		})
	}
}

func TestTrackingService_TotalDurations(t *testing.T) {
	svc := newTestTrackingService(&mockRowSource{snapshot: sampleSnapshot()})

	bars, err := svc.TotalDurations(context.Background(), primary.ReportRequest{})
	if err != nil {
		t.Fatalf("TotalDurations failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[0].Label != "B1 (AA:01)" || bars[0].Days != 24 {
		t.Errorf("bars[0] = %+v", bars[0])
	}
	if bars[1].Label != "B2 (AA:04)" || bars[1].Days != 27 {
		t.Errorf("bars[1] = %+v", bars[1])
	}
}
