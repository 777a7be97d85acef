package primary

import (
	"context"
	"time"

	"github.com/example/tkitrace/internal/core/engine"
	"github.com/example/tkitrace/internal/core/stage"
)

// TrackingService defines the primary port for production tracking reports.
type TrackingService interface {
	// GetReport processes the current snapshot into records and aggregates.
	GetReport(ctx context.Context, req ReportRequest) (*Report, error)

	// ListDevices returns the enriched records matching the filters.
	ListDevices(ctx context.Context, filters DeviceFilters) (*DeviceList, error)

	// TotalDurations returns one bar per device with a known total process time.
	TotalDurations(ctx context.Context, req ReportRequest) ([]DurationBar, error)
}

// ReportRequest contains parameters shared by every report.
type ReportRequest struct {
	Refresh bool // Bypass the snapshot cache
}

// SnapshotInfo identifies the snapshot a report was computed from.
type SnapshotInfo struct {
	ID        string
	Source    string
	FetchedAt time.Time
	RowCount  int
}

// Report is the full processed view of one snapshot.
type Report struct {
	Snapshot SnapshotInfo
	Summary  engine.Summary
	Records  []engine.DeviceRecord
	ByStage  map[stage.Stage][]engine.DeviceRecord // LabTest..Shipped only
}

// DeviceFilters contains filter options for listing devices.
type DeviceFilters struct {
	Stage   *stage.Stage // Exact current stage
	Batch   string       // Exact batch label
	Refresh bool
}

// DeviceList is a filtered slice of records.
type DeviceList struct {
	Snapshot SnapshotInfo
	Records  []engine.DeviceRecord
}

// DurationBar is one device's total process time, labelled "BATCH (MAC)".
type DurationBar struct {
	Label string
	MAC   string
	Days  int
}
