package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/tkitrace/internal/core/engine"
	"github.com/example/tkitrace/internal/ctxutil"
	"github.com/example/tkitrace/internal/ports/primary"
	"github.com/example/tkitrace/internal/ports/secondary"
)

// snapshotRefresher is implemented by row sources that cache snapshots.
type snapshotRefresher interface {
	Refresh(ctx context.Context) (*secondary.Snapshot, error)
}

// TrackingServiceImpl implements the TrackingService interface.
type TrackingServiceImpl struct {
	source secondary.RowSource
	schema engine.Schema
	policy engine.Policy
}

// NewTrackingService creates a new TrackingService with injected dependencies.
func NewTrackingService(source secondary.RowSource, schema engine.Schema, policy engine.Policy) *TrackingServiceImpl {
	return &TrackingServiceImpl{
		source: source,
		schema: schema,
		policy: policy,
	}
}

// GetReport processes the current snapshot into records and aggregates.
func (s *TrackingServiceImpl) GetReport(ctx context.Context, req primary.ReportRequest) (*primary.Report, error) {
	snap, result, err := s.process(ctx, req.Refresh)
	if err != nil {
		return nil, err
	}

	return &primary.Report{
		Snapshot: snapshotInfo(snap),
		Summary:  result.Summary,
		Records:  result.Records,
		ByStage:  result.StageSubsets(),
	}, nil
}

// ListDevices returns the enriched records matching the filters.
func (s *TrackingServiceImpl) ListDevices(ctx context.Context, filters primary.DeviceFilters) (*primary.DeviceList, error) {
	snap, result, err := s.process(ctx, filters.Refresh)
	if err != nil {
		return nil, err
	}

	records := result.Records
	if filters.Stage != nil {
		records = result.ByStage(*filters.Stage)
	}

	list := &primary.DeviceList{Snapshot: snapshotInfo(snap)}
	for _, r := range records {
		if filters.Batch != "" && r.Batch != filters.Batch {
			continue
		}
		list.Records = append(list.Records, r)
	}
	return list, nil
}

// TotalDurations returns one bar per device with a known total process time.
func (s *TrackingServiceImpl) TotalDurations(ctx context.Context, req primary.ReportRequest) ([]primary.DurationBar, error) {
	_, result, err := s.process(ctx, req.Refresh)
	if err != nil {
		return nil, err
	}

	var bars []primary.DurationBar
	for _, r := range result.Records {
		if !r.Durations.Total.Valid {
			continue
		}
		bars = append(bars, primary.DurationBar{
			Label: fmt.Sprintf("%s (%s)", r.Batch, r.MAC),
			MAC:   r.MAC,
			Days:  r.Durations.Total.Value,
		})
	}
	return bars, nil
}

// process fetches a snapshot and runs the stage engine over it.
func (s *TrackingServiceImpl) process(ctx context.Context, refresh bool) (*secondary.Snapshot, *engine.Result, error) {
	log := ctxutil.Logger(ctx).WithField("source", s.source.Name())

	snap, err := s.fetch(ctx, refresh)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch snapshot from %s: %w", s.source.Name(), err)
	}
	log = log.WithField("snapshot", snap.ID)

	start := time.Now()
	result, err := engine.Process(engine.Table{Header: snap.Header, Rows: snap.Rows}, s.schema, s.policy)
	if err != nil {
		var schemaErr *engine.SchemaError
		switch {
		case errors.Is(err, engine.ErrEmptyDataset):
			log.Warn("snapshot has no data rows")
		case errors.As(err, &schemaErr):
			log.WithField("missing", schemaErr.Missing).Error("snapshot header does not match schema")
		}
		return nil, nil, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}

	log.WithFields(logrus.Fields{
		"rows":    len(snap.Rows),
		"devices": result.Summary.Total,
		"dropped": result.Summary.Dropped,
		"elapsed": time.Since(start).String(),
	}).Info("snapshot processed")

	return snap, result, nil
}

func (s *TrackingServiceImpl) fetch(ctx context.Context, refresh bool) (*secondary.Snapshot, error) {
	if refresh {
		if r, ok := s.source.(snapshotRefresher); ok {
			return r.Refresh(ctx)
		}
	}
	return s.source.Fetch(ctx)
}

func snapshotInfo(snap *secondary.Snapshot) primary.SnapshotInfo {
	return primary.SnapshotInfo{
		ID:        snap.ID,
		Source:    snap.Source,
		FetchedAt: snap.FetchedAt,
		RowCount:  len(snap.Rows),
	}
}

var _ primary.TrackingService = (*TrackingServiceImpl)(nil)
