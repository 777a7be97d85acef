package engine

import "github.com/example/tkitrace/internal/core/stage"

// Result is the enriched output of one snapshot.
type Result struct {
	Records []DeviceRecord
	Summary Summary
}

// Enrich returns a copy of r with its stage and durations derived.
func Enrich(r DeviceRecord, p Policy) DeviceRecord {
	r.Stage = ClassifyStage(r)
	r.Durations = ComputeDurations(r, p)
	return r
}

// Process runs the full pipeline over a snapshot table.
// Returns ErrEmptyDataset when the table has no data rows and a *SchemaError
// when a required column is missing. Every row-level problem is absorbed.
func Process(table Table, schema Schema, p Policy) (*Result, error) {
	if len(table.Header) == 0 || len(table.Rows) == 0 {
		return nil, ErrEmptyDataset
	}
	if err := schema.Check(table.Header); err != nil {
		return nil, err
	}

	normalized, dropped := Normalize(table.RawRows(), schema)

	records := make([]DeviceRecord, len(normalized))
	for i, r := range normalized {
		records[i] = Enrich(r, p)
	}

	summary := Aggregate(records)
	summary.Dropped = dropped

	return &Result{Records: records, Summary: summary}, nil
}

// ByStage returns the records whose current stage is exactly s.
func (r *Result) ByStage(s stage.Stage) []DeviceRecord {
	var out []DeviceRecord
	for _, rec := range r.Records {
		if rec.Stage == s {
			out = append(out, rec)
		}
	}
	return out
}

// StageSubsets returns the per-stage record subsets for every post-pending stage.
func (r *Result) StageSubsets() map[stage.Stage][]DeviceRecord {
	subsets := make(map[stage.Stage][]DeviceRecord, len(stage.Reached))
	for _, s := range stage.Reached {
		subsets[s] = r.ByStage(s)
	}
	return subsets
}
