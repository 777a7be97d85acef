// Package engine derives pipeline stages and stage-to-stage durations from a
// production tracking snapshot. It is a pure transform: no I/O, no clock, no
// shared state between calls.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/tkitrace/internal/core/stage"
)

// DeviceRecord is one physical unit under test, built fresh from a snapshot row.
type DeviceRecord struct {
	Row   int // 1-based data row in the snapshot
	ID    string
	MAC   string
	Batch string

	LabTestDate    Date
	QC1Date        Date
	QC2Date        Date
	ProductionDate Date
	ShipmentDate   Date

	// RawDates holds the untouched source text of each date field.
	RawDates map[Field]string
	// Extra holds cells the schema does not interpret, keyed by source label.
	// A repeated label gets a " (2)", " (3)", ... suffix.
	Extra map[string]string

	Stage     stage.Stage
	Durations Durations
}

// Date returns the parsed date for a stage date field.
func (r DeviceRecord) Date(f Field) Date {
	switch f {
	case FieldLabTestDate:
		return r.LabTestDate
	case FieldQC1Date:
		return r.QC1Date
	case FieldQC2Date:
		return r.QC2Date
	case FieldProductionDate:
		return r.ProductionDate
	case FieldShipmentDate:
		return r.ShipmentDate
	}
	return Date{}
}

// Milestones reports which stage dates are present.
func (r DeviceRecord) Milestones() stage.Milestones {
	return stage.Milestones{
		LabTest:        r.LabTestDate.Present(),
		QC1:            r.QC1Date.Present(),
		QC2:            r.QC2Date.Present(),
		ProductionDone: r.ProductionDate.Present(),
		Shipped:        r.ShipmentDate.Present(),
	}
}

// ClassifyStage returns the record's current stage from its milestone dates.
func ClassifyStage(r DeviceRecord) stage.Stage {
	return stage.Classify(r.Milestones())
}

// Normalize turns raw rows into device records.
// Rows whose MAC is missing or blank after trimming are dropped and counted.
// Cells are read in header order and the first column mapped to a field wins;
// later columns mapped to the same field are kept in Extra. Date cells are
// parsed with the layout of their own field; anything that does not parse
// becomes an absent date.
func Normalize(rows []RawRow, schema Schema) ([]DeviceRecord, int) {
	records := make([]DeviceRecord, 0, len(rows))
	dropped := 0

	for i, raw := range rows {
		rec, ok := normalizeRow(raw, schema)
		if !ok {
			dropped++
			continue
		}
		rec.Row = i + 1
		records = append(records, rec)
	}

	return records, dropped
}

func normalizeRow(raw RawRow, schema Schema) (DeviceRecord, bool) {
	rec := DeviceRecord{
		RawDates: make(map[Field]string, len(DateFields)),
		Extra:    make(map[string]string),
	}
	seen := make(map[Field]bool, len(schema.Columns))

	for _, cell := range raw {
		field, known := schema.fieldFor(cell.Label)
		if !known || seen[field] {
			rec.addExtra(cell.Label, cell.Value)
			continue
		}
		seen[field] = true

		switch field {
		case FieldID:
			rec.ID = strings.TrimSpace(cell.Value)
		case FieldMAC:
			rec.MAC = strings.TrimSpace(cell.Value)
		case FieldBatch:
			rec.Batch = cell.Value
		default:
			rec.RawDates[field] = cell.Value
			rec.setDate(field, ParseDate(cell.Value, schema.Layouts[field]))
		}
	}

	return rec, rec.MAC != ""
}

func (r *DeviceRecord) addExtra(label, value string) {
	key := label
	for n := 2; ; n++ {
		if _, taken := r.Extra[key]; !taken {
			break
		}
		key = fmt.Sprintf("%s (%d)", label, n)
	}
	r.Extra[key] = value
}

func (r *DeviceRecord) setDate(f Field, d Date) {
	switch f {
	case FieldLabTestDate:
		r.LabTestDate = d
	case FieldQC1Date:
		r.QC1Date = d
	case FieldQC2Date:
		r.QC2Date = d
	case FieldProductionDate:
		r.ProductionDate = d
	case FieldShipmentDate:
		r.ShipmentDate = d
	}
}

// ParseDate parses value with exactly one layout. Blank input, a missing
// layout, or a parse failure all yield an absent date.
func ParseDate(value, layout string) Date {
	value = strings.TrimSpace(value)
	if value == "" || layout == "" {
		return Date{}
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return Date{}
	}
	return DateOf(t)
}
