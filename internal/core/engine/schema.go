package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Field is the canonical name of an interpreted column.
type Field string

const (
	FieldID             Field = "id"
	FieldMAC            Field = "mac"
	FieldBatch          Field = "batch"
	FieldLabTestDate    Field = "lab_test_date"
	FieldQC1Date        Field = "qc1_date"
	FieldQC2Date        Field = "qc2_date"
	FieldProductionDate Field = "production_date"
	FieldShipmentDate   Field = "shipment_date"
)

// Date layouts. The lab sheet records day/month/4-digit-year while every
// downstream station records day-month-2-digit-year.
const (
	LabTestLayout = "2/1/2006"
	StationLayout = "2-1-06"
)

// DateFields lists the stage date fields in pipeline order.
var DateFields = []Field{FieldLabTestDate, FieldQC1Date, FieldQC2Date, FieldProductionDate, FieldShipmentDate}

// Column maps one source header label to a canonical field.
type Column struct {
	Label string
	Field Field
}

// DefaultColumns is the header mapping of the production tracking sheet.
var DefaultColumns = []Column{
	{Label: "#", Field: FieldID},
	{Label: "MAC", Field: FieldMAC},
	{Label: "BATCH", Field: FieldBatch},
	{Label: "LAB TESTING DATE", Field: FieldLabTestDate},
	{Label: "Testing_Date01", Field: FieldQC1Date},
	{Label: "Testing_Date02", Field: FieldQC2Date},
	{Label: "Production Date", Field: FieldProductionDate},
	{Label: "Shippent Date", Field: FieldShipmentDate},
}

// DefaultLayouts holds the parse layout of each date field.
var DefaultLayouts = map[Field]string{
	FieldLabTestDate:    LabTestLayout,
	FieldQC1Date:        StationLayout,
	FieldQC2Date:        StationLayout,
	FieldProductionDate: StationLayout,
	FieldShipmentDate:   StationLayout,
}

// Schema describes how source headers are interpreted.
// Only the MAC column is required unless Strict is set, in which case every
// mapped column must be present.
type Schema struct {
	Columns []Column
	Layouts map[Field]string
	Strict  bool
}

// DefaultSchema returns the schema of the production tracking sheet.
func DefaultSchema() Schema {
	columns := make([]Column, len(DefaultColumns))
	copy(columns, DefaultColumns)
	layouts := make(map[Field]string, len(DefaultLayouts))
	for f, l := range DefaultLayouts {
		layouts[f] = l
	}
	return Schema{Columns: columns, Layouts: layouts}
}

// fieldFor returns the canonical field for a header label.
func (s Schema) fieldFor(label string) (Field, bool) {
	label = strings.TrimSpace(label)
	for _, c := range s.Columns {
		if c.Label == label {
			return c.Field, true
		}
	}
	return "", false
}

// labelFor returns the source label mapped to a canonical field.
func (s Schema) labelFor(field Field) string {
	for _, c := range s.Columns {
		if c.Field == field {
			return c.Label
		}
	}
	return string(field)
}

// Check verifies that the header carries every required column.
func (s Schema) Check(header []string) error {
	seen := make(map[Field]bool, len(header))
	for _, h := range header {
		if f, ok := s.fieldFor(h); ok {
			seen[f] = true
		}
	}

	var missing []string
	if !seen[FieldMAC] {
		missing = append(missing, s.labelFor(FieldMAC))
	}
	if s.Strict {
		for _, c := range s.Columns {
			if c.Field != FieldMAC && !seen[c.Field] {
				missing = append(missing, c.Label)
			}
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// SchemaError reports required columns absent from the snapshot header.
// It is a configuration mismatch, not a data problem.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch: missing required column(s) %s", strings.Join(e.Missing, ", "))
}

// ErrEmptyDataset is returned when a snapshot has no data rows.
var ErrEmptyDataset = errors.New("empty dataset: snapshot has no data rows")

// Table is a rectangular snapshot: a header row followed by data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Cell is one labelled value of a data row.
type Cell struct {
	Label string
	Value string
}

// RawRow is one data row as labelled cells in header order.
// Duplicate labels are kept as separate cells.
type RawRow []Cell

// RawRows pads or truncates every data row to the header width and labels each cell.
// Blank header labels are skipped.
func (t Table) RawRows() []RawRow {
	out := make([]RawRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		raw := make(RawRow, 0, len(t.Header))
		for i, label := range t.Header {
			if strings.TrimSpace(label) == "" {
				continue
			}
			value := ""
			if i < len(row) {
				value = row[i]
			}
			raw = append(raw, Cell{Label: label, Value: value})
		}
		out = append(out, raw)
	}
	return out
}
