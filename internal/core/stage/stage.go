// Package stage contains the pure business logic for pipeline stage classification.
// A device's stage is derived from which milestone dates are recorded, never from
// an executing process.
package stage

import (
	"fmt"
	"strings"
)

// Stage is a lifecycle milestone. Later stages imply earlier ones were reached.
type Stage int

const (
	Pending Stage = iota
	LabTest
	QC1
	QC2
	ProductionDone
	Shipped
)

// Count is the number of stage values, Pending included.
const Count = int(Shipped) + 1

// All lists every stage in pipeline order.
var All = []Stage{Pending, LabTest, QC1, QC2, ProductionDone, Shipped}

// Reached lists the stages a device can be observed in once a milestone is recorded.
var Reached = []Stage{LabTest, QC1, QC2, ProductionDone, Shipped}

var names = [Count]string{"pending", "lab_test", "qc1", "qc2", "production_done", "shipped"}

var labels = [Count]string{"Pending", "Lab Test", "NMEA QC 01", "NMEA QC 02", "Production Done", "Shipped"}

// String returns the machine name of the stage (e.g. "qc1").
func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return names[s]
}

// Label returns the display label of the stage.
func (s Stage) Label() string {
	if !s.Valid() {
		return s.String()
	}
	return labels[s]
}

// Valid reports whether s is one of the defined stages.
func (s Stage) Valid() bool {
	return s >= Pending && s <= Shipped
}

// Parse resolves a stage from its machine name, its label, or its index.
func Parse(input string) (Stage, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, s := range All {
		if normalized == names[s] || normalized == strings.ToLower(labels[s]) || normalized == fmt.Sprint(int(s)) {
			return s, nil
		}
	}
	return Pending, fmt.Errorf("unknown stage %q (valid: %s)", input, strings.Join(names[:], ", "))
}

// Milestones records which stage dates are present for one device,
// indexed LabTest..Shipped.
type Milestones struct {
	LabTest        bool
	QC1            bool
	QC2            bool
	ProductionDone bool
	Shipped        bool
}

// Classify returns the highest stage whose milestone is present, or Pending.
// Rules:
// - Start at Pending
// - Walk LabTest..Shipped in ascending order, overwriting on every present milestone
// - Earlier milestones are not required (back-filled data is reported as given)
func Classify(m Milestones) Stage {
	current := Pending
	present := [...]bool{m.LabTest, m.QC1, m.QC2, m.ProductionDone, m.Shipped}
	for i, ok := range present {
		if ok {
			current = Reached[i]
		}
	}
	return current
}
