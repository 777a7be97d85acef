package engine

import "fmt"

// Transition names one of the derived duration metrics.
type Transition int

const (
	LabToQC1 Transition = iota
	QC1ToQC2
	QC2ToProduction
	ProductionToShipment
	TotalProcess
)

// TransitionCount is the number of duration metrics.
const TransitionCount = int(TotalProcess) + 1

// Transitions lists every duration metric in display order.
var Transitions = []Transition{LabToQC1, QC1ToQC2, QC2ToProduction, ProductionToShipment, TotalProcess}

var transitionNames = [TransitionCount]string{"lab_to_qc1", "qc1_to_qc2", "qc2_to_production", "production_to_shipment", "total"}

var transitionLabels = [TransitionCount]string{"Lab → NMEA 1", "NMEA 1 → NMEA 2", "NMEA 2 → Production", "Production → Shipment", "Total Process"}

func (t Transition) String() string {
	if t < 0 || int(t) >= TransitionCount {
		return fmt.Sprintf("transition(%d)", int(t))
	}
	return transitionNames[t]
}

// Label returns the display label of the transition.
func (t Transition) Label() string {
	if t < 0 || int(t) >= TransitionCount {
		return t.String()
	}
	return transitionLabels[t]
}

// ShipmentInterval selects the operand order of the production/shipment duration.
type ShipmentInterval string

const (
	// ProductionMinusShipment is the sheet's historical definition. A unit shipped
	// after production yields a negative count.
	ProductionMinusShipment ShipmentInterval = "production_minus_shipment"
	// ShipmentMinusProduction yields positive counts for units shipped after production.
	ShipmentMinusProduction ShipmentInterval = "shipment_minus_production"
)

// Policy holds the knobs of duration derivation.
type Policy struct {
	ShipmentInterval ShipmentInterval
}

// DefaultPolicy keeps the historical production − shipment order.
func DefaultPolicy() Policy {
	return Policy{ShipmentInterval: ProductionMinusShipment}
}

// Durations holds the derived day counts of one record. Values are never
// clamped; out-of-order dates produce negative counts.
type Durations struct {
	LabToQC1             Days
	QC1ToQC2             Days
	QC2ToProduction      Days
	ProductionToShipment Days
	Total                Days
}

// Get returns the duration for a transition.
func (d Durations) Get(t Transition) Days {
	switch t {
	case LabToQC1:
		return d.LabToQC1
	case QC1ToQC2:
		return d.QC1ToQC2
	case QC2ToProduction:
		return d.QC2ToProduction
	case ProductionToShipment:
		return d.ProductionToShipment
	case TotalProcess:
		return d.Total
	}
	return Days{}
}

// ComputeDurations applies the five subtractions to a record.
func ComputeDurations(r DeviceRecord, p Policy) Durations {
	d := Durations{
		LabToQC1:        Between(r.LabTestDate, r.QC1Date),
		QC1ToQC2:        Between(r.QC1Date, r.QC2Date),
		QC2ToProduction: Between(r.QC2Date, r.ProductionDate),
		Total:           Between(r.LabTestDate, r.ShipmentDate),
	}
	if p.ShipmentInterval == ShipmentMinusProduction {
		d.ProductionToShipment = Between(r.ProductionDate, r.ShipmentDate)
	} else {
		d.ProductionToShipment = Between(r.ShipmentDate, r.ProductionDate)
	}
	return d
}
