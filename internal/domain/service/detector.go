package service

import (
	"time"

	"RiskGate/internal/domain/models"
)

// PressureDetector inspects a flat feature map for one symbol and emits
// zero or more validated pressures. Detectors must be pure with respect to
// their inputs: identical features and now yield identical pressures.
type PressureDetector interface {
	// Name identifies the detector in logs and metrics.
	Name() string
	// PressureType is the kind of pressure this detector emits.
	PressureType() models.PressureType
	// TimeHorizon tags every emitted pressure (e.g. "intraday", "short_term").
	TimeHorizon() string
	// Detect produces pressures for the symbol. An error marks this
	// detector's output as unusable for the run; the pipeline continues
	// with the remaining detectors.
	Detect(symbol string, features map[string]float64, now time.Time) ([]models.Pressure, error)
}
