package models

import (
	"fmt"
	"time"
)

// Pressure is a single detected market signal. All bounded fields are
// validated at construction; instances are never mutated afterwards.
type Pressure struct {
	ID             string         `json:"pressure_id"`
	Type           PressureType   `json:"pressure_type"`
	SourceAssets   []string       `json:"source_assets"`
	Directionality Directionality `json:"directionality"`
	Magnitude      float64        `json:"magnitude"`
	Acceleration   float64        `json:"acceleration"`
	Confidence     float64        `json:"confidence"`
	DetectedAt     time.Time      `json:"detected_at"`
	TimeHorizon    string         `json:"time_horizon,omitempty"`
	Explanation    string         `json:"explanation,omitempty"`
}

// NewPressure validates and normalizes a Pressure. Bounded fields are
// clamped against float drift; non-finite values fail construction.
func NewPressure(p Pressure) (Pressure, error) {
	if p.ID == "" {
		return Pressure{}, fmt.Errorf("pressure id is required")
	}
	if !IsValidPressureType(p.Type) {
		return Pressure{}, fmt.Errorf("unsupported pressure type %q", p.Type)
	}
	if !IsValidDirectionality(p.Directionality) {
		return Pressure{}, fmt.Errorf("unsupported directionality %q", p.Directionality)
	}

	var err error
	if p.Magnitude, err = unit("magnitude", p.Magnitude); err != nil {
		return Pressure{}, err
	}
	if p.Acceleration, err = signedUnit("acceleration", p.Acceleration); err != nil {
		return Pressure{}, err
	}
	if p.Confidence, err = unit("confidence", p.Confidence); err != nil {
		return Pressure{}, err
	}
	p.DetectedAt = ensureUTC(p.DetectedAt)
	return p, nil
}

// ContributionScore orders pressures for contributing-evidence selection.
func (p Pressure) ContributionScore() float64 {
	return p.Magnitude * p.Confidence
}
