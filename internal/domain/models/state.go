package models

import (
	"fmt"
	"time"
)

// RiskState is a point-in-time classification of a symbol's risk posture.
// It is produced fresh on every pipeline run; a previous state may be passed
// back into the estimator as read-only input for hysteresis.
type RiskState struct {
	ID                    string         `json:"state_id"`
	DominantState         RiskLevel      `json:"dominant_state"`
	ContributingPressures []string       `json:"contributing_pressures"`
	InteractionIDs        []string       `json:"interactions"`
	InstabilityScore      float64        `json:"instability_score"`
	DirectionalBias       Directionality `json:"directional_bias,omitempty"`
	Confidence            float64        `json:"confidence"`
	Ambiguity             float64        `json:"ambiguity"`
	ValidHorizons         []string       `json:"valid_horizons"`
	DetectedAt            time.Time      `json:"detected_at"`
	Explanation           string         `json:"explanation,omitempty"`
}

// NewRiskState validates and normalizes a RiskState.
func NewRiskState(s RiskState) (RiskState, error) {
	if s.ID == "" {
		return RiskState{}, fmt.Errorf("state id is required")
	}
	switch s.DominantState {
	case RiskStable, RiskElevated, RiskUnstable, RiskCritical, RiskTransitioning:
	default:
		return RiskState{}, fmt.Errorf("unsupported risk level %q", s.DominantState)
	}
	if s.DirectionalBias != "" && !IsValidDirectionality(s.DirectionalBias) {
		return RiskState{}, fmt.Errorf("unsupported directional bias %q", s.DirectionalBias)
	}
	if len(s.ValidHorizons) == 0 {
		return RiskState{}, fmt.Errorf("risk state requires at least one valid horizon")
	}

	var err error
	if s.InstabilityScore, err = unit("instability_score", s.InstabilityScore); err != nil {
		return RiskState{}, err
	}
	if s.Confidence, err = unit("confidence", s.Confidence); err != nil {
		return RiskState{}, err
	}
	if s.Ambiguity, err = unit("ambiguity", s.Ambiguity); err != nil {
		return RiskState{}, err
	}
	s.DetectedAt = ensureUTC(s.DetectedAt)
	return s, nil
}
