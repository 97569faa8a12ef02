package models

import "time"

// Analysis is the complete artifact set of one pipeline run for a symbol.
type Analysis struct {
	Symbol       string                `json:"symbol"`
	RunAt        time.Time             `json:"run_at"`
	Pressures    []Pressure            `json:"pressures"`
	Interactions []PressureInteraction `json:"interactions"`
	RiskState    RiskState             `json:"risk_state"`
	BehaviorGate BehaviorGate          `json:"behavior_gate"`
}
