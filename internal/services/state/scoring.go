package state

import (
	"RiskGate/internal/domain/models"
	"RiskGate/internal/services/features"
	"RiskGate/internal/services/interactions"
)

// ScoreInstability blends interaction instability (60%) with the mean
// pressure magnitude (40%). Returns 0 when both inputs are empty.
func ScoreInstability(pressures []models.Pressure, ixs []models.PressureInteraction) float64 {
	if len(pressures) == 0 && len(ixs) == 0 {
		return 0
	}
	ixInstability := interactions.ComputeInstability(ixs)
	magnitude := 0.0
	if len(pressures) > 0 {
		for _, p := range pressures {
			magnitude += p.Magnitude
		}
		magnitude /= float64(len(pressures))
	}
	return features.Clamp(0.6*ixInstability+0.4*magnitude, 0, 1)
}

// ScoreAmbiguity is the interaction-level ambiguity score.
func ScoreAmbiguity(ixs []models.PressureInteraction) float64 {
	return interactions.ComputeAmbiguity(ixs)
}

// ScoreConfidence blends mean pressure confidence (70%) with mean
// interaction confidence (30%); an empty list contributes 0.
func ScoreConfidence(pressures []models.Pressure, ixs []models.PressureInteraction) float64 {
	pc := 0.0
	if len(pressures) > 0 {
		for _, p := range pressures {
			pc += p.Confidence
		}
		pc /= float64(len(pressures))
	}
	ic := 0.0
	if len(ixs) > 0 {
		for _, ix := range ixs {
			ic += ix.Confidence
		}
		ic /= float64(len(ixs))
	}
	return features.Clamp(0.7*pc+0.3*ic, 0, 1)
}
