package interactions

import (
	"RiskGate/internal/domain/models"
	"RiskGate/internal/services/features"
)

// Weight of a single interaction: contribution scaled by confidence.
func Weight(ix models.PressureInteraction) float64 {
	return features.Clamp(ix.InstabilityContribution*ix.Confidence, 0, 1)
}

// ComputeInstability reduces interactions to a scalar via noisy-OR:
// 1 - prod(1 - w_i). Independent destabilizing signals compound with
// diminishing marginal effect instead of summing linearly past 1.
// Empty input yields 0.
func ComputeInstability(ixs []models.PressureInteraction) float64 {
	if len(ixs) == 0 {
		return 0
	}
	product := 1.0
	for _, ix := range ixs {
		product *= 1 - Weight(ix)
	}
	return features.Clamp(1-product, 0, 1)
}

// ComputeAmbiguity is the share of total interaction weight carried by
// counteraction-typed interactions. Empty input or zero total weight
// yields 0.
func ComputeAmbiguity(ixs []models.PressureInteraction) float64 {
	if len(ixs) == 0 {
		return 0
	}
	total := 0.0
	conflicting := 0.0
	for _, ix := range ixs {
		w := Weight(ix)
		total += w
		if ix.Type == models.InteractionCounteraction {
			conflicting += w
		}
	}
	if total == 0 {
		return 0
	}
	const eps = 1e-10
	return features.Clamp(conflicting/(total+eps), 0, 1)
}
