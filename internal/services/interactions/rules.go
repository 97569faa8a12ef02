package interactions

import (
	"fmt"
	"math"
	"sort"

	"RiskGate/internal/domain/models"
)

// MinMagnitude is the strict floor both pressures of a pair must reach
// before any interaction is generated.
const MinMagnitude = 0.55

// Generate produces pairwise interactions between pressures under strict
// eligibility rules. Pressures are sorted by id first, so the output is
// identical regardless of input ordering.
//
// Eligibility (strict AND): same time horizon, both magnitudes >= MinMagnitude.
// Classification: equal directionality => reinforcement; one positive and
// one negative => counteraction; anything involving mixed => no interaction.
func Generate(pressures []models.Pressure) ([]models.PressureInteraction, error) {
	if len(pressures) < 2 {
		return nil, nil
	}

	sorted := make([]models.Pressure, len(pressures))
	copy(sorted, pressures)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var out []models.PressureInteraction
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			ix, ok, err := evaluatePair(sorted[i], sorted[j])
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, ix)
			}
		}
	}
	return out, nil
}

func evaluatePair(a, b models.Pressure) (models.PressureInteraction, bool, error) {
	if a.TimeHorizon != b.TimeHorizon {
		return models.PressureInteraction{}, false, nil
	}
	if a.Magnitude < MinMagnitude || b.Magnitude < MinMagnitude {
		return models.PressureInteraction{}, false, nil
	}

	itype, ok := classify(a.Directionality, b.Directionality)
	if !ok {
		return models.PressureInteraction{}, false, nil
	}

	contribution := math.Sqrt(a.Magnitude * b.Magnitude)
	confidence := (a.Confidence + b.Confidence) / 2
	explanation := fmt.Sprintf("Interaction between %s and %s pressures: %s", a.Type, b.Type, itype)

	ix, err := models.NewPressureInteraction(itype, a.ID, b.ID, contribution, confidence, explanation)
	if err != nil {
		return models.PressureInteraction{}, false, fmt.Errorf("interaction %s/%s: %w", a.ID, b.ID, err)
	}
	return ix, true, nil
}

func classify(d1, d2 models.Directionality) (models.InteractionType, bool) {
	if d1 == d2 {
		switch d1 {
		case models.DirPositive, models.DirNegative, models.DirNeutral:
			return models.InteractionReinforcement, true
		}
		return "", false
	}
	if (d1 == models.DirPositive && d2 == models.DirNegative) ||
		(d1 == models.DirNegative && d2 == models.DirPositive) {
		return models.InteractionCounteraction, true
	}
	return "", false
}
