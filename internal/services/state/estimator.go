package state

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"RiskGate/internal/domain/models"
)

// Hysteresis thresholds. Entering a stressed state is easier than leaving
// it; the comparison operators below decide boundary ownership and must not
// be loosened.
const (
	TrendEnter     = 0.35
	TrendExit      = 0.30
	StableToLatent = 0.55
	LatentToStable = 0.45
	LatentToStress = 0.80
	StressToLatent = 0.70
)

// Bias gating constants.
const (
	biasMaxAmbiguity  = 0.35
	biasMinConfidence = 0.50
	biasCutoff        = 0.25
	biasWeightFloor   = 1e-9
)

const contributingLimit = 3

// Estimator classifies pressures and interactions into a RiskState,
// applying hysteresis against an optional previous state.
type Estimator struct{}

func NewEstimator() *Estimator { return &Estimator{} }

// Estimate builds a RiskState for the symbol. previous may be nil (first
// run); it is read-only and never mutated.
func (e *Estimator) Estimate(
	symbol string,
	pressures []models.Pressure,
	ixs []models.PressureInteraction,
	now time.Time,
	previous *models.RiskState,
) (models.RiskState, error) {
	nowUTC := now.UTC()

	instability := ScoreInstability(pressures, ixs)
	ambiguity := ScoreAmbiguity(ixs)
	confidence := ScoreConfidence(pressures, ixs)

	dominant := classifyWithHysteresis(instability, previous)
	bias := directionalBias(pressures, ambiguity, confidence)
	contributing := selectContributing(pressures, contributingLimit)
	ixIDs := make([]string, 0, len(ixs))
	for _, ix := range ixs {
		ixIDs = append(ixIDs, ix.ID)
	}
	sort.Strings(ixIDs)

	s := models.RiskState{
		ID:                    fmt.Sprintf("state_%s_%d", symbol, nowUTC.UnixNano()),
		DominantState:         dominant,
		ContributingPressures: contributing,
		InteractionIDs:        ixIDs,
		InstabilityScore:      instability,
		DirectionalBias:       bias,
		Confidence:            confidence,
		Ambiguity:             ambiguity,
		ValidHorizons:         validHorizons(pressures),
		DetectedAt:            nowUTC,
		Explanation:           explain(dominant, instability, ambiguity, contributing, len(ixIDs)),
	}
	return models.NewRiskState(s)
}

// classifyWithHysteresis picks the dominant state. Without a previous state
// the entry table applies; with one, exit thresholds differ from entry
// thresholds to damp oscillation near a boundary.
func classifyWithHysteresis(instability float64, previous *models.RiskState) models.RiskLevel {
	if previous == nil {
		return classifyEntry(instability)
	}

	switch previous.DominantState {
	case models.RiskStable:
		if instability >= StableToLatent {
			return models.RiskUnstable
		}
		if instability >= TrendEnter {
			return models.RiskElevated
		}
		return models.RiskStable

	case models.RiskElevated:
		if instability < TrendExit {
			return models.RiskStable
		}
		if instability >= StableToLatent {
			return models.RiskUnstable
		}
		return models.RiskElevated

	case models.RiskUnstable:
		if instability <= LatentToStable {
			return models.RiskStable
		}
		if instability >= LatentToStress {
			return models.RiskCritical
		}
		return models.RiskUnstable

	case models.RiskCritical:
		if instability <= StressToLatent {
			return models.RiskUnstable
		}
		return models.RiskCritical
	}

	// Unrecognized previous state: fall back to the entry table.
	return classifyEntry(instability)
}

func classifyEntry(instability float64) models.RiskLevel {
	switch {
	case instability < TrendEnter:
		return models.RiskStable
	case instability < StableToLatent:
		return models.RiskElevated
	case instability < LatentToStress:
		return models.RiskUnstable
	default:
		return models.RiskCritical
	}
}

// directionalBias infers an up/down bias only when the evidence is usable:
// low ambiguity and sufficient confidence. Otherwise no bias is reported.
func directionalBias(pressures []models.Pressure, ambiguity, confidence float64) models.Directionality {
	if ambiguity > biasMaxAmbiguity || confidence < biasMinConfidence {
		return ""
	}
	if len(pressures) == 0 {
		return ""
	}

	up, down := 0.0, 0.0
	for _, p := range pressures {
		switch p.Directionality {
		case models.DirPositive:
			up += p.Magnitude * p.Confidence
		case models.DirNegative:
			down += p.Magnitude * p.Confidence
		}
	}
	total := up + down
	if total < biasWeightFloor {
		return ""
	}

	score := (up - down) / (total + biasWeightFloor)
	switch {
	case score >= biasCutoff:
		return models.DirPositive
	case score <= -biasCutoff:
		return models.DirNegative
	default:
		return ""
	}
}

// selectContributing returns the top n pressure ids by descending
// magnitude*confidence, ties broken by ascending id.
func selectContributing(pressures []models.Pressure, n int) []string {
	if len(pressures) == 0 {
		return nil
	}
	type scored struct {
		score float64
		id    string
	}
	ranked := make([]scored, 0, len(pressures))
	for _, p := range pressures {
		ranked = append(ranked, scored{score: p.ContributionScore(), id: p.ID})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.id)
	}
	return out
}

// validHorizons is the sorted set of distinct horizon tags, defaulting to
// short_term when no pressure carries one.
func validHorizons(pressures []models.Pressure) []string {
	set := make(map[string]struct{})
	for _, p := range pressures {
		if p.TimeHorizon != "" {
			set[p.TimeHorizon] = struct{}{}
		}
	}
	if len(set) == 0 {
		return []string{"short_term"}
	}
	out := make([]string, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// explain is descriptive only; it never contains directive language.
func explain(dominant models.RiskLevel, instability, ambiguity float64, contributing []string, ixCount int) string {
	pressureRef := "No contributing pressures"
	if len(contributing) > 0 {
		pressureRef = "Contributing pressures: " + strings.Join(contributing, ", ")
	}
	return fmt.Sprintf("Risk state: %s (instability: %.2f, ambiguity: %.2f). %s. Interactions: %d.",
		dominant, instability, ambiguity, pressureRef, ixCount)
}
