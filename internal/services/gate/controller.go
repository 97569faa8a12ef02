package gate

import (
	"fmt"
	"strings"
	"time"

	"RiskGate/internal/domain/models"
	"RiskGate/internal/services/features"
)

// Controller maps a risk state to a behavior gate via the fixed policy table.
type Controller struct{}

func NewController() *Controller { return &Controller{} }

// Build constructs the gate for a risk state. The gate id is derived from
// the state id, so identical states always yield identical gates.
func (c *Controller) Build(state models.RiskState, now time.Time) (models.BehaviorGate, error) {
	nowUTC := now.UTC()
	policy := PolicyFor(state.DominantState)

	aggressiveness := features.Clamp((1-state.InstabilityScore)*state.Confidence, 0, 1)
	confidence := features.Clamp(minFloat(state.Confidence, 1-state.Ambiguity), 0, 1)

	g := models.BehaviorGate{
		ID:                  "gate_" + state.ID,
		RiskStateID:         state.ID,
		AllowedBehaviors:    policy.Allowed,
		ForbiddenBehaviors:  policy.Forbidden,
		AggressivenessLimit: aggressiveness,
		Confidence:          confidence,
		EnforcedUntil:       enforcedUntil(state.ValidHorizons, nowUTC),
		Explanation: fmt.Sprintf(
			"Behavior constraints for %s state: instability %.2f, ambiguity %.2f, confidence %.2f. Behaviors are constrained (not instructed).",
			state.DominantState, state.InstabilityScore, state.Ambiguity, confidence),
	}
	built, err := models.NewBehaviorGate(g)
	if err != nil {
		return models.BehaviorGate{}, fmt.Errorf("build gate for %s: %w", state.ID, err)
	}
	return built, nil
}

// enforcedUntil picks the enforcement horizon from the state's valid
// horizon tags (case-insensitive): intraday => +6h truncated to the hour,
// short_term => +1d, otherwise +7d. Always UTC and strictly after now.
func enforcedUntil(horizons []string, now time.Time) time.Time {
	intraday, shortTerm := false, false
	for _, h := range horizons {
		switch strings.ToLower(h) {
		case "intraday":
			intraday = true
		case "short_term":
			shortTerm = true
		}
	}
	switch {
	case intraday:
		return now.Add(6 * time.Hour).Truncate(time.Hour)
	case shortTerm:
		return now.Add(24 * time.Hour)
	default:
		return now.Add(7 * 24 * time.Hour)
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
