package models

import (
	"fmt"
	"sort"
	"time"
)

// BehaviorGate is the output artifact consumed by downstream execution
// logic. Allowed and forbidden sets are disjoint, sorted, and de-duplicated;
// the invariant is enforced at construction.
type BehaviorGate struct {
	ID                  string         `json:"gate_id"`
	RiskStateID         string         `json:"risk_state_id"`
	AllowedBehaviors    []BehaviorType `json:"allowed_behaviors"`
	ForbiddenBehaviors  []BehaviorType `json:"forbidden_behaviors"`
	AggressivenessLimit float64        `json:"aggressiveness_limit"`
	Confidence          float64        `json:"confidence"`
	EnforcedUntil       time.Time      `json:"enforced_until"`
	Explanation         string         `json:"explanation,omitempty"`
}

// NewBehaviorGate validates and normalizes a BehaviorGate. Behavior sets are
// sorted and de-duplicated; any overlap between them fails construction.
func NewBehaviorGate(g BehaviorGate) (BehaviorGate, error) {
	if g.ID == "" {
		return BehaviorGate{}, fmt.Errorf("gate id is required")
	}
	if g.RiskStateID == "" {
		return BehaviorGate{}, fmt.Errorf("gate requires a risk state id")
	}

	g.AllowedBehaviors = normalizeBehaviors(g.AllowedBehaviors)
	g.ForbiddenBehaviors = normalizeBehaviors(g.ForbiddenBehaviors)

	allowed := make(map[BehaviorType]struct{}, len(g.AllowedBehaviors))
	for _, b := range g.AllowedBehaviors {
		allowed[b] = struct{}{}
	}
	for _, b := range g.ForbiddenBehaviors {
		if _, ok := allowed[b]; ok {
			return BehaviorGate{}, fmt.Errorf("behavior %q cannot be both allowed and forbidden", b)
		}
	}

	var err error
	if g.AggressivenessLimit, err = unit("aggressiveness_limit", g.AggressivenessLimit); err != nil {
		return BehaviorGate{}, err
	}
	if g.Confidence, err = unit("confidence", g.Confidence); err != nil {
		return BehaviorGate{}, err
	}
	g.EnforcedUntil = ensureUTC(g.EnforcedUntil)
	return g, nil
}

func normalizeBehaviors(in []BehaviorType) []BehaviorType {
	seen := make(map[BehaviorType]struct{}, len(in))
	out := make([]BehaviorType, 0, len(in))
	for _, b := range in {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
