package gate

import (
	"math"
	"testing"
	"time"

	"RiskGate/internal/domain/models"
)

var testNow = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

func mkState(level models.RiskLevel, instability, confidence, ambiguity float64, horizons ...string) models.RiskState {
	if len(horizons) == 0 {
		horizons = []string{"short_term"}
	}
	return models.RiskState{
		ID:               "state_BTCUSDT_1",
		DominantState:    level,
		InstabilityScore: instability,
		Confidence:       confidence,
		Ambiguity:        ambiguity,
		ValidHorizons:    horizons,
		DetectedAt:       testNow,
	}
}

func TestPolicyDisjointAndSorted(t *testing.T) {
	levels := []models.RiskLevel{models.RiskStable, models.RiskElevated, models.RiskUnstable, models.RiskCritical}
	for _, level := range levels {
		p := PolicyFor(level)
		seen := make(map[models.BehaviorType]bool)
		for _, b := range p.Allowed {
			seen[b] = true
		}
		for _, b := range p.Forbidden {
			if seen[b] {
				t.Errorf("%s: behavior %s both allowed and forbidden", level, b)
			}
		}
		for i := 1; i < len(p.Allowed); i++ {
			if p.Allowed[i-1] >= p.Allowed[i] {
				t.Errorf("%s: allowed not sorted", level)
			}
		}
		for i := 1; i < len(p.Forbidden); i++ {
			if p.Forbidden[i-1] >= p.Forbidden[i] {
				t.Errorf("%s: forbidden not sorted", level)
			}
		}
	}
}

func TestPolicyMonotonicRestriction(t *testing.T) {
	order := []models.RiskLevel{models.RiskStable, models.RiskElevated, models.RiskUnstable, models.RiskCritical}
	prevAllowed := len(PolicyFor(order[0]).Allowed) + 1
	prevForbidden := -1
	for _, level := range order {
		p := PolicyFor(level)
		if len(p.Allowed) >= prevAllowed && level != order[0] {
			t.Errorf("%s: allowed set did not shrink (%d)", level, len(p.Allowed))
		}
		if len(p.Forbidden) < prevForbidden {
			t.Errorf("%s: forbidden set shrank (%d)", level, len(p.Forbidden))
		}
		prevAllowed = len(p.Allowed) + 1
		prevForbidden = len(p.Forbidden)
	}
}

func TestPolicyUnknownLevelFallsBack(t *testing.T) {
	p := PolicyFor(models.RiskLevel("bogus"))
	stable := PolicyFor(models.RiskStable)
	if len(p.Allowed) != len(stable.Allowed) || len(p.Forbidden) != len(stable.Forbidden) {
		t.Fatalf("unknown level must use the stable policy")
	}
}

func TestBuildGateDerivations(t *testing.T) {
	c := NewController()
	state := mkState(models.RiskUnstable, 0.6, 0.8, 0.2)

	g, err := c.Build(state, testNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if g.ID != "gate_state_BTCUSDT_1" {
		t.Fatalf("gate id = %q", g.ID)
	}
	if g.RiskStateID != state.ID {
		t.Fatalf("risk state id = %q", g.RiskStateID)
	}
	// aggressiveness = (1-0.6)*0.8 = 0.32
	if math.Abs(g.AggressivenessLimit-0.32) > 1e-9 {
		t.Fatalf("aggressiveness = %v, want 0.32", g.AggressivenessLimit)
	}
	// confidence = min(0.8, 1-0.2) = 0.8
	if math.Abs(g.Confidence-0.8) > 1e-9 {
		t.Fatalf("confidence = %v, want 0.8", g.Confidence)
	}
	if g.Explanation == "" {
		t.Fatalf("explanation missing")
	}
}

func TestBuildGateAmbiguityCapsConfidence(t *testing.T) {
	c := NewController()
	state := mkState(models.RiskStable, 0.1, 0.9, 0.5)
	g, err := c.Build(state, testNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// min(0.9, 1-0.5) = 0.5
	if math.Abs(g.Confidence-0.5) > 1e-9 {
		t.Fatalf("confidence = %v, want 0.5", g.Confidence)
	}
}

func TestEnforcedUntilHorizons(t *testing.T) {
	c := NewController()

	// intraday: +6h truncated to the hour
	g, err := c.Build(mkState(models.RiskStable, 0.1, 0.9, 0, "intraday", "short_term"), testNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := testNow.Add(6 * time.Hour).Truncate(time.Hour)
	if !g.EnforcedUntil.Equal(want) {
		t.Fatalf("intraday enforced_until = %v, want %v", g.EnforcedUntil, want)
	}

	// short_term: +1d
	g, err = c.Build(mkState(models.RiskStable, 0.1, 0.9, 0, "short_term"), testNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !g.EnforcedUntil.Equal(testNow.Add(24 * time.Hour)) {
		t.Fatalf("short_term enforced_until = %v", g.EnforcedUntil)
	}

	// anything else: +7d
	g, err = c.Build(mkState(models.RiskStable, 0.1, 0.9, 0, "long_term"), testNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !g.EnforcedUntil.Equal(testNow.Add(7 * 24 * time.Hour)) {
		t.Fatalf("default enforced_until = %v", g.EnforcedUntil)
	}
}

func TestBuildGateDeterministic(t *testing.T) {
	c := NewController()
	state := mkState(models.RiskElevated, 0.4, 0.7, 0.1)
	g1, err := c.Build(state, testNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	g2, err := c.Build(state, testNow)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if g1.ID != g2.ID || g1.AggressivenessLimit != g2.AggressivenessLimit || !g1.EnforcedUntil.Equal(g2.EnforcedUntil) {
		t.Fatalf("gate build must be deterministic")
	}
}
