package state

import (
	"math"
	"testing"
	"time"

	"RiskGate/internal/domain/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func mkPressure(t *testing.T, id string, dir models.Directionality, mag, conf float64) models.Pressure {
	t.Helper()
	p, err := models.NewPressure(models.Pressure{
		ID:             id,
		Type:           models.PressureVolatility,
		SourceAssets:   []string{"BTCUSDT"},
		Directionality: dir,
		Magnitude:      mag,
		Confidence:     conf,
		DetectedAt:     testNow,
		TimeHorizon:    "short_term",
	})
	if err != nil {
		t.Fatalf("pressure %s: %v", id, err)
	}
	return p
}

func mkInteraction(t *testing.T, itype models.InteractionType, a, b string, contribution, confidence float64) models.PressureInteraction {
	t.Helper()
	ix, err := models.NewPressureInteraction(itype, a, b, contribution, confidence, "")
	if err != nil {
		t.Fatalf("interaction: %v", err)
	}
	return ix
}

func prevState(level models.RiskLevel) *models.RiskState {
	return &models.RiskState{
		ID:            "state_prev",
		DominantState: level,
		ValidHorizons: []string{"short_term"},
		DetectedAt:    testNow.Add(-time.Minute),
	}
}

func TestScoreInstability(t *testing.T) {
	if got := ScoreInstability(nil, nil); got != 0 {
		t.Fatalf("empty inputs must score 0, got %v", got)
	}

	p := mkPressure(t, "a", models.DirPositive, 0.5, 1)
	// no interactions: 0.6*0 + 0.4*0.5 = 0.2
	if got := ScoreInstability([]models.Pressure{p}, nil); math.Abs(got-0.2) > 1e-9 {
		t.Fatalf("got %v, want 0.2", got)
	}

	ix := mkInteraction(t, models.InteractionReinforcement, "a", "b", 1, 0.5) // w=0.5
	// 0.6*0.5 + 0.4*0.5 = 0.5
	if got := ScoreInstability([]models.Pressure{p}, []models.PressureInteraction{ix}); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("got %v, want 0.5", got)
	}
}

func TestScoreConfidence(t *testing.T) {
	p := mkPressure(t, "a", models.DirPositive, 0.5, 0.8)
	ix := mkInteraction(t, models.InteractionReinforcement, "a", "b", 0.5, 0.6)
	// 0.7*0.8 + 0.3*0.6 = 0.74
	got := ScoreConfidence([]models.Pressure{p}, []models.PressureInteraction{ix})
	if math.Abs(got-0.74) > 1e-9 {
		t.Fatalf("got %v, want 0.74", got)
	}
	// missing interactions contribute 0
	got = ScoreConfidence([]models.Pressure{p}, nil)
	if math.Abs(got-0.56) > 1e-9 {
		t.Fatalf("got %v, want 0.56", got)
	}
}

func TestClassifyEntryTable(t *testing.T) {
	cases := []struct {
		instability float64
		want        models.RiskLevel
	}{
		{0.0, models.RiskStable},
		{0.34, models.RiskStable},
		{0.35, models.RiskElevated},
		{0.54, models.RiskElevated},
		{0.55, models.RiskUnstable},
		{0.79, models.RiskUnstable},
		{0.80, models.RiskCritical},
		{1.0, models.RiskCritical},
	}
	for _, tc := range cases {
		if got := classifyWithHysteresis(tc.instability, nil); got != tc.want {
			t.Errorf("entry(%v) = %s, want %s", tc.instability, got, tc.want)
		}
	}
}

func TestHysteresisUnstableHolds(t *testing.T) {
	// 0.50 from Unstable stays Unstable (exit requires <= 0.45)
	if got := classifyWithHysteresis(0.50, prevState(models.RiskUnstable)); got != models.RiskUnstable {
		t.Fatalf("0.50 from unstable = %s, want unstable", got)
	}
	// exactly 0.45 leaves
	if got := classifyWithHysteresis(0.45, prevState(models.RiskUnstable)); got != models.RiskStable {
		t.Fatalf("0.45 from unstable = %s, want stable", got)
	}
	// 0.80 escalates
	if got := classifyWithHysteresis(0.80, prevState(models.RiskUnstable)); got != models.RiskCritical {
		t.Fatalf("0.80 from unstable = %s, want critical", got)
	}
}

func TestHysteresisCriticalHolds(t *testing.T) {
	// 0.75 from Critical stays Critical (exit requires <= 0.70)
	if got := classifyWithHysteresis(0.75, prevState(models.RiskCritical)); got != models.RiskCritical {
		t.Fatalf("0.75 from critical = %s, want critical", got)
	}
	if got := classifyWithHysteresis(0.70, prevState(models.RiskCritical)); got != models.RiskUnstable {
		t.Fatalf("0.70 from critical = %s, want unstable", got)
	}
	// same 0.75 without history would be Unstable
	if got := classifyWithHysteresis(0.75, nil); got != models.RiskUnstable {
		t.Fatalf("0.75 entry = %s, want unstable", got)
	}
}

func TestHysteresisElevatedBand(t *testing.T) {
	// from Elevated, 0.32 holds (exit requires < 0.30)
	if got := classifyWithHysteresis(0.32, prevState(models.RiskElevated)); got != models.RiskElevated {
		t.Fatalf("0.32 from elevated = %s, want elevated", got)
	}
	if got := classifyWithHysteresis(0.29, prevState(models.RiskElevated)); got != models.RiskStable {
		t.Fatalf("0.29 from elevated = %s, want stable", got)
	}
	// from Stable, entering requires >= 0.35
	if got := classifyWithHysteresis(0.34, prevState(models.RiskStable)); got != models.RiskStable {
		t.Fatalf("0.34 from stable = %s, want stable", got)
	}
	if got := classifyWithHysteresis(0.35, prevState(models.RiskStable)); got != models.RiskElevated {
		t.Fatalf("0.35 from stable = %s, want elevated", got)
	}
}

func TestDirectionalBias(t *testing.T) {
	up := mkPressure(t, "u", models.DirPositive, 0.9, 0.9)
	down := mkPressure(t, "d", models.DirNegative, 0.9, 0.9)

	// clear upward evidence
	if got := directionalBias([]models.Pressure{up}, 0, 0.9); got != models.DirPositive {
		t.Fatalf("expected positive bias, got %q", got)
	}
	// clear downward evidence
	if got := directionalBias([]models.Pressure{down}, 0, 0.9); got != models.DirNegative {
		t.Fatalf("expected negative bias, got %q", got)
	}
	// balanced evidence suppresses bias
	if got := directionalBias([]models.Pressure{up, down}, 0, 0.9); got != "" {
		t.Fatalf("balanced evidence must suppress bias, got %q", got)
	}
	// high ambiguity suppresses bias even with clear evidence
	if got := directionalBias([]models.Pressure{up}, 0.36, 0.9); got != "" {
		t.Fatalf("high ambiguity must suppress bias, got %q", got)
	}
	// low confidence suppresses bias
	if got := directionalBias([]models.Pressure{up}, 0, 0.49); got != "" {
		t.Fatalf("low confidence must suppress bias, got %q", got)
	}
	// no directional pressure
	n := mkPressure(t, "n", models.DirNeutral, 0.9, 0.9)
	if got := directionalBias([]models.Pressure{n}, 0, 0.9); got != "" {
		t.Fatalf("neutral-only evidence must suppress bias, got %q", got)
	}
}

func TestSelectContributing(t *testing.T) {
	a := mkPressure(t, "a", models.DirPositive, 0.9, 0.9) // 0.81
	b := mkPressure(t, "b", models.DirPositive, 0.8, 0.9) // 0.72
	c := mkPressure(t, "c", models.DirPositive, 0.7, 0.9) // 0.63
	d := mkPressure(t, "d", models.DirPositive, 0.6, 0.9) // 0.54

	got := selectContributing([]models.Pressure{d, c, b, a}, 3)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected top-3: %v", got)
	}

	// tie broken by ascending id
	e1 := mkPressure(t, "z", models.DirPositive, 0.8, 0.9)
	e2 := mkPressure(t, "y", models.DirPositive, 0.8, 0.9)
	got = selectContributing([]models.Pressure{e1, e2}, 3)
	if got[0] != "y" || got[1] != "z" {
		t.Fatalf("tie must break by id: %v", got)
	}
}

func TestEstimateFullState(t *testing.T) {
	est := NewEstimator()
	a := mkPressure(t, "a", models.DirPositive, 0.9, 0.9)
	b := mkPressure(t, "b", models.DirPositive, 0.8, 0.8)
	ix := mkInteraction(t, models.InteractionReinforcement, "a", "b", 0.85, 0.85)

	s, err := est.Estimate("BTCUSDT", []models.Pressure{a, b}, []models.PressureInteraction{ix}, testNow, nil)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if s.DominantState == "" {
		t.Fatalf("dominant state missing")
	}
	if s.DetectedAt != testNow {
		t.Fatalf("detected_at = %v, want %v", s.DetectedAt, testNow)
	}
	if len(s.ValidHorizons) != 1 || s.ValidHorizons[0] != "short_term" {
		t.Fatalf("horizons = %v", s.ValidHorizons)
	}
	if s.DirectionalBias != models.DirPositive {
		t.Fatalf("bias = %q, want positive", s.DirectionalBias)
	}
	if len(s.InteractionIDs) != 1 {
		t.Fatalf("interactions = %v", s.InteractionIDs)
	}
	if s.Explanation == "" {
		t.Fatalf("explanation missing")
	}

	// determinism: identical inputs produce identical states
	s2, err := est.Estimate("BTCUSDT", []models.Pressure{a, b}, []models.PressureInteraction{ix}, testNow, nil)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if s.ID != s2.ID || s.InstabilityScore != s2.InstabilityScore || s.DominantState != s2.DominantState {
		t.Fatalf("estimation must be deterministic: %+v vs %+v", s, s2)
	}
}

func TestEstimateEmptyInputs(t *testing.T) {
	est := NewEstimator()
	s, err := est.Estimate("BTCUSDT", nil, nil, testNow, nil)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if s.DominantState != models.RiskStable {
		t.Fatalf("empty inputs must be stable, got %s", s.DominantState)
	}
	if s.InstabilityScore != 0 {
		t.Fatalf("instability = %v, want 0", s.InstabilityScore)
	}
	if len(s.ValidHorizons) != 1 || s.ValidHorizons[0] != "short_term" {
		t.Fatalf("default horizon missing: %v", s.ValidHorizons)
	}
}
