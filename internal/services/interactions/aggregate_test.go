package interactions

import (
	"math"
	"testing"

	"RiskGate/internal/domain/models"
)

func testInteraction(t *testing.T, itype models.InteractionType, a, b string, contribution, confidence float64) models.PressureInteraction {
	t.Helper()
	ix, err := models.NewPressureInteraction(itype, a, b, contribution, confidence, "")
	if err != nil {
		t.Fatalf("interaction %s/%s: %v", a, b, err)
	}
	return ix
}

func TestWeight(t *testing.T) {
	ix := testInteraction(t, models.InteractionReinforcement, "a", "b", 0.8, 0.5)
	if got := Weight(ix); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("weight = %v, want 0.4", got)
	}
}

func TestComputeInstabilityNoisyOR(t *testing.T) {
	if got := ComputeInstability(nil); got != 0 {
		t.Fatalf("empty input must yield 0, got %v", got)
	}

	one := testInteraction(t, models.InteractionReinforcement, "a", "b", 0.6, 0.5)
	if got := ComputeInstability([]models.PressureInteraction{one}); math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("single weight 0.3 must yield 0.3, got %v", got)
	}

	// two weights 0.3 and 0.2: 1 - 0.7*0.8 = 0.44
	two := testInteraction(t, models.InteractionCounteraction, "c", "d", 0.4, 0.5)
	got := ComputeInstability([]models.PressureInteraction{one, two})
	if math.Abs(got-0.44) > 1e-9 {
		t.Fatalf("noisy-OR of 0.3 and 0.2 = %v, want 0.44", got)
	}

	// adding evidence never decreases the score
	if got < 0.3 {
		t.Fatalf("noisy-OR must be monotone")
	}
}

func TestComputeAmbiguity(t *testing.T) {
	if got := ComputeAmbiguity(nil); got != 0 {
		t.Fatalf("empty input must yield 0, got %v", got)
	}

	re := testInteraction(t, models.InteractionReinforcement, "a", "b", 0.6, 0.5) // w=0.3
	co := testInteraction(t, models.InteractionCounteraction, "c", "d", 0.2, 0.5) // w=0.1

	got := ComputeAmbiguity([]models.PressureInteraction{re, co})
	want := 0.1 / (0.4 + 1e-10)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("ambiguity = %v, want %v", got, want)
	}

	// all reinforcement -> 0
	if got := ComputeAmbiguity([]models.PressureInteraction{re}); got != 0 {
		t.Fatalf("pure reinforcement must yield 0, got %v", got)
	}

	// all counteraction -> close to 1
	if got := ComputeAmbiguity([]models.PressureInteraction{co}); got < 0.999 {
		t.Fatalf("pure counteraction must approach 1, got %v", got)
	}

	// zero total weight -> 0
	zero := testInteraction(t, models.InteractionCounteraction, "e", "f", 0, 0.5)
	if got := ComputeAmbiguity([]models.PressureInteraction{zero}); got != 0 {
		t.Fatalf("zero weight must yield 0, got %v", got)
	}
}
