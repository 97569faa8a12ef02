package features

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	if got := Clamp(-0.5, 0, 1); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := Clamp(0.25, 0, 1); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
	if got := Clamp(math.NaN(), 0, 1); got != 0.5 {
		t.Fatalf("expected midpoint for NaN, got %v", got)
	}
	if got := Clamp(math.Inf(1), -1, 1); got != 0 {
		t.Fatalf("expected midpoint for Inf, got %v", got)
	}
}

func TestSigmoid(t *testing.T) {
	if got := Sigmoid(0, 1); got != 0.5 {
		t.Fatalf("expected 0.5 at z=0, got %v", got)
	}
	if got := Sigmoid(100, 1); got < 0.999 || got > 1 {
		t.Fatalf("expected saturation near 1, got %v", got)
	}
	if got := Sigmoid(-100, 1); got > 0.001 || got < 0 {
		t.Fatalf("expected saturation near 0, got %v", got)
	}
	if got := Sigmoid(math.NaN(), 1); got != 0.5 {
		t.Fatalf("expected 0.5 for NaN, got %v", got)
	}
	// monotonic
	if Sigmoid(1, 2) <= Sigmoid(0.5, 2) {
		t.Fatalf("sigmoid must be increasing")
	}
}

func TestZScore(t *testing.T) {
	if got := ZScore(3, 1, 1, 1e-12); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	// clamped to [-10, 10]
	if got := ZScore(1000, 0, 1, 1e-12); got != 10 {
		t.Fatalf("expected clamp to 10, got %v", got)
	}
	if got := ZScore(-1000, 0, 1, 1e-12); got != -10 {
		t.Fatalf("expected clamp to -10, got %v", got)
	}
	// eps floor when std is ~0
	if got := ZScore(1, 0, 0, 0.5); got != 2 {
		t.Fatalf("expected eps floor to apply, got %v", got)
	}
	if got := ZScore(math.Inf(1), 0, 1, 1e-12); got != 0 {
		t.Fatalf("expected 0 for non-finite, got %v", got)
	}
}

func TestRollingMean(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	if got := RollingMean(vals, 2); got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
	if got := RollingMean(vals, 10); got != 2.5 {
		t.Fatalf("expected full-slice mean 2.5, got %v", got)
	}
	if got := RollingMean(nil, 3); got != 0 {
		t.Fatalf("expected 0 for empty, got %v", got)
	}
}

func TestRollingStd(t *testing.T) {
	// population std of {2, 4} is 1
	if got := RollingStd([]float64{2, 4}, 2, 1e-12); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected 1, got %v", got)
	}
	// constant series floors variance at eps
	if got := RollingStd([]float64{5, 5, 5}, 3, 1e-12); math.Abs(got-1e-6) > 1e-9 {
		t.Fatalf("expected eps floor, got %v", got)
	}
	if got := RollingStd(nil, 3, 0.01); got != 0.01 {
		t.Fatalf("expected eps for empty, got %v", got)
	}
}

func TestEMA(t *testing.T) {
	if got := EMA([]float64{1, 2, 3}, 1); got != 3 {
		t.Fatalf("alpha=1 should return last, got %v", got)
	}
	if got := EMA([]float64{1, 2, 3}, 0); got != 1 {
		t.Fatalf("alpha=0 should return first, got %v", got)
	}
	got := EMA([]float64{1, 2}, 0.5)
	if math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("expected 1.5, got %v", got)
	}
	// NaN elements are skipped
	if got := EMA([]float64{1, math.NaN(), 1}, 0.5); got != 1 {
		t.Fatalf("expected NaN skip, got %v", got)
	}
}

func TestAccelerationFromMagnitudes(t *testing.T) {
	if got := AccelerationFromMagnitudes(0.8, 0.6, 0.4); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := AccelerationFromMagnitudes(1, 0, 0.5); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	if got := AccelerationFromMagnitudes(0, 1, 0.5); got != -1 {
		t.Fatalf("expected clamp to -1, got %v", got)
	}
	if got := AccelerationFromMagnitudes(1, 0, 0); got != 0 {
		t.Fatalf("expected 0 for non-positive step, got %v", got)
	}
	if got := AccelerationFromMagnitudes(math.NaN(), 0, 1); got != 0 {
		t.Fatalf("expected 0 for NaN, got %v", got)
	}
}

func TestConfidenceFromQuality(t *testing.T) {
	// perfect data: 0.7*1*1 + 0.3*1 = 1
	if got := ConfidenceFromQuality(0, 0, 1, 300); got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}
	// all missing, no stability: 0
	if got := ConfidenceFromQuality(1, 0, 0, 300); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	// staleness at one half-life halves the freshness term
	got := ConfidenceFromQuality(0, 300, 0, 300)
	if math.Abs(got-0.35) > 1e-9 {
		t.Fatalf("expected 0.35, got %v", got)
	}
	// negative staleness treated as fresh
	if got := ConfidenceFromQuality(0, -10, 0, 300); got != 0.7 {
		t.Fatalf("expected 0.7, got %v", got)
	}
}
