package features

import "math"

// Deterministic math helpers for pressure computation. All functions are
// total: non-finite input degrades to a neutral value instead of panicking.

// Clamp restricts x to [lo, hi]. Non-finite x maps to the range midpoint.
func Clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, x))
}

// Sigmoid computes 1/(1+exp(-k*z)). The scaled input is pre-clamped to
// avoid overflow; non-finite input yields 0.5.
func Sigmoid(z, k float64) float64 {
	if math.IsNaN(z) || math.IsInf(z, 0) || math.IsNaN(k) || math.IsInf(k, 0) {
		return 0.5
	}
	zk := math.Max(-50, math.Min(50, z*k))
	out := 1 / (1 + math.Exp(-zk))
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0.5
	}
	return math.Max(0, math.Min(1, out))
}

// Squash01FromZ maps a z-score into [0, 1] via Sigmoid.
func Squash01FromZ(z, k float64) float64 {
	return Sigmoid(z, k)
}

// ZScore computes (x-mean)/max(|std|, eps), clamped to [-10, 10].
// Any non-finite operand yields 0.
func ZScore(x, mean, std, eps float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) ||
		math.IsNaN(mean) || math.IsInf(mean, 0) ||
		math.IsNaN(std) || math.IsInf(std, 0) {
		return 0
	}
	out := (x - mean) / math.Max(math.Abs(std), eps)
	return math.Max(-10, math.Min(10, out))
}

// RollingMean averages the last window elements, or 0 without data.
func RollingMean(values []float64, window int) float64 {
	if len(values) == 0 || window <= 0 {
		return 0
	}
	n := window
	if len(values) < n {
		n = len(values)
	}
	sum := 0.0
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	out := sum / float64(n)
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0
	}
	return out
}

// RollingStd computes the population standard deviation of the last window
// elements, floored at eps.
func RollingStd(values []float64, window int, eps float64) float64 {
	if len(values) == 0 || window <= 0 {
		return eps
	}
	n := window
	if len(values) < n {
		n = len(values)
	}
	if n < 2 {
		return eps
	}
	subset := values[len(values)-n:]
	mean := 0.0
	for _, v := range subset {
		mean += v
	}
	mean /= float64(n)
	variance := 0.0
	for _, v := range subset {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)
	out := math.Sqrt(math.Max(variance, eps))
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return eps
	}
	return out
}

// EMA computes an exponential moving average over values with smoothing
// alpha in [0, 1]. Non-finite elements are skipped.
func EMA(values []float64, alpha float64) float64 {
	if len(values) == 0 {
		return 0
	}
	alpha = math.Max(0, math.Min(1, alpha))
	if alpha == 0 {
		return values[0]
	}
	if alpha == 1 {
		return values[len(values)-1]
	}
	out := values[0]
	for _, v := range values[1:] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = alpha*v + (1-alpha)*out
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0
	}
	return out
}

// AccelerationFromMagnitudes scales a magnitude step into [-1, 1].
// Non-finite operands or a non-positive maxStep yield 0.
func AccelerationFromMagnitudes(curr, prev, maxStep float64) float64 {
	if math.IsNaN(curr) || math.IsInf(curr, 0) || math.IsNaN(prev) || math.IsInf(prev, 0) {
		return 0
	}
	if math.IsNaN(maxStep) || math.IsInf(maxStep, 0) || maxStep <= 0 {
		return 0
	}
	return Clamp((curr-prev)/maxStep, -1, 1)
}

// ConfidenceFromQuality derives measurement confidence from data quality:
// missing data penalizes linearly, staleness decays with an exponential
// half-life, stability rewards linearly. The combination is
// 0.7*(missing*staleness) + 0.3*stability, clamped to [0, 1].
func ConfidenceFromQuality(missingRatio, stalenessSeconds, stability, halflifeSeconds float64) float64 {
	missingRatio = Clamp(missingRatio, 0, 1)
	stability = Clamp(stability, 0, 1)
	if math.IsNaN(stalenessSeconds) || math.IsInf(stalenessSeconds, 0) || stalenessSeconds < 0 {
		stalenessSeconds = 0
	}
	if math.IsNaN(halflifeSeconds) || math.IsInf(halflifeSeconds, 0) || halflifeSeconds < 1 {
		halflifeSeconds = 1
	}

	missingPenalty := 1 - missingRatio
	stalenessDecay := 1.0
	if stalenessSeconds > 0 {
		stalenessDecay = math.Exp(-math.Ln2 * stalenessSeconds / halflifeSeconds)
		if math.IsNaN(stalenessDecay) || math.IsInf(stalenessDecay, 0) {
			stalenessDecay = 0
		}
	}
	return Clamp(0.7*missingPenalty*stalenessDecay+0.3*stability, 0, 1)
}
