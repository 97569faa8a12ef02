package models

import (
	"fmt"
	"math"
	"time"
)

// unit validates a value intended for [0, 1]. Non-finite input is a hard
// error; finite input slightly outside the range (float drift) is clamped.
func unit(name string, x float64) (float64, error) {
	if !math.IsInf(x, 0) && !math.IsNaN(x) {
		return math.Max(0, math.Min(1, x)), nil
	}
	return 0, fmt.Errorf("%s must be finite, got %v", name, x)
}

// signedUnit validates a value intended for [-1, 1] the same way.
func signedUnit(name string, x float64) (float64, error) {
	if !math.IsInf(x, 0) && !math.IsNaN(x) {
		return math.Max(-1, math.Min(1, x)), nil
	}
	return 0, fmt.Errorf("%s must be finite, got %v", name, x)
}

// ensureUTC normalizes a timestamp to UTC; zero input becomes time.Now().UTC().
func ensureUTC(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
