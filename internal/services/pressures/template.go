package pressures

import (
	"fmt"
	"time"

	"RiskGate/internal/domain/models"
	"RiskGate/internal/services/features"
)

// RawSignal is a detector's unbounded output before safety processing.
// Magnitude may be a raw [0,1] value or a z-score (IsZScore); Acceleration
// and Confidence are optional and derived when nil.
type RawSignal struct {
	Magnitude      float64
	IsZScore       bool
	Directionality models.Directionality
	Acceleration   *float64

	Confidence       *float64
	MissingRatio     float64
	StalenessSeconds float64
	Stability        float64

	MaxStep     float64
	Explanation string
}

const defaultStalenessHalflife = 300.0

// buildPressures applies the shared safety processing every detector gets:
// magnitude squashing/bounding, acceleration from successive magnitudes
// within this batch (nothing is persisted across runs, so the first signal
// gets 0), confidence from quality metrics, UTC timestamps, and validated
// construction. Pressure ids are <type>_<symbol>_<index>.
func buildPressures(
	symbol string,
	ptype models.PressureType,
	horizon string,
	raws []RawSignal,
	now time.Time,
) ([]models.Pressure, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	nowUTC := now.UTC()

	out := make([]models.Pressure, 0, len(raws))
	var prevMagnitude *float64
	for i, raw := range raws {
		magnitude := raw.Magnitude
		if raw.IsZScore {
			magnitude = features.Squash01FromZ(raw.Magnitude, 1)
		} else {
			magnitude = features.Clamp(magnitude, 0, 1)
		}

		acceleration := 0.0
		if raw.Acceleration != nil {
			acceleration = features.Clamp(*raw.Acceleration, -1, 1)
		} else if prevMagnitude != nil {
			maxStep := raw.MaxStep
			if maxStep <= 0 {
				maxStep = 1
			}
			acceleration = features.AccelerationFromMagnitudes(magnitude, *prevMagnitude, maxStep)
		}

		confidence := 0.0
		if raw.Confidence != nil {
			confidence = features.Clamp(*raw.Confidence, 0, 1)
		} else {
			confidence = features.ConfidenceFromQuality(
				raw.MissingRatio, raw.StalenessSeconds, raw.Stability, defaultStalenessHalflife)
		}

		explanation := raw.Explanation
		if explanation == "" {
			explanation = fmt.Sprintf("%s pressure for %s: magnitude=%.2f, acceleration=%.2f, confidence=%.2f",
				ptype, symbol, magnitude, acceleration, confidence)
		}

		p, err := models.NewPressure(models.Pressure{
			ID:             fmt.Sprintf("%s_%s_%d", ptype, symbol, i),
			Type:           ptype,
			SourceAssets:   []string{symbol},
			Directionality: raw.Directionality,
			Magnitude:      magnitude,
			Acceleration:   acceleration,
			Confidence:     confidence,
			DetectedAt:     nowUTC,
			TimeHorizon:    horizon,
			Explanation:    explanation,
		})
		if err != nil {
			return nil, fmt.Errorf("detector %s signal %d: %w", ptype, i, err)
		}
		out = append(out, p)
		m := magnitude
		prevMagnitude = &m
	}
	return out, nil
}
