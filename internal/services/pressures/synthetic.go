package pressures

import (
	"hash/fnv"
	"time"

	"RiskGate/internal/domain/models"
	domsvc "RiskGate/internal/domain/service"
)

// SyntheticDetector produces a deterministic, valid pressure from the
// symbol alone. Used as a fallback when no features are available and in
// tests that need a predictable detector.
type SyntheticDetector struct{}

func NewSyntheticDetector() *SyntheticDetector { return &SyntheticDetector{} }

func (d *SyntheticDetector) Name() string                      { return "synthetic" }
func (d *SyntheticDetector) PressureType() models.PressureType { return models.PressureVolatility }
func (d *SyntheticDetector) TimeHorizon() string               { return "short_term" }

func (d *SyntheticDetector) Detect(symbol string, feats map[string]float64, now time.Time) ([]models.Pressure, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	// magnitude in [0.25, 0.75], stable per symbol
	magnitude := float64(h.Sum32()%1000)/1000*0.5 + 0.25

	raws := []RawSignal{{
		Magnitude:      magnitude,
		Directionality: models.DirNeutral,
		Stability:      0.8,
	}}
	return buildPressures(symbol, d.PressureType(), d.TimeHorizon(), raws, now)
}

var _ domsvc.PressureDetector = (*SyntheticDetector)(nil)
