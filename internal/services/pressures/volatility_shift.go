package pressures

import (
	"time"

	"RiskGate/internal/domain/models"
	domsvc "RiskGate/internal/domain/service"
	"RiskGate/internal/services/features"
)

// VolatilityShiftDetector flags regime shifts where short-window realized
// volatility pulls away from the long-window baseline. It reads the
// standardized vol-ratio feature and squashes it into a magnitude.
type VolatilityShiftDetector struct{}

func NewVolatilityShiftDetector() *VolatilityShiftDetector { return &VolatilityShiftDetector{} }

func (d *VolatilityShiftDetector) Name() string                     { return "volatility_regime_shift" }
func (d *VolatilityShiftDetector) PressureType() models.PressureType { return models.PressureVolatility }
func (d *VolatilityShiftDetector) TimeHorizon() string              { return "short_term" }

func (d *VolatilityShiftDetector) Detect(symbol string, feats map[string]float64, now time.Time) ([]models.Pressure, error) {
	z, ok := feats[features.FeatZRVRatio]
	if !ok {
		return nil, nil
	}

	// Expanding vol is destabilizing regardless of price direction, but the
	// sign of the shift still carries direction: contracting vol is benign.
	dir := models.DirNeutral
	if z > 0.5 {
		dir = models.DirPositive
	} else if z < -0.5 {
		dir = models.DirNegative
	}

	raws := []RawSignal{{
		Magnitude:        z,
		IsZScore:         true,
		Directionality:   dir,
		MissingRatio:     feats[features.FeatMissingRatio],
		StalenessSeconds: feats[features.FeatStaleness],
		Stability:        feats[features.FeatStability],
	}}
	return buildPressures(symbol, d.PressureType(), d.TimeHorizon(), raws, now)
}

var _ domsvc.PressureDetector = (*VolatilityShiftDetector)(nil)
