package pressures

import (
	"math"
	"time"

	"RiskGate/internal/domain/models"
	domsvc "RiskGate/internal/domain/service"
	"RiskGate/internal/services/features"
)

// MomentumDetector reads the trailing-return z-score. Directionality
// follows the sign of the move; magnitude grows with its size.
type MomentumDetector struct{}

func NewMomentumDetector() *MomentumDetector { return &MomentumDetector{} }

func (d *MomentumDetector) Name() string                      { return "trailing_momentum" }
func (d *MomentumDetector) PressureType() models.PressureType { return models.PressureMomentum }
func (d *MomentumDetector) TimeHorizon() string               { return "short_term" }

func (d *MomentumDetector) Detect(symbol string, feats map[string]float64, now time.Time) ([]models.Pressure, error) {
	z, ok := feats[features.FeatZRet]
	if !ok {
		return nil, nil
	}

	dir := models.DirNeutral
	if z >= 0.25 {
		dir = models.DirPositive
	} else if z <= -0.25 {
		dir = models.DirNegative
	}

	// |z|=0 must map to magnitude 0, so rescale the sigmoid's [0.5, 1) range
	magnitude := 2 * (features.Squash01FromZ(math.Abs(z), 1) - 0.5)

	raws := []RawSignal{{
		Magnitude:        magnitude,
		Directionality:   dir,
		MissingRatio:     feats[features.FeatMissingRatio],
		StalenessSeconds: feats[features.FeatStaleness],
		Stability:        feats[features.FeatStability],
	}}
	return buildPressures(symbol, d.PressureType(), d.TimeHorizon(), raws, now)
}

var _ domsvc.PressureDetector = (*MomentumDetector)(nil)
