package features

import (
	"math"
	"time"

	"RiskGate/internal/domain/models"
)

// Feature names consumed by the built-in detectors.
const (
	FeatZRVRatio     = "z_rv_ratio"
	FeatZRet         = "z_ret_20"
	FeatRVShort      = "rv_20"
	FeatRVLong       = "rv_60"
	FeatLastReturn   = "ret_1"
	FeatBarCount     = "bar_count"
	FeatMissingRatio = "missing_ratio"
	FeatStaleness    = "staleness_seconds"
	FeatStability    = "stability"
)

const (
	shortWindow = 20
	longWindow  = 60
)

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(candles)-1, or nil if insufficient data.
func ComputeLogReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility over a rolling
// window using the provided number of bars per year. Returns the latest
// window sigma.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}

// BarsPerYearForTF returns the approximate number of bars per year for a timeframe.
func BarsPerYearForTF(tf string) float64 {
	switch tf {
	case "1s":
		return 365 * 24 * 60 * 60
	case "1m":
		return 365 * 24 * 60
	case "5m":
		return 365 * 24 * 12
	default:
		return 365 * 24 * 60
	}
}

// Extract reduces a candle series to the flat feature map consumed by the
// pressure detectors. The map always carries the quality features
// (missing_ratio, staleness_seconds, stability) so detectors can derive
// confidence; signal features are present only when enough bars exist.
func Extract(candles []models.Candle, tf string, now time.Time) map[string]float64 {
	feats := map[string]float64{
		FeatBarCount:     float64(len(candles)),
		FeatMissingRatio: 1,
		FeatStaleness:    0,
		FeatStability:    0,
	}
	if len(candles) == 0 {
		return feats
	}

	rets := ComputeLogReturns(candles)
	bpy := BarsPerYearForTF(tf)

	feats[FeatMissingRatio] = missingRatio(candles, tf)
	feats[FeatStaleness] = math.Max(0, now.Sub(candles[len(candles)-1].Bucket).Seconds())
	feats[FeatStability] = stability(rets)

	if len(rets) == 0 {
		return feats
	}
	feats[FeatLastReturn] = rets[len(rets)-1]

	rvShort := RealizedVolatility(rets, minInt(shortWindow, len(rets)), bpy)
	rvLong := RealizedVolatility(rets, minInt(longWindow, len(rets)), bpy)
	feats[FeatRVShort] = rvShort
	feats[FeatRVLong] = rvLong
	if rvLong > 0 {
		// short/long realized vol ratio, standardized around 1
		feats[FeatZRVRatio] = ZScore(rvShort/rvLong, 1, 0.25, 1e-12)
	}

	if len(rets) >= shortWindow {
		window := rets[len(rets)-shortWindow:]
		trailing := 0.0
		for _, r := range window {
			trailing += r
		}
		std := RollingStd(rets, longWindow, 1e-12) * math.Sqrt(shortWindow)
		feats[FeatZRet] = ZScore(trailing, 0, std, 1e-12)
	}
	return feats
}

// missingRatio estimates the share of expected buckets absent from the series.
func missingRatio(candles []models.Candle, tf string) float64 {
	if len(candles) < 2 {
		return 0
	}
	var step time.Duration
	switch tf {
	case "1s":
		step = time.Second
	case "5m":
		step = 5 * time.Minute
	default:
		step = time.Minute
	}
	span := candles[len(candles)-1].Bucket.Sub(candles[0].Bucket)
	expected := int(span/step) + 1
	if expected <= len(candles) {
		return 0
	}
	return Clamp(1-float64(len(candles))/float64(expected), 0, 1)
}

// stability maps return dispersion to [0, 1]: calmer series score higher.
func stability(rets []float64) float64 {
	if len(rets) < 2 {
		return 0
	}
	std := RollingStd(rets, len(rets), 1e-12)
	// z >= 0 here, so the sigmoid starts at 0.5; rescale to a full [0, 1] drop
	return Clamp(1-2*(Squash01FromZ(ZScore(std, 0, 0.01, 1e-12), 1)-0.5), 0, 1)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
