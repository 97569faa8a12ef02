package features

import (
	"math"
	"testing"
	"time"

	"RiskGate/internal/domain/models"
)

func candleSeries(start time.Time, step time.Duration, closes []float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Bucket: start.Add(time.Duration(i) * step),
			Symbol: "BTCUSDT",
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1,
		}
	}
	return out
}

func TestComputeLogReturns(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := candleSeries(start, time.Minute, []float64{100, 110, 99})

	rets := ComputeLogReturns(candles)
	if len(rets) != 2 {
		t.Fatalf("len = %d, want 2", len(rets))
	}
	if math.Abs(rets[0]-math.Log(1.1)) > 1e-12 {
		t.Errorf("rets[0] = %v", rets[0])
	}
	if math.Abs(rets[1]-math.Log(0.9)) > 1e-12 {
		t.Errorf("rets[1] = %v", rets[1])
	}

	if got := ComputeLogReturns(candles[:1]); got != nil {
		t.Errorf("single candle must yield nil, got %v", got)
	}
}

func TestComputeLogReturnsSkipsNonPositivePrices(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := candleSeries(start, time.Minute, []float64{100, 0, 100})

	rets := ComputeLogReturns(candles)
	if rets[0] != 0 || rets[1] != 0 {
		t.Fatalf("non-positive close must produce zero returns, got %v", rets)
	}
}

func TestRealizedVolatility(t *testing.T) {
	// Alternating +/-1% returns over the window: mean 0, sample std ~0.01.
	rets := make([]float64, 20)
	for i := range rets {
		if i%2 == 0 {
			rets[i] = 0.01
		} else {
			rets[i] = -0.01
		}
	}
	got := RealizedVolatility(rets, 20, 1)
	want := math.Sqrt(0.0001 * 20 / 19)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("rv = %v, want %v", got, want)
	}

	if RealizedVolatility(rets, 1, 1) != 0 {
		t.Errorf("window <= 1 must return 0")
	}
	if RealizedVolatility(rets[:5], 20, 1) != 0 {
		t.Errorf("short series must return 0")
	}
}

func TestBarsPerYearForTF(t *testing.T) {
	if BarsPerYearForTF("1s") != 365*24*60*60 {
		t.Errorf("1s bars per year wrong")
	}
	if BarsPerYearForTF("5m") != 365*24*12 {
		t.Errorf("5m bars per year wrong")
	}
	if BarsPerYearForTF("unknown") != BarsPerYearForTF("1m") {
		t.Errorf("unknown timeframe must default to 1m")
	}
}

func TestExtractEmptySeries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feats := Extract(nil, "1m", now)

	if feats[FeatBarCount] != 0 {
		t.Errorf("bar_count = %v", feats[FeatBarCount])
	}
	if feats[FeatMissingRatio] != 1 {
		t.Errorf("missing_ratio = %v, want 1", feats[FeatMissingRatio])
	}
	if _, ok := feats[FeatLastReturn]; ok {
		t.Errorf("signal features must be absent for the empty series")
	}
}

func TestExtractQualityFeatures(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	candles := candleSeries(start, time.Minute, []float64{100, 101, 102, 101})
	now := start.Add(3*time.Minute + 30*time.Second)

	feats := Extract(candles, "1m", now)

	if feats[FeatBarCount] != 4 {
		t.Errorf("bar_count = %v", feats[FeatBarCount])
	}
	// Contiguous series: no missing buckets.
	if feats[FeatMissingRatio] != 0 {
		t.Errorf("missing_ratio = %v, want 0", feats[FeatMissingRatio])
	}
	if math.Abs(feats[FeatStaleness]-30) > 1e-9 {
		t.Errorf("staleness = %v, want 30", feats[FeatStaleness])
	}
	if _, ok := feats[FeatLastReturn]; !ok {
		t.Errorf("ret_1 missing")
	}
}

func TestExtractDetectsMissingBuckets(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// 3 bars spanning 4 expected minute buckets: one missing.
	candles := []models.Candle{
		{Bucket: start, Close: 100},
		{Bucket: start.Add(1 * time.Minute), Close: 101},
		{Bucket: start.Add(3 * time.Minute), Close: 102},
	}

	feats := Extract(candles, "1m", start.Add(3*time.Minute))
	if math.Abs(feats[FeatMissingRatio]-0.25) > 1e-9 {
		t.Fatalf("missing_ratio = %v, want 0.25", feats[FeatMissingRatio])
	}
}

func TestExtractSignalFeatures(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 80)
	price := 100.0
	for i := range closes {
		// deterministic small oscillation plus drift
		if i%2 == 0 {
			price *= 1.002
		} else {
			price *= 0.999
		}
		closes[i] = price
	}
	candles := candleSeries(start, time.Minute, closes)
	now := candles[len(candles)-1].Bucket

	feats := Extract(candles, "1m", now)

	for _, key := range []string{FeatRVShort, FeatRVLong, FeatZRVRatio, FeatZRet, FeatLastReturn, FeatStability} {
		if _, ok := feats[key]; !ok {
			t.Errorf("feature %s missing", key)
		}
	}
	if feats[FeatRVShort] <= 0 || feats[FeatRVLong] <= 0 {
		t.Errorf("realized vol must be positive: short=%v long=%v", feats[FeatRVShort], feats[FeatRVLong])
	}
	if feats[FeatStability] < 0 || feats[FeatStability] > 1 {
		t.Errorf("stability out of range: %v", feats[FeatStability])
	}
	// Net positive drift over the trailing window.
	if feats[FeatZRet] <= 0 {
		t.Errorf("z_ret_20 = %v, want > 0", feats[FeatZRet])
	}
}

func TestExtractDeterministic(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := candleSeries(start, time.Minute, []float64{100, 101, 100, 102, 103, 101, 104})
	now := candles[len(candles)-1].Bucket

	a := Extract(candles, "1m", now)
	b := Extract(candles, "1m", now)
	if len(a) != len(b) {
		t.Fatalf("feature sets differ in size")
	}
	for k, v := range a {
		if b[k] != v {
			t.Errorf("feature %s differs: %v vs %v", k, v, b[k])
		}
	}
}
