package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"RiskGate/internal/domain/models"
	domrepo "RiskGate/internal/domain/repository"
	domsvc "RiskGate/internal/domain/service"
	applogger "RiskGate/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type fakeBarStore struct {
	candles []models.Candle
	err     error

	mu     sync.Mutex
	stored []models.Candle
}

func (f *fakeBarStore) GetLatestNCandles(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Candle, error) {
	return f.candles, f.err
}

func (f *fakeBarStore) GetCandles(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Candle, error) {
	return f.candles, f.err
}

func (f *fakeBarStore) StoreBatch(ctx context.Context, candles []models.Candle) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, candles...)
	return nil
}

func (f *fakeBarStore) Health(ctx context.Context) error { return nil }

type fakeStateStore struct {
	loadErr error
	saveErr error
	saved   map[string]models.RiskState
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{saved: make(map[string]models.RiskState)}
}

func (f *fakeStateStore) Load(ctx context.Context, symbol string) (*models.RiskState, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	s, ok := f.saved[symbol]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStateStore) Save(ctx context.Context, symbol string, state models.RiskState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[symbol] = state
	return nil
}

type fakePublisher struct {
	gates []models.BehaviorGate
	err   error
}

func (f *fakePublisher) Publish(ctx context.Context, gate models.BehaviorGate) error {
	if f.err != nil {
		return f.err
	}
	f.gates = append(f.gates, gate)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type countingMetrics struct {
	runs             int
	detectorFailures int
	errors           map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{errors: make(map[string]int)}
}

func (m *countingMetrics) RecordRun(symbol string, state models.RiskLevel, seconds float64) {
	m.runs++
}
func (m *countingMetrics) RecordDetectorFailure(detector string)        { m.detectorFailures++ }
func (m *countingMetrics) RecordInstability(symbol string, score float64) {}
func (m *countingMetrics) RecordError(kind string)                      { m.errors[kind]++ }

type stubDetector struct {
	name      string
	magnitude float64
	err       error
	panics    bool
}

func (d *stubDetector) Name() string                      { return d.name }
func (d *stubDetector) PressureType() models.PressureType { return models.PressureVolatility }
func (d *stubDetector) TimeHorizon() string               { return "short_term" }

func (d *stubDetector) Detect(symbol string, features map[string]float64, now time.Time) ([]models.Pressure, error) {
	if d.panics {
		panic("stub detector blew up")
	}
	if d.err != nil {
		return nil, d.err
	}
	p, err := models.NewPressure(models.Pressure{
		ID:             d.name + "_" + symbol,
		Type:           models.PressureVolatility,
		SourceAssets:   []string{symbol},
		Directionality: models.DirNegative,
		Magnitude:      d.magnitude,
		Confidence:     0.8,
		DetectedAt:     now,
		TimeHorizon:    d.TimeHorizon(),
	})
	if err != nil {
		return nil, err
	}
	return []models.Pressure{p}, nil
}

var _ domrepo.BarStore = (*fakeBarStore)(nil)
var _ domrepo.StateStore = (*fakeStateStore)(nil)
var _ domrepo.GatePublisher = (*fakePublisher)(nil)
var _ domrepo.Metrics = (*countingMetrics)(nil)
var _ domsvc.PressureDetector = (*stubDetector)(nil)

func testCandles(n int) []models.Candle {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	price := 100.0
	for i := range out {
		if i%2 == 0 {
			price *= 1.001
		} else {
			price *= 0.999
		}
		out[i] = models.Candle{
			Bucket: start.Add(time.Duration(i) * time.Minute),
			Symbol: "BTCUSDT",
			Open:   price, High: price, Low: price, Close: price,
			Volume: 1,
		}
	}
	return out
}

func TestRunProducesFullAnalysis(t *testing.T) {
	bars := &fakeBarStore{candles: testCandles(120)}
	states := newFakeStateStore()
	pub := &fakePublisher{}
	metrics := newCountingMetrics()

	p := NewRiskPipeline(
		bars,
		[]domsvc.PressureDetector{&stubDetector{name: "stub_vol", magnitude: 0.7}},
		states, pub, metrics, testLogger(t),
	)

	res, err := p.Run(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Symbol != "BTCUSDT" {
		t.Errorf("symbol = %q", res.Symbol)
	}
	if len(res.Pressures) != 1 {
		t.Fatalf("pressures = %d, want 1", len(res.Pressures))
	}
	if res.RiskState.ID == "" || res.BehaviorGate.ID != "gate_"+res.RiskState.ID {
		t.Errorf("gate id %q does not derive from state id %q", res.BehaviorGate.ID, res.RiskState.ID)
	}
	if len(pub.gates) != 1 || pub.gates[0].RiskStateID != res.RiskState.ID {
		t.Errorf("gate not published: %+v", pub.gates)
	}
	if _, ok := states.saved["BTCUSDT"]; !ok {
		t.Errorf("state not saved")
	}
	if metrics.runs != 1 {
		t.Errorf("runs recorded = %d", metrics.runs)
	}
}

func TestRunDetectorFailureIsolation(t *testing.T) {
	bars := &fakeBarStore{candles: testCandles(120)}
	metrics := newCountingMetrics()

	p := NewRiskPipeline(
		bars,
		[]domsvc.PressureDetector{
			&stubDetector{name: "broken", err: fmt.Errorf("no features")},
			&stubDetector{name: "panicky", panics: true},
			&stubDetector{name: "healthy", magnitude: 0.6},
		},
		newFakeStateStore(), nil, metrics, testLogger(t),
	)

	res, err := p.Run(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("run must survive detector failures: %v", err)
	}
	if len(res.Pressures) != 1 || res.Pressures[0].ID != "healthy_BTCUSDT" {
		t.Fatalf("pressures = %+v, want only the healthy detector's output", res.Pressures)
	}
	if metrics.detectorFailures != 2 {
		t.Errorf("detector failures recorded = %d, want 2", metrics.detectorFailures)
	}
}

func TestRunBarStoreFailureAborts(t *testing.T) {
	bars := &fakeBarStore{err: fmt.Errorf("clickhouse down")}
	metrics := newCountingMetrics()

	p := NewRiskPipeline(
		bars, nil, newFakeStateStore(), nil, metrics, testLogger(t),
	)

	if _, err := p.Run(context.Background(), "BTCUSDT"); err == nil {
		t.Fatalf("expected error when the bar store fails")
	}
	if metrics.errors["bar_store"] != 1 {
		t.Errorf("bar_store error not recorded")
	}
}

func TestRunStateStoreFailuresTolerated(t *testing.T) {
	bars := &fakeBarStore{candles: testCandles(120)}
	states := newFakeStateStore()
	states.loadErr = fmt.Errorf("redis timeout")
	states.saveErr = fmt.Errorf("redis timeout")
	metrics := newCountingMetrics()

	p := NewRiskPipeline(
		bars,
		[]domsvc.PressureDetector{&stubDetector{name: "stub_vol", magnitude: 0.7}},
		states, nil, metrics, testLogger(t),
	)

	if _, err := p.Run(context.Background(), "BTCUSDT"); err != nil {
		t.Fatalf("state store failures must not abort the run: %v", err)
	}
	if metrics.errors["state_store"] != 2 {
		t.Errorf("state_store errors recorded = %d, want 2", metrics.errors["state_store"])
	}
}

func TestRunPublishFailureTolerated(t *testing.T) {
	bars := &fakeBarStore{candles: testCandles(120)}
	pub := &fakePublisher{err: fmt.Errorf("kafka unavailable")}
	metrics := newCountingMetrics()

	p := NewRiskPipeline(
		bars,
		[]domsvc.PressureDetector{&stubDetector{name: "stub_vol", magnitude: 0.7}},
		newFakeStateStore(), pub, metrics, testLogger(t),
	)

	if _, err := p.Run(context.Background(), "BTCUSDT"); err != nil {
		t.Fatalf("publish failure must not abort the run: %v", err)
	}
	if metrics.errors["gate_publish"] != 1 {
		t.Errorf("gate_publish error not recorded")
	}
}

func TestRunDeterministicScores(t *testing.T) {
	bars := &fakeBarStore{candles: testCandles(120)}
	detectors := []domsvc.PressureDetector{&stubDetector{name: "stub_vol", magnitude: 0.7}}

	run := func() models.Analysis {
		p := NewRiskPipeline(bars, detectors, newFakeStateStore(), nil, newCountingMetrics(), testLogger(t))
		res, err := p.Run(context.Background(), "BTCUSDT")
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return res
	}

	a := run()
	b := run()
	if a.RiskState.DominantState != b.RiskState.DominantState {
		t.Errorf("state differs: %s vs %s", a.RiskState.DominantState, b.RiskState.DominantState)
	}
	if a.RiskState.InstabilityScore != b.RiskState.InstabilityScore {
		t.Errorf("instability differs: %v vs %v", a.RiskState.InstabilityScore, b.RiskState.InstabilityScore)
	}
	if a.BehaviorGate.AggressivenessLimit != b.BehaviorGate.AggressivenessLimit {
		t.Errorf("aggressiveness differs: %v vs %v", a.BehaviorGate.AggressivenessLimit, b.BehaviorGate.AggressivenessLimit)
	}
}

func TestRunHysteresisUsesPreviousState(t *testing.T) {
	bars := &fakeBarStore{candles: testCandles(120)}
	states := newFakeStateStore()
	detectors := []domsvc.PressureDetector{&stubDetector{name: "stub_vol", magnitude: 0.7}}

	p := NewRiskPipeline(bars, detectors, states, nil, newCountingMetrics(), testLogger(t))

	first, err := p.Run(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p.Run(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	// Identical inputs with the saved previous state must not flap.
	if first.RiskState.DominantState != second.RiskState.DominantState {
		t.Errorf("state flapped: %s -> %s", first.RiskState.DominantState, second.RiskState.DominantState)
	}
}
