package usecase

import (
	"context"
	"fmt"
	"time"

	"RiskGate/internal/domain/models"
	domrepo "RiskGate/internal/domain/repository"
	domsvc "RiskGate/internal/domain/service"
	"RiskGate/internal/services/features"
	"RiskGate/internal/services/gate"
	"RiskGate/internal/services/interactions"
	"RiskGate/internal/services/state"
	applogger "RiskGate/pkg/logger"
)

// RiskPipeline runs the full analysis chain for one symbol: candles ->
// features -> pressure detection -> interaction rules -> state estimation
// (with hysteresis against the previous run) -> behavior gate.
//
// Every run uses a single shared UTC timestamp and produces fresh immutable
// artifacts; the only cross-run state is the previous RiskState threaded
// through the StateStore as read-only input.
type RiskPipeline struct {
	bars      domrepo.BarStore
	detectors []domsvc.PressureDetector
	estimator *state.Estimator
	gates     *gate.Controller
	states    domrepo.StateStore
	publisher domrepo.GatePublisher
	metrics   domrepo.Metrics
	logger    *applogger.Logger

	lookback int
	tf       domrepo.Timeframe
}

type PipelineOption func(*RiskPipeline)

// WithLookback sets how many candles each run loads.
func WithLookback(n int) PipelineOption {
	return func(p *RiskPipeline) {
		if n > 1 {
			p.lookback = n
		}
	}
}

// WithTimeframe sets the candle resolution for feature extraction.
func WithTimeframe(tf domrepo.Timeframe) PipelineOption {
	return func(p *RiskPipeline) {
		if domrepo.IsValidTimeframe(tf) {
			p.tf = tf
		}
	}
}

func NewRiskPipeline(
	bars domrepo.BarStore,
	detectors []domsvc.PressureDetector,
	states domrepo.StateStore,
	publisher domrepo.GatePublisher,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	opts ...PipelineOption,
) *RiskPipeline {
	p := &RiskPipeline{
		bars:      bars,
		detectors: detectors,
		estimator: state.NewEstimator(),
		gates:     gate.NewController(),
		states:    states,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		lookback:  600,
		tf:        domrepo.TF1m,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one pipeline pass. Structural failures (bar store, state
// estimation) abort with no partial result; individual detector failures
// are logged and skipped.
func (p *RiskPipeline) Run(ctx context.Context, symbol string) (models.Analysis, error) {
	return p.RunWith(ctx, symbol, p.lookback, p.tf)
}

// RunWith executes one pass with an explicit lookback and timeframe,
// overriding the configured defaults.
func (p *RiskPipeline) RunWith(ctx context.Context, symbol string, lookback int, tf domrepo.Timeframe) (models.Analysis, error) {
	start := time.Now()
	now := start.UTC()

	candles, err := p.bars.GetLatestNCandles(ctx, symbol, lookback, tf)
	if err != nil {
		p.metrics.RecordError("bar_store")
		return models.Analysis{}, fmt.Errorf("load candles for %s: %w", symbol, err)
	}
	feats := features.Extract(candles, string(tf), now)

	pressures := p.detect(symbol, feats, now)

	ixs, err := interactions.Generate(pressures)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("generate interactions for %s: %w", symbol, err)
	}

	previous, err := p.states.Load(ctx, symbol)
	if err != nil {
		// Previous-state continuity is best effort: losing it only widens
		// hysteresis to the entry table for this run.
		p.metrics.RecordError("state_store")
		p.logger.Warn("previous state unavailable",
			applogger.String("symbol", symbol), applogger.Error(err))
		previous = nil
	}

	riskState, err := p.estimator.Estimate(symbol, pressures, ixs, now, previous)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("estimate state for %s: %w", symbol, err)
	}

	behaviorGate, err := p.gates.Build(riskState, now)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("build gate for %s: %w", symbol, err)
	}

	if err := p.states.Save(ctx, symbol, riskState); err != nil {
		p.metrics.RecordError("state_store")
		p.logger.Warn("state save failed",
			applogger.String("symbol", symbol), applogger.Error(err))
	}
	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, behaviorGate); err != nil {
			p.metrics.RecordError("gate_publish")
			p.logger.Error("gate publish failed",
				applogger.String("symbol", symbol), applogger.Error(err))
		}
	}

	p.metrics.RecordRun(symbol, riskState.DominantState, time.Since(start).Seconds())
	p.metrics.RecordInstability(symbol, riskState.InstabilityScore)
	p.logger.Info("pipeline run complete",
		applogger.String("symbol", symbol),
		applogger.String("state", string(riskState.DominantState)),
		applogger.Int("pressures", len(pressures)),
		applogger.Int("interactions", len(ixs)),
	)

	return models.Analysis{
		Symbol:       symbol,
		RunAt:        now,
		Pressures:    pressures,
		Interactions: ixs,
		RiskState:    riskState,
		BehaviorGate: behaviorGate,
	}, nil
}

// detect runs every detector in isolation: an error or panic in one
// detector drops only that detector's output for this run.
func (p *RiskPipeline) detect(symbol string, feats map[string]float64, now time.Time) []models.Pressure {
	var out []models.Pressure
	for _, d := range p.detectors {
		ps, err := p.detectOne(d, symbol, feats, now)
		if err != nil {
			p.metrics.RecordDetectorFailure(d.Name())
			p.logger.Warn("detector failed",
				applogger.String("detector", d.Name()),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			continue
		}
		out = append(out, ps...)
	}
	return out
}

func (p *RiskPipeline) detectOne(d domsvc.PressureDetector, symbol string, feats map[string]float64, now time.Time) (ps []models.Pressure, err error) {
	defer func() {
		if r := recover(); r != nil {
			ps = nil
			err = fmt.Errorf("detector panic: %v", r)
		}
	}()
	return d.Detect(symbol, feats, now)
}
