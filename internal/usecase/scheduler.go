package usecase

import (
	"context"
	"sync"
	"time"

	applogger "RiskGate/pkg/logger"
)

// Scheduler runs the pipeline for every configured symbol on a fixed
// interval. Runs for different symbols are independent and execute
// concurrently; the pipeline itself keeps no cross-run state.
type Scheduler struct {
	pipeline *RiskPipeline
	symbols  []string
	interval time.Duration
	logger   *applogger.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewScheduler(pipeline *RiskPipeline, symbols []string, interval time.Duration, logger *applogger.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		pipeline: pipeline,
		symbols:  symbols,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runAll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.runAll(ctx)
			}
		}
	}()
}

func (s *Scheduler) runAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, symbol := range s.symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			runCtx, cancel := context.WithTimeout(ctx, s.interval)
			defer cancel()
			if _, err := s.pipeline.Run(runCtx, sym); err != nil {
				s.logger.Error("scheduled run failed",
					applogger.String("symbol", sym), applogger.Error(err))
			}
		}(symbol)
	}
	wg.Wait()
}

func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}
