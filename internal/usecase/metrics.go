package usecase

import (
	"RiskGate/internal/domain/models"
	drepo "RiskGate/internal/domain/repository"
)

// NopMetrics discards all observations. Used by one-shot runs and tests.
type NopMetrics struct{}

func (NopMetrics) RecordRun(symbol string, state models.RiskLevel, seconds float64) {}
func (NopMetrics) RecordDetectorFailure(detector string)                            {}
func (NopMetrics) RecordInstability(symbol string, score float64)                   {}
func (NopMetrics) RecordError(kind string)                                          {}

var _ drepo.Metrics = NopMetrics{}
