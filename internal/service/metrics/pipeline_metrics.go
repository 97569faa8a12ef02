package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"RiskGate/internal/domain/models"
	domrepo "RiskGate/internal/domain/repository"
)

var (
	once sync.Once

	RunLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "riskgate",
			Subsystem: "pipeline",
			Name:      "run_seconds",
			Help:      "Latency of full pipeline runs",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"symbol", "state"},
	)

	DetectorFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskgate",
			Subsystem: "pipeline",
			Name:      "detector_failures_total",
			Help:      "Detector invocations that returned an error or panicked",
		},
		[]string{"detector"},
	)

	Instability = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "riskgate",
			Subsystem: "pipeline",
			Name:      "instability_score",
			Help:      "Latest instability score per symbol",
		},
		[]string{"symbol"},
	)

	Errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskgate",
			Subsystem: "pipeline",
			Name:      "errors_total",
			Help:      "Pipeline errors by kind",
		},
		[]string{"kind"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(RunLatency, DetectorFailures, Instability, Errors)
	})
}

// Recorder implements the pipeline Metrics collaborator on top of the
// registered Prometheus collectors.
type Recorder struct{}

func NewRecorder() *Recorder {
	Register()
	return &Recorder{}
}

func (Recorder) RecordRun(symbol string, state models.RiskLevel, seconds float64) {
	RunLatency.WithLabelValues(symbol, string(state)).Observe(seconds)
}

func (Recorder) RecordDetectorFailure(detector string) {
	DetectorFailures.WithLabelValues(detector).Inc()
}

func (Recorder) RecordInstability(symbol string, score float64) {
	Instability.WithLabelValues(symbol).Set(score)
}

func (Recorder) RecordError(kind string) {
	Errors.WithLabelValues(kind).Inc()
}

var _ domrepo.Metrics = (*Recorder)(nil)
