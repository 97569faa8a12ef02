package repository

import (
	"context"

	"RiskGate/internal/domain/models"
)

// MarketStream is a live tick feed (external collaborator).
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// GatePublisher hands finished behavior gates to downstream consumers.
type GatePublisher interface {
	Publish(ctx context.Context, gate models.BehaviorGate) error
	Close() error
}

// StateStore threads the previous RiskState between runs. The analytical
// core never touches it; only the orchestration layer reads and writes.
type StateStore interface {
	Load(ctx context.Context, symbol string) (*models.RiskState, error)
	Save(ctx context.Context, symbol string, state models.RiskState) error
}

// Metrics records pipeline observability signals.
type Metrics interface {
	RecordRun(symbol string, state models.RiskLevel, seconds float64)
	RecordDetectorFailure(detector string)
	RecordInstability(symbol string, score float64)
	RecordError(kind string)
}
