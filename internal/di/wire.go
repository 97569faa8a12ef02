//go:build wireinject
// +build wireinject

package di

import (
	"RiskGate/pkg/config"
	"RiskGate/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,

		// Metrics
		ProvideIngestMetrics,
		ProvidePipelineMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideBarStore,
		ProvideGatePublisher,
		ProvideStateStore,
		ProvideMarketStream,

		// Use cases
		ProvideDetectors,
		ProvideTickCollector,
		ProvideKafkaTickHandler,
		ProvideRiskPipeline,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
