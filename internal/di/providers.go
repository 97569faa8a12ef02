package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"RiskGate/internal/domain/repository"
	domsvc "RiskGate/internal/domain/service"
	internalrepo "RiskGate/internal/repository"
	"RiskGate/internal/service/marketdata"
	svcmetrics "RiskGate/internal/service/metrics"
	"RiskGate/internal/services/pressures"
	"RiskGate/internal/usecase"
	pkgch "RiskGate/pkg/clickhouse"
	"RiskGate/pkg/config"
	pkgkafka "RiskGate/pkg/kafka"
	applogger "RiskGate/pkg/logger"
	pkgmetrics "RiskGate/pkg/metrics"
	"RiskGate/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := "json"
	if cfg.Logging.Pretty {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the bar schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	db := cfg.ClickHouse.Database
	if db == "" {
		db = "riskgate"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.SchemaDDL(db)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer when a tick topic is configured.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Kafka.Consumer.TickTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideIngestMetrics creates the Prometheus ingest recorder.
func ProvideIngestMetrics() *pkgmetrics.Recorder {
	return pkgmetrics.New()
}

// ProvidePipelineMetrics creates the pipeline metrics recorder.
func ProvidePipelineMetrics() repository.Metrics {
	return svcmetrics.NewRecorder()
}

// ProvideBarStore creates the ClickHouse bar store.
func ProvideBarStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.BarStore {
	db := cfg.ClickHouse.Database
	if db == "" {
		db = "riskgate"
	}
	store := internalrepo.NewCHBarStore(chClient, db)
	store.SetLogger(l)
	return store
}

// ProvideGatePublisher creates the Kafka gate publisher.
func ProvideGatePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.GatePublisher {
	topic := cfg.Kafka.GateTopic
	if topic == "" {
		topic = "riskgate.gates"
	}
	return internalrepo.NewKafkaGatePublisher(producer, topic)
}

// ProvideStateStore creates a Redis-backed state store, or an in-process
// one when Redis is not configured.
func ProvideStateStore(cfg *config.Config) repository.StateStore {
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return internalrepo.NewRedisStateStore(rdb)
	}
	return internalrepo.NewMemoryStateStore()
}

// ProvideMarketStream creates the WebSocket market stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	return marketdata.New(
		cfg.MarketData.APIKey,
		cfg.MarketData.WebSocketURL,
		cfg.Pipeline.Symbols,
		cfg.MarketData.ReconnectDelay,
		cfg.MarketData.PingInterval,
	)
}

// ProvideDetectors builds the pressure detector set.
func ProvideDetectors() []domsvc.PressureDetector {
	return []domsvc.PressureDetector{
		pressures.NewVolatilityShiftDetector(),
		pressures.NewMomentumDetector(),
	}
}

// ProvideTickCollector creates the tick collector use case.
func ProvideTickCollector(
	stream repository.MarketStream,
	bars repository.BarStore,
	ingest *pkgmetrics.Recorder,
	l *applogger.Logger,
) *usecase.TickCollector {
	return usecase.NewTickCollector(stream, bars, ingest, l)
}

// ProvideKafkaTickHandler registers the tick ingest handler.
func ProvideKafkaTickHandler(cfg *config.Config, collector *usecase.TickCollector) *usecase.KafkaTickHandler {
	return usecase.NewKafkaTickHandler(cfg.Kafka.Consumer.TickTopic, collector)
}

// ProvideRiskPipeline creates the risk pipeline use case.
func ProvideRiskPipeline(
	bars repository.BarStore,
	detectors []domsvc.PressureDetector,
	states repository.StateStore,
	publisher repository.GatePublisher,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.RiskPipeline {
	opts := []usecase.PipelineOption{}
	if cfg.Pipeline.Lookback > 0 {
		opts = append(opts, usecase.WithLookback(cfg.Pipeline.Lookback))
	}
	if cfg.Pipeline.Timeframe != "" {
		opts = append(opts, usecase.WithTimeframe(repository.Timeframe(cfg.Pipeline.Timeframe)))
	}
	return usecase.NewRiskPipeline(bars, detectors, states, publisher, metrics, l, opts...)
}

// ProvideScheduler creates the periodic pipeline scheduler.
func ProvideScheduler(pipeline *usecase.RiskPipeline, cfg *config.Config, l *applogger.Logger) *usecase.Scheduler {
	return usecase.NewScheduler(pipeline, cfg.Pipeline.Symbols, cfg.Pipeline.Interval, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.TickCollector,
	scheduler *usecase.Scheduler,
	pipeline *usecase.RiskPipeline,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTickHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	bars repository.BarStore,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, l, collector, scheduler, pipeline, consumer, kh, chClient, producer)
	app.SetBarStore(bars)
	return app
}
