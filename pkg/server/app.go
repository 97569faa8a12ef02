package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RiskGate/internal/domain/repository"
	"RiskGate/internal/handler/api"
	icache "RiskGate/internal/service/cache"
	"RiskGate/internal/usecase"
	pkgch "RiskGate/pkg/clickhouse"
	"RiskGate/pkg/config"
	xhttp "RiskGate/pkg/http"
	pkgkafka "RiskGate/pkg/kafka"
	applogger "RiskGate/pkg/logger"
)

// App encapsulates the entire application lifecycle: tick ingest, the
// periodic risk scheduler, the optional Kafka tick consumer, and the
// HTTP surface.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	collector   *usecase.TickCollector
	scheduler   *usecase.Scheduler
	pipeline    *usecase.RiskPipeline
	consumer    *pkgkafka.Consumer
	kh          *usecase.KafkaTickHandler
	chClient    *pkgch.Client
	producer    *pkgkafka.Producer
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	bars        repository.BarStore
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.TickCollector,
	scheduler *usecase.Scheduler,
	pipeline *usecase.RiskPipeline,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTickHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		scheduler: scheduler,
		pipeline:  pipeline,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		producer:  producer,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetBarStore enables the raw candle endpoint on the default handler.
func (a *App) SetBarStore(b repository.BarStore) { a.bars = b }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	httpHandler := a.httpHandler
	if httpHandler == nil && a.pipeline != nil {
		h := api.NewRiskEchoHandler(l, a.pipeline)
		if a.bars != nil {
			h.SetBarStore(a.bars)
		}
		if a.cfg.Redis.Enabled {
			h.SetCache(icache.NewRedisCache(icache.RedisConfig{
				Addr:     a.cfg.Redis.Addr,
				Password: a.cfg.Redis.Password,
				DB:       a.cfg.Redis.DB,
			}))
		} else {
			h.SetCache(icache.NewTTLCache())
		}
		httpHandler = h
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Aggregate error logs onto the gate topic's sibling when Kafka is up
	if a.producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "riskgate.logs",
			Publisher:      producerPublisher{a.producer},
		})
	}

	// Start tick ingest
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("collector error", applogger.Error(err))
			}
		}()
		l.Info("collector started", applogger.Strings("symbols", a.cfg.Pipeline.Symbols))
	}

	// Start Kafka tick consumer if configured
	if a.consumer != nil && a.kh != nil && a.kh.Topic() != "" {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start the periodic risk scheduler
	if a.scheduler != nil {
		a.scheduler.Start(ctx)
		l.Info("scheduler started",
			applogger.Strings("symbols", a.cfg.Pipeline.Symbols),
			applogger.Duration("interval", a.cfg.Pipeline.Interval),
		)
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	l.RemoveCollector()
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}

// producerPublisher adapts the Kafka producer to the log collector's
// Publisher interface.
type producerPublisher struct {
	p *pkgkafka.Producer
}

func (pp producerPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return pp.p.Publish(ctx, topic, nil, payload)
}
