package usecase

import (
	"context"
	"sync"
	"time"

	"RiskGate/internal/domain/models"
	drepo "RiskGate/internal/domain/repository"
	applogger "RiskGate/pkg/logger"
	pkgmetrics "RiskGate/pkg/metrics"
)

// TickCollector consumes a live tick stream and aggregates it into 1m
// candles for the bar store. Ingest is an external collaborator of the
// analytical core: losing it degrades feature freshness, nothing else.
type TickCollector struct {
	stream  drepo.MarketStream
	bars    drepo.BarStore
	metrics *pkgmetrics.Recorder
	logger  *applogger.Logger

	mu      sync.Mutex
	current map[string]*models.Candle
}

func NewTickCollector(stream drepo.MarketStream, bars drepo.BarStore, metrics *pkgmetrics.Recorder, logger *applogger.Logger) *TickCollector {
	return &TickCollector{
		stream:  stream,
		bars:    bars,
		metrics: metrics,
		logger:  logger,
		current: make(map[string]*models.Candle),
	}
}

// IsConnected returns true if the market stream is connected.
func (c *TickCollector) IsConnected() bool { return c.stream.IsConnected() }

func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	go c.flushLoop(ctx)
	return nil
}

const streamReconnectBackoff = 5 * time.Second

func (c *TickCollector) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
				c.logger.Warn("stream error", applogger.Error(err))
			}
		case t, ok := <-tickCh:
			if !ok {
				// The stream's read loop exited and closed its channels.
				// Reconnect and resume on the fresh channel pair.
				tickCh, errCh = c.reopen(ctx)
				if tickCh == nil {
					return
				}
				continue
			}
			if t == nil {
				continue
			}
			c.ingest(t)
			c.metrics.RecordTick(t.Symbol, t.Price)
		}
	}
}

// reopen re-establishes the stream after its channels close, retrying until
// the context ends. Nil channels are returned only on cancellation.
func (c *TickCollector) reopen(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	for {
		if ctx.Err() != nil {
			return nil, nil
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("stream")
			c.logger.Warn("stream reconnect failed", applogger.Error(err))
			select {
			case <-ctx.Done():
				return nil, nil
			case <-time.After(streamReconnectBackoff):
			}
			continue
		}
		return c.stream.Read(ctx)
	}
}

// ingest folds a tick into the open 1m candle for its symbol. A tick in a
// newer bucket closes the previous candle, which flushLoop will persist.
// Ticks older than the open bucket are dropped: their candle is closed.
func (c *TickCollector) ingest(t *models.Tick) {
	bucket := t.At.UTC().Truncate(time.Minute)

	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.current[t.Symbol]
	if !ok || cur.Bucket.Before(bucket) {
		if ok {
			c.persist(*cur)
		}
		c.current[t.Symbol] = &models.Candle{
			Bucket: bucket,
			Symbol: t.Symbol,
			Open:   t.Price,
			High:   t.Price,
			Low:    t.Price,
			Close:  t.Price,
			Volume: t.Volume,
		}
		return
	}
	if bucket.Before(cur.Bucket) {
		return
	}
	if t.Price > cur.High {
		cur.High = t.Price
	}
	if t.Price < cur.Low {
		cur.Low = t.Price
	}
	cur.Close = t.Price
	cur.Volume += t.Volume
}

// flushLoop persists candles whose bucket has closed even when no newer
// tick has arrived for the symbol.
func (c *TickCollector) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.flushAll()
			return
		case now := <-ticker.C:
			cutoff := now.UTC().Truncate(time.Minute)
			c.mu.Lock()
			for sym, cur := range c.current {
				if cur.Bucket.Before(cutoff) {
					c.persist(*cur)
					delete(c.current, sym)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *TickCollector) flushAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sym, cur := range c.current {
		c.persist(*cur)
		delete(c.current, sym)
	}
}

// persist writes one closed candle; callers hold c.mu.
func (c *TickCollector) persist(candle models.Candle) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	if err := c.bars.StoreBatch(ctx, []models.Candle{candle}); err != nil {
		c.metrics.RecordError("bar_write")
		c.logger.Error("candle write failed",
			applogger.String("symbol", candle.Symbol), applogger.Error(err))
		return
	}
	c.metrics.RecordCandleFlush(candle.Symbol)
	c.metrics.RecordLatency("candle_write", time.Since(start).Seconds())
}

// Shutdown flushes open candles and closes the stream.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	c.flushAll()
	return c.stream.Close()
}
