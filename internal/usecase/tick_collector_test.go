package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"RiskGate/internal/domain/models"
	pkgmetrics "RiskGate/pkg/metrics"
)

// Prometheus collectors register against the default registry once per
// process, so every test in this package shares a single recorder.
var testRecorder = pkgmetrics.New()

type fakeStream struct {
	mu         sync.Mutex
	connected  bool
	closed     bool
	reconnects int
	ticks      chan *models.Tick
	errs       chan error
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		ticks: make(chan *models.Tick, 16),
		errs:  make(chan error, 1),
	}
}

func (f *fakeStream) Connect(ctx context.Context) error   { f.connected = true; return nil }
func (f *fakeStream) Subscribe(ctx context.Context) error { return nil }
func (f *fakeStream) Close() error                        { f.closed = true; return nil }
func (f *fakeStream) IsConnected() bool                   { return f.connected }

// Reconnect replaces the channel pair the way a real stream does after its
// read loop exits.
func (f *fakeStream) Reconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
	f.ticks = make(chan *models.Tick, 16)
	f.errs = make(chan error, 1)
	return nil
}

func (f *fakeStream) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ticks, f.errs
}

func (f *fakeStream) send(t *models.Tick) {
	f.mu.Lock()
	ch := f.ticks
	f.mu.Unlock()
	ch <- t
}

func (f *fakeStream) closeStream() {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.ticks)
	close(f.errs)
}

func (f *fakeStream) reconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reconnects
}

func tickAt(symbol string, price, volume float64, at time.Time) *models.Tick {
	return &models.Tick{Symbol: symbol, Price: price, Volume: volume, At: at}
}

func TestIngestAggregatesWithinBucket(t *testing.T) {
	bars := &fakeBarStore{}
	c := NewTickCollector(newFakeStream(), bars, testRecorder, testLogger(t))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.ingest(tickAt("BTCUSDT", 100, 1, base.Add(5*time.Second)))
	c.ingest(tickAt("BTCUSDT", 105, 2, base.Add(20*time.Second)))
	c.ingest(tickAt("BTCUSDT", 98, 1, base.Add(40*time.Second)))
	c.ingest(tickAt("BTCUSDT", 101, 1, base.Add(59*time.Second)))

	c.mu.Lock()
	cur := c.current["BTCUSDT"]
	c.mu.Unlock()

	if cur == nil {
		t.Fatalf("no open candle")
	}
	if !cur.Bucket.Equal(base) {
		t.Errorf("bucket = %v, want %v", cur.Bucket, base)
	}
	if cur.Open != 100 || cur.High != 105 || cur.Low != 98 || cur.Close != 101 {
		t.Errorf("ohlc = %v/%v/%v/%v", cur.Open, cur.High, cur.Low, cur.Close)
	}
	if cur.Volume != 5 {
		t.Errorf("volume = %v, want 5", cur.Volume)
	}
	if len(bars.stored) != 0 {
		t.Errorf("open candle must not be persisted yet")
	}
}

func TestIngestBucketRolloverPersistsPrevious(t *testing.T) {
	bars := &fakeBarStore{}
	c := NewTickCollector(newFakeStream(), bars, testRecorder, testLogger(t))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.ingest(tickAt("BTCUSDT", 100, 1, base.Add(10*time.Second)))
	c.ingest(tickAt("BTCUSDT", 102, 1, base.Add(70*time.Second)))

	if len(bars.stored) != 1 {
		t.Fatalf("stored = %d candles, want 1", len(bars.stored))
	}
	prev := bars.stored[0]
	if !prev.Bucket.Equal(base) || prev.Close != 100 {
		t.Errorf("persisted candle = %+v", prev)
	}

	c.mu.Lock()
	cur := c.current["BTCUSDT"]
	c.mu.Unlock()
	if !cur.Bucket.Equal(base.Add(time.Minute)) || cur.Open != 102 {
		t.Errorf("open candle = %+v", cur)
	}
}

func TestIngestDropsLateTicks(t *testing.T) {
	bars := &fakeBarStore{}
	c := NewTickCollector(newFakeStream(), bars, testRecorder, testLogger(t))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.ingest(tickAt("BTCUSDT", 100, 1, base.Add(70*time.Second)))
	c.ingest(tickAt("BTCUSDT", 50, 9, base.Add(10*time.Second)))

	c.mu.Lock()
	cur := c.current["BTCUSDT"]
	c.mu.Unlock()

	if cur.Low != 100 || cur.Close != 100 || cur.Volume != 1 {
		t.Fatalf("late tick mutated the open candle: %+v", cur)
	}
	if len(bars.stored) != 0 {
		t.Errorf("late tick must not trigger a flush")
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestConsumeResumesAfterStreamClose(t *testing.T) {
	bars := &fakeBarStore{}
	stream := newFakeStream()
	c := NewTickCollector(stream, bars, testRecorder, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tickCh, errCh := stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	closeAt := func(want float64) func() bool {
		return func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			cur := c.current["BTCUSDT"]
			return cur != nil && cur.Close == want
		}
	}

	stream.send(tickAt("BTCUSDT", 100, 1, base))
	waitFor(t, "first tick", closeAt(100))

	// Closed channels mean the stream's read loop died; consume must
	// reconnect and keep ingesting from the replacement channels.
	stream.closeStream()
	waitFor(t, "reconnect", func() bool { return stream.reconnectCount() >= 1 })

	stream.send(tickAt("BTCUSDT", 105, 1, base.Add(10*time.Second)))
	waitFor(t, "post-reconnect tick", closeAt(105))
}

func TestIngestTracksSymbolsIndependently(t *testing.T) {
	bars := &fakeBarStore{}
	c := NewTickCollector(newFakeStream(), bars, testRecorder, testLogger(t))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.ingest(tickAt("BTCUSDT", 100, 1, base))
	c.ingest(tickAt("ETHUSDT", 10, 1, base))

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.current) != 2 {
		t.Fatalf("open candles = %d, want 2", len(c.current))
	}
	if c.current["BTCUSDT"].Open != 100 || c.current["ETHUSDT"].Open != 10 {
		t.Errorf("symbols mixed: %+v", c.current)
	}
}

func TestShutdownFlushesOpenCandles(t *testing.T) {
	bars := &fakeBarStore{}
	stream := newFakeStream()
	c := NewTickCollector(stream, bars, testRecorder, testLogger(t))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.ingest(tickAt("BTCUSDT", 100, 1, base))

	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if len(bars.stored) != 1 {
		t.Fatalf("stored = %d candles, want 1", len(bars.stored))
	}
	if !stream.closed {
		t.Errorf("stream not closed")
	}
}

func TestKafkaTickHandler(t *testing.T) {
	bars := &fakeBarStore{}
	c := NewTickCollector(newFakeStream(), bars, testRecorder, testLogger(t))
	h := NewKafkaTickHandler("riskgate.ticks", c)

	if h.Topic() != "riskgate.ticks" {
		t.Errorf("topic = %q", h.Topic())
	}

	msg := []byte(`{"symbol":"BTCUSDT","price":100.5,"volume":2,"t":1748779230000}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	c.mu.Lock()
	cur := c.current["BTCUSDT"]
	c.mu.Unlock()
	if cur == nil || cur.Close != 100.5 || cur.Volume != 2 {
		t.Fatalf("tick not ingested: %+v", cur)
	}

	if err := h.Handle(context.Background(), []byte(`not json`)); err == nil {
		t.Errorf("malformed payload: expected error")
	}
	if err := h.Handle(context.Background(), []byte(`{"symbol":"","price":1,"t":0}`)); err == nil {
		t.Errorf("missing symbol: expected error")
	}
	if err := h.Handle(context.Background(), []byte(`{"symbol":"BTCUSDT","price":0,"t":0}`)); err == nil {
		t.Errorf("non-positive price: expected error")
	}
}
