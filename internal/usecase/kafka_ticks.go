package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"RiskGate/internal/domain/models"
	pkgkafka "RiskGate/pkg/kafka"
)

// KafkaTickHandler folds ticks arriving on a Kafka topic into the same
// candle aggregation as the live WebSocket stream. It lets bar ingest run
// off a replayed or bridged feed when no direct market connection exists.
type KafkaTickHandler struct {
	topic     string
	collector *TickCollector
}

func NewKafkaTickHandler(topic string, collector *TickCollector) *KafkaTickHandler {
	return &KafkaTickHandler{topic: topic, collector: collector}
}

func (h *KafkaTickHandler) Topic() string { return h.topic }

type tickPayload struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	T      int64   `json:"t"` // ms
}

func (h *KafkaTickHandler) Handle(ctx context.Context, data []byte) error {
	var p tickPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode tick: %w", err)
	}
	if p.Symbol == "" || p.Price <= 0 {
		return fmt.Errorf("invalid tick: symbol=%q price=%v", p.Symbol, p.Price)
	}
	t := &models.Tick{
		Symbol: p.Symbol,
		Price:  p.Price,
		Volume: p.Volume,
		At:     time.UnixMilli(p.T).UTC(),
	}
	h.collector.ingest(t)
	h.collector.metrics.RecordTick(t.Symbol, t.Price)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTickHandler)(nil)
