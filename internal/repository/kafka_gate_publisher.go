package repository

import (
	"context"

	"RiskGate/internal/domain/models"
	domrepo "RiskGate/internal/domain/repository"
	pkgkafka "RiskGate/pkg/kafka"
)

// KafkaGatePublisher publishes behavior gates to a Kafka topic, keyed by
// the originating risk-state id so downstream consumers can partition by
// symbol lineage.
type KafkaGatePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaGatePublisher(producer *pkgkafka.Producer, topic string) *KafkaGatePublisher {
	return &KafkaGatePublisher{producer: producer, topic: topic}
}

func (p *KafkaGatePublisher) Publish(ctx context.Context, gate models.BehaviorGate) error {
	return p.producer.Publish(ctx, p.topic, []byte(gate.RiskStateID), gate)
}

func (p *KafkaGatePublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.GatePublisher = (*KafkaGatePublisher)(nil)
