package repository

import (
	"context"
	"time"

	"KisTrader/internal/domain/models"
	"KisTrader/internal/domain/repository"
	pkgkafka "KisTrader/pkg/kafka"
)

// KafkaOrderEvents publishes submitted-order events to Kafka, keyed by
// symbol so per-symbol ordering is preserved.
type KafkaOrderEvents struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaOrderEvents creates a Kafka-backed order event publisher.
func NewKafkaOrderEvents(producer *pkgkafka.Producer, topic string) repository.OrderEventPublisher {
	return &KafkaOrderEvents{producer: producer, topic: topic}
}

func (p *KafkaOrderEvents) Publish(ctx context.Context, r models.OrderResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Symbol), map[string]any{
		"symbol":     r.Symbol,
		"order_type": r.OrderType,
		"qty":        r.Qty,
		"price":      r.Price,
		"ts":         time.Now().Unix(),
	})
}

func (p *KafkaOrderEvents) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
