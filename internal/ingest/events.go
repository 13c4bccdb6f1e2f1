package ingest

import (
	"context"

	"github.com/Akash-RK/federal-register-rag/pkg/kafka"
)

// KafkaEvents publishes DayIngested events to the configured topic, keyed
// by date so one day's events land on one partition.
type KafkaEvents struct {
	producer *kafka.Producer
}

func NewKafkaEvents(producer *kafka.Producer) *KafkaEvents {
	return &KafkaEvents{producer: producer}
}

func (k *KafkaEvents) Publish(ctx context.Context, event DayIngested) error {
	return k.producer.Publish(ctx, kafka.Event{Key: event.Date, Value: event})
}
