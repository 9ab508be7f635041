// Package publisher fans appended audit events out to downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"gdprkv/internal/audit/models"
)

// Producer is the transport the publisher writes to.
type Producer interface {
	Produce(ctx context.Context, key, value []byte) error
}

// Kafka publishes each event as JSON keyed by subject ID, so one subject's
// events land on one partition in chain order.
type Kafka struct {
	producer Producer
}

func NewKafka(producer Producer) *Kafka {
	return &Kafka{producer: producer}
}

func (k *Kafka) Publish(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return k.producer.Produce(ctx, []byte(event.SubjectID), payload)
}
