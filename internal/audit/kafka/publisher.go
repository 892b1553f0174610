// Package kafka publishes audit events to a Kafka topic so downstream
// compliance tooling can consume the decision trail.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"cointribute/internal/audit"
)

// Publisher implements audit.Publisher on a franz-go client. Records are
// keyed by charity identifier so per-charity ordering survives partitioning.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects to the given brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

type wireEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	CharityID uint64         `json:"charityId"`
	Detail    map[string]any `json:"detail,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// Publish produces one event synchronously.
func (p *Publisher) Publish(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(wireEvent{
		ID:        event.ID.String(),
		Type:      string(event.Type),
		CharityID: event.CharityID,
		Detail:    event.Detail,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(strconv.FormatUint(event.CharityID, 10)),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit record: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
