package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher delivers audit entries to Kafka. One record per outbox row,
// keyed by entry ID so a topic consumer sees per-entry ordering.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects a franz-go producer to the given brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Publish produces the records synchronously. All-or-nothing from the
// worker's perspective: on any per-record error the whole batch is retried
// on the next poll, which is safe because consumers dedupe on entry ID.
func (p *Publisher) Publish(ctx context.Context, records []*OutboxRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := make([]*kgo.Record, 0, len(records))
	for _, rec := range records {
		batch = append(batch, &kgo.Record{
			Topic: p.topic,
			Key:   []byte(uuid.UUID(rec.EntryID).String()),
			Value: rec.Payload,
		})
	}
	results := p.client.ProduceSync(ctx, batch...)
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("produce audit records: %w", err)
	}
	return nil
}

// Close flushes and shuts down the underlying client.
func (p *Publisher) Close() {
	p.client.Close()
}
