package audit

import (
	"context"
	"log/slog"
	"time"

	"fleetdesk/internal/audit/metrics"
)

const outboxBatchSize = 100

// EntryPublisher is the worker's view of the Kafka side.
type EntryPublisher interface {
	Publish(ctx context.Context, records []*OutboxRecord) error
}

// Worker drains the audit outbox into Kafka. It polls on an interval,
// publishes pending records in insertion order, and marks them published
// only after the produce acks. A crash between produce and mark yields a
// duplicate record, never a lost one.
type Worker struct {
	outbox    OutboxStore
	publisher EntryPublisher
	interval  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewWorker(outbox OutboxStore, publisher EntryPublisher, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
		metrics:   m,
	}
}

// Run polls until ctx is cancelled. Publish failures are logged and retried
// on the next tick; they never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				if w.metrics != nil {
					w.metrics.IncrementPublishFailure()
				}
				w.logger.ErrorContext(ctx, "audit outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) error {
	records, err := w.outbox.FetchUnpublished(ctx, outboxBatchSize)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if err := w.publisher.Publish(ctx, records); err != nil {
		return err
	}
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	if err := w.outbox.MarkPublished(ctx, ids, time.Now()); err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.IncrementPublished(len(records))
	}
	w.logger.DebugContext(ctx, "audit outbox drained", "published", len(records))
	return nil
}
