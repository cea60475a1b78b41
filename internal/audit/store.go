package audit

import (
	"context"
	"time"

	id "fleetdesk/pkg/domain"
)

// Store persists compliance audit entries. Append-only: there is no update
// or delete surface, here or in SQL.
type Store interface {
	// Append writes the entry and, on outbox-backed implementations, queues
	// it for publication in the same transaction.
	Append(ctx context.Context, entry *Entry) error

	// ListByDriver returns entries for one driver, most recent first,
	// org-scoped. before narrows to entries evaluated strictly earlier.
	ListByDriver(ctx context.Context, orgID id.OrgID, driverID id.DriverID, limit int, before *time.Time) ([]*Entry, error)
}

// OutboxStore is the worker-facing side of the outbox table.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*OutboxRecord, error)
	MarkPublished(ctx context.Context, ids []int64, publishedAt time.Time) error
}
