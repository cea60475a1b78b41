package counter

import (
	"context"
	"time"

	"fleetdesk/internal/domain"
)

// Store persists driver-day counters. Sentinel errors for infrastructure
// facts; the service layer translates them into coded domain errors.
type Store interface {
	// GetOrCreate returns the counter for key, lazily inserting a zero row
	// the first time a driver-day is touched. Existing rows are never reset.
	GetOrCreate(ctx context.Context, key Key) (*Counter, error)

	// CommitDelta adds delta to the stored counter, but only if the stored
	// values still equal baseline. Returns sentinel.ErrStaleBaseline when a
	// concurrent commit moved the counter first; callers re-read and
	// re-evaluate before retrying.
	CommitDelta(ctx context.Context, key Key, baseline, delta domain.CounterSnapshot, now time.Time) (*Counter, error)
}
