package counter

import (
	"context"
	"sync"
	"time"

	"fleetdesk/internal/domain"
	"fleetdesk/pkg/platform/sentinel"
)

// InMemoryStore keeps counters in a map for tests and local runs. The single
// mutex gives it the same check-then-add atomicity the SQL store gets from
// its guarded UPDATE.
type InMemoryStore struct {
	mu       sync.Mutex
	counters map[Key]*Counter
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{counters: make(map[Key]*Counter)}
}

func (s *InMemoryStore) GetOrCreate(_ context.Context, key Key) (*Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[key]
	if !ok {
		c = &Counter{Key: key}
		s.counters[key] = c
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) CommitDelta(_ context.Context, key Key, baseline, delta domain.CounterSnapshot, now time.Time) (*Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[key]
	if !ok || c.Snapshot != baseline {
		return nil, sentinel.ErrStaleBaseline
	}
	c.Snapshot.DrivingMinutes += delta.DrivingMinutes
	c.Snapshot.AmplitudeMinutes += delta.AmplitudeMinutes
	c.Snapshot.BreakMinutes += delta.BreakMinutes
	c.Snapshot.RestMinutes += delta.RestMinutes
	c.UpdatedAt = now
	cp := *c
	return &cp, nil
}
