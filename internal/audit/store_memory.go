package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	id "fleetdesk/pkg/domain"
)

// InMemoryStore keeps audit entries in a slice for tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *InMemoryStore) ListByDriver(_ context.Context, orgID id.OrgID, driverID id.DriverID, limit int, before *time.Time) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Entry
	for _, entry := range s.entries {
		if entry.OrgID != orgID || entry.DriverID != driverID {
			continue
		}
		if before != nil && !entry.EvaluatedAt.Before(*before) {
			continue
		}
		cp := *entry
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EvaluatedAt.After(out[j].EvaluatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports how many entries have been appended, across all orgs.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
