package rules

import (
	"context"
	"sort"
	"sync"

	id "fleetdesk/pkg/domain"
	"fleetdesk/pkg/platform/sentinel"
)

// InMemoryStore keeps license rules in a map. Used by unit tests and local
// development; PostgresStore is the production implementation.
type InMemoryStore struct {
	mu    sync.RWMutex
	rules map[id.RuleID]*LicenseRule
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rules: make(map[id.RuleID]*LicenseRule)}
}

func (s *InMemoryStore) Create(_ context.Context, rule *LicenseRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.rules {
		if existing.OrgID == rule.OrgID && existing.LicenseCategoryID == rule.LicenseCategoryID {
			return sentinel.ErrConflict
		}
	}
	cp := *rule
	s.rules[rule.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, orgID id.OrgID, ruleID id.RuleID) (*LicenseRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[ruleID]
	if !ok || rule.OrgID != orgID {
		return nil, sentinel.ErrNotFound
	}
	cp := *rule
	return &cp, nil
}

func (s *InMemoryStore) FindByCategory(_ context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) (*LicenseRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.rules {
		if rule.OrgID == orgID && rule.LicenseCategoryID == categoryID {
			cp := *rule
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context, orgID id.OrgID) ([]*LicenseRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*LicenseRule
	for _, rule := range s.rules {
		if rule.OrgID == orgID {
			cp := *rule
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, rule *LicenseRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rules[rule.ID]
	if !ok || existing.OrgID != rule.OrgID {
		return sentinel.ErrNotFound
	}
	cp := *rule
	s.rules[rule.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, orgID id.OrgID, ruleID id.RuleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rules[ruleID]
	if !ok || existing.OrgID != orgID {
		return sentinel.ErrNotFound
	}
	delete(s.rules, ruleID)
	return nil
}
