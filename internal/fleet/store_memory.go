package fleet

import (
	"context"
	"sort"
	"sync"

	id "fleetdesk/pkg/domain"
	"fleetdesk/pkg/platform/sentinel"
)

// InMemoryDriverStore keeps drivers in a map for tests and local runs.
type InMemoryDriverStore struct {
	mu      sync.RWMutex
	drivers map[id.DriverID]*Driver
}

func NewInMemoryDriverStore() *InMemoryDriverStore {
	return &InMemoryDriverStore{drivers: make(map[id.DriverID]*Driver)}
}

func (s *InMemoryDriverStore) Create(_ context.Context, driver *Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *driver
	s.drivers[driver.ID] = &cp
	return nil
}

func (s *InMemoryDriverStore) GetByID(_ context.Context, orgID id.OrgID, driverID id.DriverID) (*Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	driver, ok := s.drivers[driverID]
	if !ok || driver.OrgID != orgID {
		return nil, sentinel.ErrNotFound
	}
	cp := *driver
	return &cp, nil
}

func (s *InMemoryDriverStore) List(_ context.Context, orgID id.OrgID) ([]*Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Driver
	for _, driver := range s.drivers {
		if driver.OrgID == orgID {
			cp := *driver
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// InMemoryCategoryStore keeps license categories in a map.
type InMemoryCategoryStore struct {
	mu         sync.RWMutex
	categories map[id.LicenseCategoryID]*LicenseCategory
}

func NewInMemoryCategoryStore() *InMemoryCategoryStore {
	return &InMemoryCategoryStore{categories: make(map[id.LicenseCategoryID]*LicenseCategory)}
}

func (s *InMemoryCategoryStore) Create(_ context.Context, category *LicenseCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.OrgID == category.OrgID && existing.Code == category.Code {
			return sentinel.ErrConflict
		}
	}
	cp := *category
	s.categories[category.ID] = &cp
	return nil
}

func (s *InMemoryCategoryStore) GetByID(_ context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) (*LicenseCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, ok := s.categories[categoryID]
	if !ok || category.OrgID != orgID {
		return nil, sentinel.ErrNotFound
	}
	cp := *category
	return &cp, nil
}

func (s *InMemoryCategoryStore) List(_ context.Context, orgID id.OrgID) ([]*LicenseCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*LicenseCategory
	for _, category := range s.categories {
		if category.OrgID == orgID {
			cp := *category
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
