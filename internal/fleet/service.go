package fleet

import (
	"context"
	"errors"

	"github.com/google/uuid"

	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
	"fleetdesk/pkg/platform/sentinel"
	"fleetdesk/pkg/requestcontext"
)

// Service exposes the minimal driver and license category directory the
// compliance engine depends on.
type Service struct {
	drivers    DriverStore
	categories CategoryStore
}

func New(drivers DriverStore, categories CategoryStore) *Service {
	return &Service{drivers: drivers, categories: categories}
}

// CreateDriver registers a driver, validating its license category reference.
func (s *Service) CreateDriver(ctx context.Context, orgID id.OrgID, fullName string, categoryID *id.LicenseCategoryID) (*Driver, error) {
	if categoryID != nil {
		if _, err := s.categories.GetByID(ctx, orgID, *categoryID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "license category does not exist for this organization")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up license category")
		}
	}

	driver, err := NewDriver(id.DriverID(uuid.New()), orgID, fullName, categoryID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.drivers.Create(ctx, driver); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create driver")
	}
	return driver, nil
}

// GetDriver returns one driver, org-scoped.
func (s *Service) GetDriver(ctx context.Context, orgID id.OrgID, driverID id.DriverID) (*Driver, error) {
	driver, err := s.drivers.GetByID(ctx, orgID, driverID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "driver not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "driver store failure")
	}
	return driver, nil
}

// ListDrivers returns the org's drivers, newest first.
func (s *Service) ListDrivers(ctx context.Context, orgID id.OrgID) ([]*Driver, error) {
	drivers, err := s.drivers.List(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list drivers")
	}
	return drivers, nil
}

// CreateCategory registers a license category for the organization.
func (s *Service) CreateCategory(ctx context.Context, orgID id.OrgID, code, label string) (*LicenseCategory, error) {
	category, err := NewLicenseCategory(id.LicenseCategoryID(uuid.New()), orgID, code, label, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "license category code must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create license category")
	}
	return category, nil
}

// ListCategories returns the org's license categories ordered by code.
func (s *Service) ListCategories(ctx context.Context, orgID id.OrgID) ([]*LicenseCategory, error) {
	categories, err := s.categories.List(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list license categories")
	}
	return categories, nil
}

// CategoryExists implements the rule resolver's CategoryDirectory port.
func (s *Service) CategoryExists(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) (bool, error) {
	_, err := s.categories.GetByID(ctx, orgID, categoryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
