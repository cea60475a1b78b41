package fleet

import (
	"context"

	id "fleetdesk/pkg/domain"
)

// DriverStore persists drivers. Sentinel errors for infrastructure facts.
type DriverStore interface {
	Create(ctx context.Context, driver *Driver) error
	GetByID(ctx context.Context, orgID id.OrgID, driverID id.DriverID) (*Driver, error)
	List(ctx context.Context, orgID id.OrgID) ([]*Driver, error)
}

// CategoryStore persists license categories.
type CategoryStore interface {
	// Create inserts a category. Returns sentinel.ErrConflict when the org
	// already has a category with the same code.
	Create(ctx context.Context, category *LicenseCategory) error
	GetByID(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) (*LicenseCategory, error)
	List(ctx context.Context, orgID id.OrgID) ([]*LicenseCategory, error)
}
