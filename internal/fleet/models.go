package fleet

import (
	"strings"
	"time"

	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
)

// LicenseCategory is a driving license class configured by the organization
// (B, C, D, D1...). License rules and drivers reference it.
type LicenseCategory struct {
	ID        id.LicenseCategoryID `json:"id"`
	OrgID     id.OrgID             `json:"organization_id"`
	Code      string               `json:"code"`
	Label     string               `json:"label"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewLicenseCategory validates and constructs a license category.
func NewLicenseCategory(categoryID id.LicenseCategoryID, orgID id.OrgID, code, label string, now time.Time) (*LicenseCategory, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "license category code is required")
	}
	if len(code) > 8 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "license category code must be 8 characters or less")
	}
	return &LicenseCategory{
		ID:        categoryID,
		OrgID:     orgID,
		Code:      code,
		Label:     strings.TrimSpace(label),
		CreatedAt: now,
	}, nil
}

// Driver is the minimal driver record the compliance engine needs: identity,
// org ownership, and the license category the driver holds.
type Driver struct {
	ID                id.DriverID           `json:"id"`
	OrgID             id.OrgID              `json:"organization_id"`
	FullName          string                `json:"full_name"`
	LicenseCategoryID *id.LicenseCategoryID `json:"license_category_id,omitempty"`
	Active            bool                  `json:"active"`
	CreatedAt         time.Time             `json:"created_at"`
}

// NewDriver validates and constructs a driver.
func NewDriver(driverID id.DriverID, orgID id.OrgID, fullName string, categoryID *id.LicenseCategoryID, now time.Time) (*Driver, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "driver full name is required")
	}
	if len(fullName) > 128 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "driver full name must be 128 characters or less")
	}
	return &Driver{
		ID:                driverID,
		OrgID:             orgID,
		FullName:          fullName,
		LicenseCategoryID: categoryID,
		Active:            true,
		CreatedAt:         now,
	}, nil
}
