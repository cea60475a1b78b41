package rules

import (
	"context"

	id "fleetdesk/pkg/domain"
)

// Store persists organization license rules. Implementations return sentinel
// errors for infrastructure facts; the service translates them into coded
// domain errors.
type Store interface {
	// Create inserts a rule. Returns sentinel.ErrConflict when the
	// (organization, license category) pair already has a rule.
	Create(ctx context.Context, rule *LicenseRule) error

	// GetByID returns the rule or sentinel.ErrNotFound. Org-scoped.
	GetByID(ctx context.Context, orgID id.OrgID, ruleID id.RuleID) (*LicenseRule, error)

	// FindByCategory returns the org's rule for a license category or
	// sentinel.ErrNotFound when none is configured.
	FindByCategory(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) (*LicenseRule, error)

	// List returns all rules for the organization, newest first.
	List(ctx context.Context, orgID id.OrgID) ([]*LicenseRule, error)

	// Update persists changed limits. Returns sentinel.ErrNotFound when the
	// rule does not exist for the organization.
	Update(ctx context.Context, rule *LicenseRule) error

	// Delete removes a rule. Returns sentinel.ErrNotFound when absent.
	Delete(ctx context.Context, orgID id.OrgID, ruleID id.RuleID) error
}

// CategoryDirectory answers whether a license category exists for an org.
// Implemented by the fleet module; the resolver needs it to distinguish
// "no rule configured, use defaults" from "unknown license category".
type CategoryDirectory interface {
	CategoryExists(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID) (bool, error)
}
