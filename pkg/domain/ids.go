package domain

import (
	"github.com/google/uuid"

	dErrors "fleetdesk/pkg/domain-errors"
)

// Typed UUID wrappers for every aggregate identity in the system.
//
// Distinct types prevent cross-aggregate assignment at compile time: an
// OrgID can never be passed where a DriverID is expected. All parsing goes
// through parseID so trust-boundary validation stays in one place.
type (
	// OrgID identifies a tenant organization. Every store read and write is
	// scoped by it.
	OrgID uuid.UUID

	// DriverID identifies a driver within an organization.
	DriverID uuid.UUID

	// LicenseCategoryID identifies a driving license category (B, C, D, ...)
	// configured by an organization.
	LicenseCategoryID uuid.UUID

	// VehicleCategoryID identifies a vehicle category (sedan, van, coach...).
	VehicleCategoryID uuid.UUID

	// RuleID identifies an organization license rule row.
	RuleID uuid.UUID

	// QuoteID identifies the quote that triggered an evaluation.
	QuoteID uuid.UUID

	// MissionID identifies the mission spawned from an accepted quote.
	MissionID uuid.UUID

	// AuditEntryID identifies a compliance audit log entry.
	AuditEntryID uuid.UUID
)

// maxIDLength bounds raw input before UUID parsing. A canonical UUID string
// is 36 characters; anything materially longer is rejected up front.
const maxIDLength = 64

// parseID enforces the shared ID invariant: valid, non-empty, non-nil UUID.
func parseID(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	if len(raw) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is malformed")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is malformed")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseOrgID validates and returns an OrgID.
func ParseOrgID(raw string) (OrgID, error) {
	parsed, err := parseID(raw, "organization id")
	return OrgID(parsed), err
}

// ParseDriverID validates and returns a DriverID.
func ParseDriverID(raw string) (DriverID, error) {
	parsed, err := parseID(raw, "driver id")
	return DriverID(parsed), err
}

// ParseLicenseCategoryID validates and returns a LicenseCategoryID.
func ParseLicenseCategoryID(raw string) (LicenseCategoryID, error) {
	parsed, err := parseID(raw, "license category id")
	return LicenseCategoryID(parsed), err
}

// ParseVehicleCategoryID validates and returns a VehicleCategoryID.
func ParseVehicleCategoryID(raw string) (VehicleCategoryID, error) {
	parsed, err := parseID(raw, "vehicle category id")
	return VehicleCategoryID(parsed), err
}

// ParseRuleID validates and returns a RuleID.
func ParseRuleID(raw string) (RuleID, error) {
	parsed, err := parseID(raw, "rule id")
	return RuleID(parsed), err
}

// ParseQuoteID validates and returns a QuoteID.
func ParseQuoteID(raw string) (QuoteID, error) {
	parsed, err := parseID(raw, "quote id")
	return QuoteID(parsed), err
}

// ParseMissionID validates and returns a MissionID.
func ParseMissionID(raw string) (MissionID, error) {
	parsed, err := parseID(raw, "mission id")
	return MissionID(parsed), err
}

func (id OrgID) String() string             { return uuid.UUID(id).String() }
func (id DriverID) String() string          { return uuid.UUID(id).String() }
func (id LicenseCategoryID) String() string { return uuid.UUID(id).String() }
func (id VehicleCategoryID) String() string { return uuid.UUID(id).String() }
func (id RuleID) String() string            { return uuid.UUID(id).String() }
func (id QuoteID) String() string           { return uuid.UUID(id).String() }
func (id MissionID) String() string         { return uuid.UUID(id).String() }
func (id AuditEntryID) String() string      { return uuid.UUID(id).String() }

func (id OrgID) IsNil() bool             { return uuid.UUID(id) == uuid.Nil }
func (id DriverID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id LicenseCategoryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id VehicleCategoryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RuleID) IsNil() bool            { return uuid.UUID(id) == uuid.Nil }
func (id QuoteID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id MissionID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id AuditEntryID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
