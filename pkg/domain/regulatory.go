package domain

import (
	"strings"

	dErrors "fleetdesk/pkg/domain-errors"
)

// RegulatoryCategory splits the fleet into the two working-time regimes.
// This is a domain primitive enforced at parse time.
type RegulatoryCategory string

const (
	// RegulatoryLight covers passenger cars. Drivers are tracked but the
	// working-time rules never block them.
	RegulatoryLight RegulatoryCategory = "LIGHT"

	// RegulatoryHeavy covers bus/coach class vehicles subject to the RSE
	// driving-time regulation.
	RegulatoryHeavy RegulatoryCategory = "HEAVY"
)

// ParseRegulatoryCategory validates a raw category string.
// Input is case-insensitive; the canonical form is upper-case.
func ParseRegulatoryCategory(raw string) (RegulatoryCategory, error) {
	switch RegulatoryCategory(strings.ToUpper(strings.TrimSpace(raw))) {
	case RegulatoryLight:
		return RegulatoryLight, nil
	case RegulatoryHeavy:
		return RegulatoryHeavy, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "regulatory category must be LIGHT or HEAVY")
	}
}

// IsRegulated reports whether the category is subject to driving-time limits.
func (c RegulatoryCategory) IsRegulated() bool {
	return c == RegulatoryHeavy
}

func (c RegulatoryCategory) String() string {
	return string(c)
}
