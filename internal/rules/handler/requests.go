package handler

import (
	"strings"

	"fleetdesk/internal/rules"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
)

// RuleRequest is the HTTP request body for POST /rules and PUT /rules/{id}.
// The license category is ignored on update; a rule never changes category.
type RuleRequest struct {
	LicenseCategoryID           string   `json:"licenseCategoryId,omitempty"`
	MaxDailyDrivingHours        float64  `json:"maxDailyDrivingHours"`
	MaxDailyAmplitudeHours      float64  `json:"maxDailyAmplitudeHours"`
	BreakMinutesPerDrivingBlock int      `json:"breakMinutesPerDrivingBlock"`
	DrivingBlockHoursForBreak   float64  `json:"drivingBlockHoursForBreak"`
	CappedAverageSpeedKmh       *float64 `json:"cappedAverageSpeedKmh,omitempty"`

	parsedCategoryID id.LicenseCategoryID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RuleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if raw := strings.TrimSpace(r.LicenseCategoryID); raw != "" {
		categoryID, err := id.ParseLicenseCategoryID(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "licenseCategoryId must be a valid UUID")
		}
		r.parsedCategoryID = categoryID
	}
	// Limit positivity is the domain's invariant; rules.Limits validates it
	// at construction so the rule entity stays the single source of truth.
	return nil
}

// ParsedCategoryID returns the validated license category ID, nil UUID when
// the request did not carry one.
func (r *RuleRequest) ParsedCategoryID() id.LicenseCategoryID {
	return r.parsedCategoryID
}

// Limits converts the body to the domain limits value.
func (r *RuleRequest) Limits() rules.Limits {
	return rules.Limits{
		MaxDailyDrivingHours:        r.MaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      r.MaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: r.BreakMinutesPerDrivingBlock,
		DrivingBlockHoursForBreak:   r.DrivingBlockHoursForBreak,
		CappedAverageSpeedKmh:       r.CappedAverageSpeedKmh,
	}
}
