package rules

import (
	"time"

	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
)

// LicenseRule is an organization's working-time limit override for one
// license category.
//
// Invariants:
//   - All numeric limits are strictly positive
//   - The optional speed cap, when set, is strictly positive
//   - At most one rule per (organization, license category)
//   - Rules only ever apply to the HEAVY regime; LIGHT has no limits
type LicenseRule struct {
	ID                          id.RuleID            `json:"id"`
	OrgID                       id.OrgID             `json:"organization_id"`
	LicenseCategoryID           id.LicenseCategoryID `json:"license_category_id"`
	MaxDailyDrivingHours        float64              `json:"max_daily_driving_hours"`
	MaxDailyAmplitudeHours      float64              `json:"max_daily_amplitude_hours"`
	BreakMinutesPerDrivingBlock int                  `json:"break_minutes_per_driving_block"`
	DrivingBlockHoursForBreak   float64              `json:"driving_block_hours_for_break"`
	CappedAverageSpeedKmh       *float64             `json:"capped_average_speed_kmh,omitempty"`
	CreatedAt                   time.Time            `json:"created_at"`
	UpdatedAt                   time.Time            `json:"updated_at"`
}

// Limits carries the numeric fields of a rule through construction and
// updates so validation stays in one place.
type Limits struct {
	MaxDailyDrivingHours        float64
	MaxDailyAmplitudeHours      float64
	BreakMinutesPerDrivingBlock int
	DrivingBlockHoursForBreak   float64
	CappedAverageSpeedKmh       *float64
}

func (l Limits) validate() error {
	if l.MaxDailyDrivingHours <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "max daily driving hours must be strictly positive")
	}
	if l.MaxDailyAmplitudeHours <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "max daily amplitude hours must be strictly positive")
	}
	if l.BreakMinutesPerDrivingBlock <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "break minutes per driving block must be strictly positive")
	}
	if l.DrivingBlockHoursForBreak <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "driving block hours for break must be strictly positive")
	}
	if l.CappedAverageSpeedKmh != nil && *l.CappedAverageSpeedKmh <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "capped average speed must be strictly positive when set")
	}
	return nil
}

// NewLicenseRule validates and constructs an org rule.
func NewLicenseRule(ruleID id.RuleID, orgID id.OrgID, categoryID id.LicenseCategoryID, limits Limits, now time.Time) (*LicenseRule, error) {
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "organization id is required")
	}
	if categoryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "license category id is required")
	}
	if err := limits.validate(); err != nil {
		return nil, err
	}
	return &LicenseRule{
		ID:                          ruleID,
		OrgID:                       orgID,
		LicenseCategoryID:           categoryID,
		MaxDailyDrivingHours:        limits.MaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      limits.MaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: limits.BreakMinutesPerDrivingBlock,
		DrivingBlockHoursForBreak:   limits.DrivingBlockHoursForBreak,
		CappedAverageSpeedKmh:       limits.CappedAverageSpeedKmh,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}, nil
}

// ApplyLimits validates and applies new limits to an existing rule.
func (r *LicenseRule) ApplyLimits(limits Limits, now time.Time) error {
	if err := limits.validate(); err != nil {
		return err
	}
	r.MaxDailyDrivingHours = limits.MaxDailyDrivingHours
	r.MaxDailyAmplitudeHours = limits.MaxDailyAmplitudeHours
	r.BreakMinutesPerDrivingBlock = limits.BreakMinutesPerDrivingBlock
	r.DrivingBlockHoursForBreak = limits.DrivingBlockHoursForBreak
	r.CappedAverageSpeedKmh = limits.CappedAverageSpeedKmh
	r.UpdatedAt = now
	return nil
}

// RuleSet converts the org rule into the resolved form the evaluator
// consumes.
func (r *LicenseRule) RuleSet() *domain.RuleSet {
	return &domain.RuleSet{
		MaxDailyDrivingHours:        r.MaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      r.MaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: r.BreakMinutesPerDrivingBlock,
		DrivingBlockHoursForBreak:   r.DrivingBlockHoursForBreak,
		CappedAverageSpeedKmh:       r.CappedAverageSpeedKmh,
		Source:                      domain.RuleSourceOrganization,
	}
}
