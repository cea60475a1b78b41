package domain

// RuleSource records where a resolved rule set came from, so audit entries
// can show whether an org override or the regulatory fallback was applied.
type RuleSource string

const (
	// RuleSourceOrganization marks rules configured by the org for a
	// specific license category.
	RuleSourceOrganization RuleSource = "organization"

	// RuleSourceRegulatoryDefault marks the hard-coded regulatory fallback
	// applied when no org rule exists for a HEAVY category.
	RuleSourceRegulatoryDefault RuleSource = "regulatory_default"
)

// RuleSet is the resolved set of working-time limits applied to one
// evaluation. A nil *RuleSet means "no limits apply" (LIGHT regime) and
// callers must treat it as always compliant.
type RuleSet struct {
	MaxDailyDrivingHours        float64    `json:"max_daily_driving_hours"`
	MaxDailyAmplitudeHours      float64    `json:"max_daily_amplitude_hours"`
	BreakMinutesPerDrivingBlock int        `json:"break_minutes_per_driving_block"`
	DrivingBlockHoursForBreak   float64    `json:"driving_block_hours_for_break"`
	CappedAverageSpeedKmh       *float64   `json:"capped_average_speed_kmh,omitempty"`
	Source                      RuleSource `json:"source"`
}

// Regulatory defaults for the HEAVY regime. Single source of truth - every
// fallback path goes through DefaultHeavyRuleSet, never inline literals.
const (
	DefaultHeavyMaxDailyDrivingHours      = 10.0
	DefaultHeavyMaxDailyAmplitudeHours    = 14.0
	DefaultHeavyBreakMinutesPerBlock      = 45
	DefaultHeavyDrivingBlockHoursForBreak = 4.5
)

// DefaultHeavyRuleSet returns the regulatory default limits applied to HEAVY
// vehicles when the organization has not configured a license rule.
func DefaultHeavyRuleSet() *RuleSet {
	return &RuleSet{
		MaxDailyDrivingHours:        DefaultHeavyMaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      DefaultHeavyMaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: DefaultHeavyBreakMinutesPerBlock,
		DrivingBlockHoursForBreak:   DefaultHeavyDrivingBlockHoursForBreak,
		Source:                      RuleSourceRegulatoryDefault,
	}
}

// MaxDailyDrivingMinutes converts the driving limit to minutes.
func (r *RuleSet) MaxDailyDrivingMinutes() int {
	return int(r.MaxDailyDrivingHours * 60)
}

// MaxDailyAmplitudeMinutes converts the amplitude limit to minutes.
func (r *RuleSet) MaxDailyAmplitudeMinutes() int {
	return int(r.MaxDailyAmplitudeHours * 60)
}

// DrivingBlockMinutes converts the continuous-driving block length to minutes.
func (r *RuleSet) DrivingBlockMinutes() int {
	return int(r.DrivingBlockHoursForBreak * 60)
}
