package handler

import (
	"time"

	"fleetdesk/internal/rules"
)

// RuleResponse is the HTTP representation of an organization license rule.
type RuleResponse struct {
	ID                          string    `json:"id"`
	LicenseCategoryID           string    `json:"licenseCategoryId"`
	MaxDailyDrivingHours        float64   `json:"maxDailyDrivingHours"`
	MaxDailyAmplitudeHours      float64   `json:"maxDailyAmplitudeHours"`
	BreakMinutesPerDrivingBlock int       `json:"breakMinutesPerDrivingBlock"`
	DrivingBlockHoursForBreak   float64   `json:"drivingBlockHoursForBreak"`
	CappedAverageSpeedKmh       *float64  `json:"cappedAverageSpeedKmh,omitempty"`
	CreatedAt                   time.Time `json:"createdAt"`
	UpdatedAt                   time.Time `json:"updatedAt"`
}

// FromRule converts a rule entity to its HTTP representation.
func FromRule(rule *rules.LicenseRule) *RuleResponse {
	return &RuleResponse{
		ID:                          rule.ID.String(),
		LicenseCategoryID:           rule.LicenseCategoryID.String(),
		MaxDailyDrivingHours:        rule.MaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      rule.MaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: rule.BreakMinutesPerDrivingBlock,
		DrivingBlockHoursForBreak:   rule.DrivingBlockHoursForBreak,
		CappedAverageSpeedKmh:       rule.CappedAverageSpeedKmh,
		CreatedAt:                   rule.CreatedAt,
		UpdatedAt:                   rule.UpdatedAt,
	}
}

// FromRules converts a rule list, never returning null.
func FromRules(list []*rules.LicenseRule) []*RuleResponse {
	out := make([]*RuleResponse, 0, len(list))
	for _, rule := range list {
		out = append(out, FromRule(rule))
	}
	return out
}
