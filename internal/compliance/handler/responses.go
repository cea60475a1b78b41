package handler

import (
	"fleetdesk/internal/compliance"
	"fleetdesk/internal/domain"
)

// ValidateResponse is the HTTP response for POST /compliance/validate.
type ValidateResponse struct {
	IsCompliant       bool                      `json:"isCompliant"`
	Decision          string                    `json:"decision"`
	Violations        []ViolationResponse       `json:"violations"`
	Warnings          []WarningResponse         `json:"warnings"`
	RulesUsed         *RulesResponse            `json:"rulesUsed"`
	AdjustedDurations AdjustedDurationsResponse `json:"adjustedDurations"`
	Summary           SummaryResponse           `json:"summary"`
	BusinessDate      string                    `json:"businessDate"`
	Committed         bool                      `json:"committed"`
}

// SummaryResponse is the caller-facing one-line outcome.
type SummaryResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// ViolationResponse is one blocking breach with actual-vs-limit values.
type ViolationResponse struct {
	Type    string  `json:"type"`
	Actual  float64 `json:"actual"`
	Limit   float64 `json:"limit"`
	Unit    string  `json:"unit"`
	Message string  `json:"message"`
}

// WarningResponse is one non-blocking advisory.
type WarningResponse struct {
	Type           string  `json:"type"`
	Metric         string  `json:"metric"`
	Actual         float64 `json:"actual"`
	Limit          float64 `json:"limit"`
	PercentOfLimit float64 `json:"percentOfLimit"`
}

// RulesResponse echoes the rule set the evaluation ran against. Null for
// LIGHT evaluations.
type RulesResponse struct {
	MaxDailyDrivingHours        float64  `json:"maxDailyDrivingHours"`
	MaxDailyAmplitudeHours      float64  `json:"maxDailyAmplitudeHours"`
	BreakMinutesPerDrivingBlock int      `json:"breakMinutesPerDrivingBlock"`
	DrivingBlockHoursForBreak   float64  `json:"drivingBlockHoursForBreak"`
	CappedAverageSpeedKmh       *float64 `json:"cappedAverageSpeedKmh,omitempty"`
	Source                      string   `json:"source"`
}

// AdjustedDurationsResponse is the break injector's output.
type AdjustedDurationsResponse struct {
	TotalDrivingMinutes      int `json:"totalDrivingMinutes"`
	InjectedBreakMinutes     int `json:"injectedBreakMinutes"`
	AdjustedAmplitudeMinutes int `json:"adjustedAmplitudeMinutes"`
}

// FromResult converts an evaluation result to an HTTP response.
func FromResult(result *compliance.Result) *ValidateResponse {
	violations := make([]ViolationResponse, 0, len(result.Violations))
	for _, v := range result.Violations {
		violations = append(violations, ViolationResponse{
			Type:    string(v.Type),
			Actual:  v.Actual,
			Limit:   v.Limit,
			Unit:    v.Unit,
			Message: v.Message(),
		})
	}
	warnings := make([]WarningResponse, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, WarningResponse{
			Type:           string(w.Type),
			Metric:         w.Metric,
			Actual:         w.Actual,
			Limit:          w.Limit,
			PercentOfLimit: w.PercentOfLimit,
		})
	}

	return &ValidateResponse{
		IsCompliant: result.IsCompliant,
		Decision:    string(result.Decision),
		Violations:  violations,
		Warnings:    warnings,
		RulesUsed:   rulesResponse(result.RulesUsed),
		AdjustedDurations: AdjustedDurationsResponse{
			TotalDrivingMinutes:      result.Adjusted.TotalDrivingMinutes,
			InjectedBreakMinutes:     result.Adjusted.InjectedBreakMinutes,
			AdjustedAmplitudeMinutes: result.Adjusted.AdjustedAmplitudeMinutes,
		},
		Summary: SummaryResponse{
			Status: string(result.Decision),
			Reason: result.Reason,
		},
		BusinessDate: result.BusinessDate,
		Committed:    result.Committed,
	}
}

func rulesResponse(rules *domain.RuleSet) *RulesResponse {
	if rules == nil {
		return nil
	}
	return &RulesResponse{
		MaxDailyDrivingHours:        rules.MaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      rules.MaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: rules.BreakMinutesPerDrivingBlock,
		DrivingBlockHoursForBreak:   rules.DrivingBlockHoursForBreak,
		CappedAverageSpeedKmh:       rules.CappedAverageSpeedKmh,
		Source:                      string(rules.Source),
	}
}
