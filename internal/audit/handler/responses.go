package handler

import (
	"time"

	"fleetdesk/internal/audit"
	"fleetdesk/internal/domain"
)

// EntryResponse is the HTTP representation of one audit log entry.
type EntryResponse struct {
	ID                 string              `json:"id"`
	DriverID           string              `json:"driverId"`
	QuoteID            *string             `json:"quoteId,omitempty"`
	MissionID          *string             `json:"missionId,omitempty"`
	VehicleCategoryID  *string             `json:"vehicleCategoryId,omitempty"`
	RegulatoryCategory string              `json:"regulatoryCategory"`
	BusinessDate       string              `json:"businessDate"`
	Decision           string              `json:"decision"`
	Violations         []ViolationResponse `json:"violations"`
	Warnings           []WarningResponse   `json:"warnings"`
	Reason             string              `json:"reason"`
	RulesUsed          *RulesResponse      `json:"rulesUsed,omitempty"`
	CountersSnapshot   SnapshotResponse    `json:"countersSnapshot"`
	EvaluatedAt        time.Time           `json:"evaluatedAt"`
	Committed          bool                `json:"committed"`
}

// ViolationResponse mirrors the typed violation in transport form.
type ViolationResponse struct {
	Type    string  `json:"type"`
	Actual  float64 `json:"actual"`
	Limit   float64 `json:"limit"`
	Unit    string  `json:"unit"`
	Message string  `json:"message"`
}

// WarningResponse mirrors the typed warning in transport form.
type WarningResponse struct {
	Type           string  `json:"type"`
	Metric         string  `json:"metric"`
	Actual         float64 `json:"actual"`
	Limit          float64 `json:"limit"`
	PercentOfLimit float64 `json:"percentOfLimit"`
}

// RulesResponse echoes the rule set the evaluation ran against.
type RulesResponse struct {
	MaxDailyDrivingHours        float64  `json:"maxDailyDrivingHours"`
	MaxDailyAmplitudeHours      float64  `json:"maxDailyAmplitudeHours"`
	BreakMinutesPerDrivingBlock int      `json:"breakMinutesPerDrivingBlock"`
	DrivingBlockHoursForBreak   float64  `json:"drivingBlockHoursForBreak"`
	CappedAverageSpeedKmh       *float64 `json:"cappedAverageSpeedKmh,omitempty"`
	Source                      string   `json:"source"`
}

// SnapshotResponse is the pre-evaluation counter state.
type SnapshotResponse struct {
	DrivingMinutes   int `json:"drivingMinutes"`
	AmplitudeMinutes int `json:"amplitudeMinutes"`
	BreakMinutes     int `json:"breakMinutes"`
	RestMinutes      int `json:"restMinutes"`
}

// FromEntries converts an entry list, never returning null.
func FromEntries(entries []*audit.Entry) []*EntryResponse {
	out := make([]*EntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromEntry(entry))
	}
	return out
}

// FromEntry converts one audit entry to its HTTP representation.
func FromEntry(entry *audit.Entry) *EntryResponse {
	resp := &EntryResponse{
		ID:                 entry.ID.String(),
		DriverID:           entry.DriverID.String(),
		RegulatoryCategory: string(entry.Category),
		BusinessDate:       entry.BusinessDate,
		Decision:           string(entry.Decision),
		Violations:         make([]ViolationResponse, 0, len(entry.Violations)),
		Warnings:           make([]WarningResponse, 0, len(entry.Warnings)),
		Reason:             entry.Reason,
		CountersSnapshot: SnapshotResponse{
			DrivingMinutes:   entry.CounterBefore.DrivingMinutes,
			AmplitudeMinutes: entry.CounterBefore.AmplitudeMinutes,
			BreakMinutes:     entry.CounterBefore.BreakMinutes,
			RestMinutes:      entry.CounterBefore.RestMinutes,
		},
		EvaluatedAt: entry.EvaluatedAt,
		Committed:   entry.Committed,
	}
	if entry.QuoteID != nil {
		qid := entry.QuoteID.String()
		resp.QuoteID = &qid
	}
	if entry.MissionID != nil {
		mid := entry.MissionID.String()
		resp.MissionID = &mid
	}
	if entry.VehicleCategoryID != nil {
		vcid := entry.VehicleCategoryID.String()
		resp.VehicleCategoryID = &vcid
	}
	if entry.RulesUsed != nil {
		resp.RulesUsed = fromRules(entry.RulesUsed)
	}
	for _, v := range entry.Violations {
		resp.Violations = append(resp.Violations, ViolationResponse{
			Type:    string(v.Type),
			Actual:  v.Actual,
			Limit:   v.Limit,
			Unit:    v.Unit,
			Message: v.Message(),
		})
	}
	for _, w := range entry.Warnings {
		resp.Warnings = append(resp.Warnings, WarningResponse{
			Type:           string(w.Type),
			Metric:         w.Metric,
			Actual:         w.Actual,
			Limit:          w.Limit,
			PercentOfLimit: w.PercentOfLimit,
		})
	}
	return resp
}

func fromRules(rules *domain.RuleSet) *RulesResponse {
	return &RulesResponse{
		MaxDailyDrivingHours:        rules.MaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      rules.MaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: rules.BreakMinutesPerDrivingBlock,
		DrivingBlockHoursForBreak:   rules.DrivingBlockHoursForBreak,
		CappedAverageSpeedKmh:       rules.CappedAverageSpeedKmh,
		Source:                      string(rules.Source),
	}
}
