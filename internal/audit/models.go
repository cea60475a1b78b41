package audit

import (
	"time"

	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
)

// Entry is one immutable line of the compliance audit log. Every evaluation
// writes exactly one, preview or not, whatever the decision.
type Entry struct {
	ID                id.AuditEntryID        `json:"id"`
	OrgID             id.OrgID               `json:"organization_id"`
	DriverID          id.DriverID            `json:"driver_id"`
	QuoteID           *id.QuoteID            `json:"quote_id,omitempty"`
	MissionID         *id.MissionID          `json:"mission_id,omitempty"`
	VehicleCategoryID *id.VehicleCategoryID  `json:"vehicle_category_id,omitempty"`
	Category          id.RegulatoryCategory  `json:"regulatory_category"`
	BusinessDate      string                 `json:"business_date"`
	Decision          domain.Decision        `json:"decision"`
	Violations        []domain.Violation     `json:"violations"`
	Warnings          []domain.Warning       `json:"warnings"`
	Reason            string                 `json:"reason"`
	RulesUsed         *domain.RuleSet        `json:"rules_used,omitempty"`
	CounterBefore     domain.CounterSnapshot `json:"counter_before"`
	EvaluatedAt       time.Time              `json:"evaluated_at"`
	Committed         bool                   `json:"committed"`
	RequestID         string                 `json:"request_id,omitempty"`
}

// OutboxRecord is an audit entry queued for Kafka publication. Rows are
// written in the same transaction as the entry and cleared by the worker.
type OutboxRecord struct {
	ID        int64
	EntryID   id.AuditEntryID
	Payload   []byte
	CreatedAt time.Time
}
