package counter

import (
	"time"

	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
)

// businessDateLayout is the storage form of a business date.
const businessDateLayout = "2006-01-02"

// BusinessDate derives the day a trip consumes from its pickup time expressed
// in the organization's business timezone. Counters key on the pickup day,
// never on the evaluation wall clock, so a quote for next Tuesday accrues
// against next Tuesday.
func BusinessDate(pickupAt time.Time, loc *time.Location) string {
	return pickupAt.In(loc).Format(businessDateLayout)
}

// Key identifies one counter row: one driver, one business day, one
// regulatory regime, inside one organization.
type Key struct {
	OrgID    id.OrgID              `json:"organization_id"`
	DriverID id.DriverID           `json:"driver_id"`
	Date     string                `json:"business_date"`
	Category id.RegulatoryCategory `json:"regulatory_category"`
}

// Counter is the accumulated consumption for one driver-day. Rows are
// created lazily at zero and only ever grow through committed approvals.
type Counter struct {
	Key       Key                    `json:"key"`
	Snapshot  domain.CounterSnapshot `json:"snapshot"`
	UpdatedAt time.Time              `json:"updated_at"`
}
