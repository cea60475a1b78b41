package handler

import (
	"strings"
	"time"

	"fleetdesk/internal/compliance"
	"fleetdesk/internal/domain"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
)

// SegmentRequest is one trip leg as supplied by the pricing calculator.
type SegmentRequest struct {
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes int     `json:"durationMinutes"`
}

// TripAnalysisRequest carries the three legs of the planned trip.
type TripAnalysisRequest struct {
	Approach SegmentRequest `json:"approach"`
	Service  SegmentRequest `json:"service"`
	Return   SegmentRequest `json:"return"`
}

// ValidateRequest is the HTTP request body for POST /compliance/validate.
type ValidateRequest struct {
	DriverID           string              `json:"driverId"`
	VehicleCategoryID  string              `json:"vehicleCategoryId,omitempty"`
	RegulatoryCategory string              `json:"regulatoryCategory"`
	LicenseCategoryID  string              `json:"licenseCategoryId,omitempty"`
	PickupAt           time.Time           `json:"pickupAt"`
	TripAnalysis       TripAnalysisRequest `json:"tripAnalysis"`
	QuoteID            string              `json:"quoteId,omitempty"`
	MissionID          string              `json:"missionId,omitempty"`
	Commit             bool                `json:"commit,omitempty"`

	parsed compliance.Request
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ValidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	driverID, err := id.ParseDriverID(strings.TrimSpace(r.DriverID))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "driverId must be a valid UUID")
	}

	category, err := id.ParseRegulatoryCategory(r.RegulatoryCategory)
	if err != nil {
		return err
	}

	if r.PickupAt.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "pickupAt is required")
	}

	for _, seg := range []SegmentRequest{r.TripAnalysis.Approach, r.TripAnalysis.Service, r.TripAnalysis.Return} {
		if seg.DurationMinutes < 0 || seg.DistanceKm < 0 {
			return dErrors.New(dErrors.CodeInvalidInput, "tripAnalysis segments must not be negative")
		}
	}

	r.parsed = compliance.Request{
		DriverID: driverID,
		Category: category,
		PickupAt: r.PickupAt,
		Trip: domain.TripAnalysis{
			Approach: domain.Segment{DistanceKm: r.TripAnalysis.Approach.DistanceKm, DurationMinutes: r.TripAnalysis.Approach.DurationMinutes},
			Service:  domain.Segment{DistanceKm: r.TripAnalysis.Service.DistanceKm, DurationMinutes: r.TripAnalysis.Service.DurationMinutes},
			Return:   domain.Segment{DistanceKm: r.TripAnalysis.Return.DistanceKm, DurationMinutes: r.TripAnalysis.Return.DurationMinutes},
		},
		Commit: r.Commit,
	}

	if raw := strings.TrimSpace(r.VehicleCategoryID); raw != "" {
		vcid, err := id.ParseVehicleCategoryID(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "vehicleCategoryId must be a valid UUID")
		}
		r.parsed.VehicleCategoryID = &vcid
	}
	if raw := strings.TrimSpace(r.LicenseCategoryID); raw != "" {
		lcid, err := id.ParseLicenseCategoryID(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "licenseCategoryId must be a valid UUID")
		}
		r.parsed.LicenseCategoryID = &lcid
	}
	if raw := strings.TrimSpace(r.QuoteID); raw != "" {
		qid, err := id.ParseQuoteID(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "quoteId must be a valid UUID")
		}
		r.parsed.QuoteID = &qid
	}
	if raw := strings.TrimSpace(r.MissionID); raw != "" {
		mid, err := id.ParseMissionID(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "missionId must be a valid UUID")
		}
		r.parsed.MissionID = &mid
	}
	return nil
}

// Parsed returns the validated domain request.
func (r *ValidateRequest) Parsed() compliance.Request {
	return r.parsed
}
