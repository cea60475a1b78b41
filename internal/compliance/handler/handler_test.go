package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fleetdesk/internal/audit"
	"fleetdesk/internal/compliance"
	"fleetdesk/internal/counter"
	"fleetdesk/internal/fleet"
	"fleetdesk/internal/rules"
	id "fleetdesk/pkg/domain"
	"fleetdesk/pkg/testutil"
)

type fixture struct {
	router   http.Handler
	orgID    id.OrgID
	driverID id.DriverID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	fleetSvc := fleet.New(fleet.NewInMemoryDriverStore(), fleet.NewInMemoryCategoryStore())
	rulesSvc := rules.New(rules.NewInMemoryStore(), fleetSvc)
	counterSvc := counter.NewService(counter.NewInMemoryStore(), nil, logger)
	auditSvc := audit.NewService(audit.NewInMemoryStore())
	svc := compliance.New(rulesSvc, fleetSvc, counterSvc, auditSvc)

	orgID := id.OrgID(uuid.New())
	driver, err := fleetSvc.CreateDriver(context.Background(), orgID, "Jean Dupont", nil)
	if err != nil {
		t.Fatalf("failed to seed driver: %v", err)
	}

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return &fixture{router: r, orgID: orgID, driverID: driver.ID}
}

func (f *fixture) validate(t *testing.T, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/compliance/validate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithOrgID(req, f.orgID)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func heavyPayload(driverID id.DriverID, serviceMinutes int) map[string]any {
	return map[string]any{
		"driverId":           driverID.String(),
		"regulatoryCategory": "HEAVY",
		"pickupAt":           "2026-08-28T09:00:00Z",
		"tripAnalysis": map[string]any{
			"approach": map[string]any{"distanceKm": 10, "durationMinutes": 20},
			"service":  map[string]any{"distanceKm": 80, "durationMinutes": serviceMinutes},
			"return":   map[string]any{"distanceKm": 10, "durationMinutes": 20},
		},
	}
}

func TestValidateRequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	raw, _ := json.Marshal(heavyPayload(f.driverID, 120))
	req := httptest.NewRequest(http.MethodPost, "/compliance/validate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without authentication, got %d", rec.Code)
	}
}

func TestValidateApprovedHeavyTrip(t *testing.T) {
	f := newFixture(t)

	rec := f.validate(t, heavyPayload(f.driverID, 120))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.IsCompliant || resp.Decision != "APPROVED" {
		t.Fatalf("expected approved compliant result, got %+v", resp)
	}
	if resp.RulesUsed == nil || resp.RulesUsed.MaxDailyDrivingHours != 10 {
		t.Fatalf("expected regulatory default rules in response, got %+v", resp.RulesUsed)
	}
	if resp.AdjustedDurations.TotalDrivingMinutes != 160 {
		t.Fatalf("expected 160 driving minutes, got %d", resp.AdjustedDurations.TotalDrivingMinutes)
	}
	if resp.BusinessDate != "2026-08-28" {
		t.Fatalf("expected business date 2026-08-28, got %q", resp.BusinessDate)
	}
	if resp.Committed {
		t.Fatalf("preview must not commit")
	}
}

func TestValidateBlockedTripCarriesViolations(t *testing.T) {
	f := newFixture(t)

	// 620' of service driving alone exceeds the 600' regulatory limit.
	rec := f.validate(t, heavyPayload(f.driverID, 620))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a blocked decision, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.IsCompliant || resp.Decision != "BLOCKED" {
		t.Fatalf("expected blocked result, got %+v", resp)
	}
	if len(resp.Violations) == 0 {
		t.Fatalf("expected violations on a blocked result")
	}
	if resp.Summary.Status != "BLOCKED" || resp.Summary.Reason == "" {
		t.Fatalf("expected populated summary, got %+v", resp.Summary)
	}
	for _, v := range resp.Violations {
		if v.Message == "" {
			t.Fatalf("expected rendered message on violation %+v", v)
		}
	}
}

func TestValidateLightIsAlwaysApproved(t *testing.T) {
	f := newFixture(t)

	payload := heavyPayload(f.driverID, 620)
	payload["regulatoryCategory"] = "LIGHT"
	rec := f.validate(t, payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.IsCompliant || resp.RulesUsed != nil {
		t.Fatalf("expected approved result without rules, got %+v", resp)
	}
}

func TestValidateCommitFlagPersists(t *testing.T) {
	f := newFixture(t)

	payload := heavyPayload(f.driverID, 120)
	payload["commit"] = true
	rec := f.validate(t, payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Committed {
		t.Fatalf("expected committed result, got %+v", resp)
	}
}

func TestValidateUnknownDriverIsUnprocessable(t *testing.T) {
	f := newFixture(t)

	rec := f.validate(t, heavyPayload(id.DriverID(uuid.New()), 120))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown driver, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestValidateRejectsMalformedBody(t *testing.T) {
	f := newFixture(t)

	payload := heavyPayload(f.driverID, 120)
	payload["driverId"] = "not-a-uuid"
	rec := f.validate(t, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed driver id, got %d", rec.Code)
	}

	payload = heavyPayload(f.driverID, 120)
	payload["regulatoryCategory"] = "MEDIUM"
	rec = f.validate(t, payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown regulatory category, got %d", rec.Code)
	}
}
