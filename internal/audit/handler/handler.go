package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fleetdesk/internal/audit"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
	"fleetdesk/pkg/platform/httputil"
	"fleetdesk/pkg/requestcontext"
)

// Service defines the interface for audit queries.
type Service interface {
	List(ctx context.Context, orgID id.OrgID, driverID id.DriverID, limit int, before *time.Time) ([]*audit.Entry, error)
}

// Handler wires the audit query endpoint to the audit service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an audit handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/drivers/{driverID}/compliance-logs", h.HandleList)
}

// HandleList handles GET /drivers/{driverID}/compliance-logs requests.
// Query params: limit (default 50, max 200), before (RFC 3339 timestamp).
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	driverID, err := id.ParseDriverID(chi.URLParam(r, "driverID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "driver id must be a valid UUID"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
	}

	var before *time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "before must be an RFC 3339 timestamp"))
			return
		}
		before = &t
	}

	entries, err := h.service.List(ctx, orgID, driverID, limit, before)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit query failed",
			"request_id", requestcontext.RequestID(ctx),
			"organization_id", orgID.String(),
			"driver_id", driverID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEntries(entries))
}
