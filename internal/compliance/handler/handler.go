package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fleetdesk/internal/compliance"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
	"fleetdesk/pkg/platform/httputil"
	"fleetdesk/pkg/requestcontext"
)

// Service defines the interface for compliance evaluation.
type Service interface {
	Evaluate(ctx context.Context, orgID id.OrgID, req compliance.Request) (*compliance.Result, error)
}

// Handler wires the validate endpoint to the compliance evaluator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a compliance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compliance/validate", h.HandleValidate)
}

// HandleValidate handles POST /compliance/validate requests.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(ctx, orgID, req.Parsed())
	if err != nil {
		h.logger.ErrorContext(ctx, "compliance evaluation failed",
			"request_id", requestID,
			"organization_id", orgID.String(),
			"driver_id", req.DriverID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "compliance validate served",
		"request_id", requestID,
		"organization_id", orgID.String(),
		"driver_id", req.DriverID,
		"decision", string(result.Decision),
		"committed", result.Committed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}
