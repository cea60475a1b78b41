package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fleetdesk/internal/rules"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
	"fleetdesk/pkg/platform/httputil"
	"fleetdesk/pkg/requestcontext"
)

// Service defines the interface for rule administration.
type Service interface {
	CreateRule(ctx context.Context, orgID id.OrgID, categoryID id.LicenseCategoryID, limits rules.Limits) (*rules.LicenseRule, error)
	GetRule(ctx context.Context, orgID id.OrgID, ruleID id.RuleID) (*rules.LicenseRule, error)
	ListRules(ctx context.Context, orgID id.OrgID) ([]*rules.LicenseRule, error)
	UpdateRule(ctx context.Context, orgID id.OrgID, ruleID id.RuleID, limits rules.Limits) (*rules.LicenseRule, error)
	DeleteRule(ctx context.Context, orgID id.OrgID, ruleID id.RuleID) error
}

// Handler wires rule CRUD endpoints to the rules service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a rules handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts rule endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/rules", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{ruleID}", h.HandleGet)
		r.Put("/{ruleID}", h.HandleUpdate)
		r.Delete("/{ruleID}", h.HandleDelete)
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, ok := h.authorize(w, ctx)
	if !ok {
		return
	}
	list, err := h.service.ListRules(ctx, orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRules(list))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	orgID, ok := h.authorize(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[RuleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.ParsedCategoryID().IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "licenseCategoryId is required"))
		return
	}

	rule, err := h.service.CreateRule(ctx, orgID, req.ParsedCategoryID(), req.Limits())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "license rule created",
		"request_id", requestID,
		"organization_id", orgID.String(),
		"rule_id", rule.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRule(rule))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, ok := h.authorize(w, ctx)
	if !ok {
		return
	}
	ruleID, ok := h.ruleID(w, r)
	if !ok {
		return
	}
	rule, err := h.service.GetRule(ctx, orgID, ruleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRule(rule))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	orgID, ok := h.authorize(w, ctx)
	if !ok {
		return
	}
	ruleID, ok := h.ruleID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[RuleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rule, err := h.service.UpdateRule(ctx, orgID, ruleID, req.Limits())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "license rule updated",
		"request_id", requestID,
		"organization_id", orgID.String(),
		"rule_id", rule.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromRule(rule))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	orgID, ok := h.authorize(w, ctx)
	if !ok {
		return
	}
	ruleID, ok := h.ruleID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteRule(ctx, orgID, ruleID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "license rule deleted",
		"request_id", requestID,
		"organization_id", orgID.String(),
		"rule_id", ruleID.String(),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) authorize(w http.ResponseWriter, ctx context.Context) (id.OrgID, bool) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.OrgID{}, false
	}
	return orgID, true
}

func (h *Handler) ruleID(w http.ResponseWriter, r *http.Request) (id.RuleID, bool) {
	ruleID, err := id.ParseRuleID(chi.URLParam(r, "ruleID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "rule id must be a valid UUID"))
		return id.RuleID{}, false
	}
	return ruleID, true
}
