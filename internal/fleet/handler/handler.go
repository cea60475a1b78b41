package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fleetdesk/internal/fleet"
	id "fleetdesk/pkg/domain"
	dErrors "fleetdesk/pkg/domain-errors"
	"fleetdesk/pkg/platform/httputil"
	"fleetdesk/pkg/requestcontext"
)

// Service defines the interface for the fleet directory.
type Service interface {
	CreateDriver(ctx context.Context, orgID id.OrgID, fullName string, categoryID *id.LicenseCategoryID) (*fleet.Driver, error)
	GetDriver(ctx context.Context, orgID id.OrgID, driverID id.DriverID) (*fleet.Driver, error)
	ListDrivers(ctx context.Context, orgID id.OrgID) ([]*fleet.Driver, error)
	CreateCategory(ctx context.Context, orgID id.OrgID, code, label string) (*fleet.LicenseCategory, error)
	ListCategories(ctx context.Context, orgID id.OrgID) ([]*fleet.LicenseCategory, error)
}

// Handler wires fleet directory endpoints to the fleet service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a fleet handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts fleet endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/drivers", h.HandleListDrivers)
	r.Post("/drivers", h.HandleCreateDriver)
	r.Get("/drivers/{driverID}", h.HandleGetDriver)
	r.Get("/license-categories", h.HandleListCategories)
	r.Post("/license-categories", h.HandleCreateCategory)
}

// CreateDriverRequest is the HTTP request body for POST /drivers.
type CreateDriverRequest struct {
	FullName          string `json:"fullName"`
	LicenseCategoryID string `json:"licenseCategoryId,omitempty"`

	parsedCategoryID *id.LicenseCategoryID
}

// Validate validates and parses the request.
func (r *CreateDriverRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.FullName) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "fullName is required")
	}
	if raw := strings.TrimSpace(r.LicenseCategoryID); raw != "" {
		categoryID, err := id.ParseLicenseCategoryID(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "licenseCategoryId must be a valid UUID")
		}
		r.parsedCategoryID = &categoryID
	}
	return nil
}

// CreateCategoryRequest is the HTTP request body for POST /license-categories.
type CreateCategoryRequest struct {
	Code  string `json:"code"`
	Label string `json:"label,omitempty"`
}

// Validate validates the request.
func (r *CreateCategoryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Code) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "code is required")
	}
	return nil
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID                string    `json:"id"`
	FullName          string    `json:"fullName"`
	LicenseCategoryID *string   `json:"licenseCategoryId,omitempty"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"createdAt"`
}

// CategoryResponse is the HTTP representation of a license category.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

func fromDriver(driver *fleet.Driver) *DriverResponse {
	resp := &DriverResponse{
		ID:        driver.ID.String(),
		FullName:  driver.FullName,
		Active:    driver.Active,
		CreatedAt: driver.CreatedAt,
	}
	if driver.LicenseCategoryID != nil {
		cid := driver.LicenseCategoryID.String()
		resp.LicenseCategoryID = &cid
	}
	return resp
}

func fromCategory(category *fleet.LicenseCategory) *CategoryResponse {
	return &CategoryResponse{
		ID:        category.ID.String(),
		Code:      category.Code,
		Label:     category.Label,
		CreatedAt: category.CreatedAt,
	}
}

func (h *Handler) HandleListDrivers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, ok := h.authorize(w, ctx)
	if !ok {
		return
	}
	drivers, err := h.service.ListDrivers(ctx, orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		out = append(out, fromDriver(driver))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleCreateDriver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	orgID, ok := h.authorize(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateDriverRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	driver, err := h.service.CreateDriver(ctx, orgID, req.FullName, req.parsedCategoryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "driver created",
		"request_id", requestID,
		"organization_id", orgID.String(),
		"driver_id", driver.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromDriver(driver))
}

func (h *Handler) HandleGetDriver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, ok := h.authorize(w, ctx)
	if !ok {
		return
	}
	driverID, err := id.ParseDriverID(chi.URLParam(r, "driverID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "driver id must be a valid UUID"))
		return
	}
	driver, err := h.service.GetDriver(ctx, orgID, driverID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDriver(driver))
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, ok := h.authorize(w, ctx)
	if !ok {
		return
	}
	categories, err := h.service.ListCategories(ctx, orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, fromCategory(category))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	orgID, ok := h.authorize(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateCategoryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	category, err := h.service.CreateCategory(ctx, orgID, req.Code, req.Label)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "license category created",
		"request_id", requestID,
		"organization_id", orgID.String(),
		"category_id", category.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromCategory(category))
}

func (h *Handler) authorize(w http.ResponseWriter, ctx context.Context) (id.OrgID, bool) {
	orgID := requestcontext.OrgID(ctx)
	if orgID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.OrgID{}, false
	}
	return orgID, true
}
