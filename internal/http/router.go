// Package httpapi assembles the service's HTTP surface.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleetdesk/pkg/platform/httputil"
	"fleetdesk/pkg/platform/middleware/auth"
	"fleetdesk/pkg/platform/middleware/requestmeta"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger         *slog.Logger
	TokenValidator auth.TokenValidator
	Compliance     Registrar
	Rules          Registrar
	Audit          Registrar
	Fleet          Registrar
	HealthChecks   map[string]HealthChecker
}

// NewRouter wires middleware and feature handlers. Business routes sit
// behind org authentication; health and metrics do not.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestmeta.Middleware)

	r.Get("/healthz", handleHealth(deps.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireOrg(deps.TokenValidator, deps.Logger))
		deps.Compliance.Register(r)
		deps.Rules.Register(r)
		deps.Audit.Register(r)
		deps.Fleet.Register(r)
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check.Health(r.Context()); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
