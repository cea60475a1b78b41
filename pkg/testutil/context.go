// Package testutil provides helpers for HTTP handler tests.
package testutil

import (
	"net/http"

	id "fleetdesk/pkg/domain"
	"fleetdesk/pkg/requestcontext"
)

// WithOrg adds an organization ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// If the orgID is not a valid UUID, it will not be added to the context.
func WithOrg(req *http.Request, orgID string) *http.Request {
	if parsed, err := id.ParseOrgID(orgID); err == nil {
		return req.WithContext(requestcontext.WithOrgID(req.Context(), parsed))
	}
	return req
}

// WithOrgID adds a typed organization ID to the request context.
func WithOrgID(req *http.Request, orgID id.OrgID) *http.Request {
	return req.WithContext(requestcontext.WithOrgID(req.Context(), orgID))
}

// WithRequestID adds a correlation ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
