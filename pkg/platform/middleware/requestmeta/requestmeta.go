// Package requestmeta stamps correlation metadata onto every request.
package requestmeta

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"fleetdesk/pkg/requestcontext"
)

// HeaderRequestID is honored when the caller supplies its own correlation ID.
const HeaderRequestID = "X-Request-Id"

// Middleware injects a request ID and a single request-scoped timestamp into
// the context. Services read both via pkg/requestcontext so a request sees
// one consistent "now" from decode to commit.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())

		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
