package httpserver

import (
	"net/http"
	"time"
)

// Slow-header clients get cut off early; per-request deadlines are owned by
// the handlers, where the work is known.
const readHeaderTimeout = 5 * time.Second

// New builds the API server around the assembled router.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
