// Package httpserver builds the shared http.Server used by cmd/server.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server with conservative timeouts. Handler-level deadlines
// come from the router's timeout middleware; these guard the connection
// itself against slow clients.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
