package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with the project's timeouts. writeTimeout should
// exceed the per-request handler timeout so timeouts surface as JSON errors.
func New(addr string, handler http.Handler, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
