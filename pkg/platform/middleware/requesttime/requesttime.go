// Package requesttime pins a single "now" for the lifetime of a request so
// status changes, notes and decisions recorded by one call share a timestamp.
package requesttime

import (
	"net/http"
	"time"

	"duediligence/pkg/requestcontext"
)

// Middleware captures the current UTC time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
