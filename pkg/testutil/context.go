package testutil

import (
	"net/http"

	id "duediligence/pkg/domain"
	"duediligence/pkg/requestcontext"
)

// WithPrincipal adds a user ID and roles to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// An invalid userID leaves the request unchanged.
func WithPrincipal(req *http.Request, userID string, roles ...string) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), parsed, roles))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
