package testutil

import (
	"net/http"

	id "relief/pkg/domain"
	"relief/pkg/requestcontext"
)

// WithPrincipal adds an authenticated caller to the request context, the way
// the auth middleware does for a valid bearer token. Malformed principals are
// ignored so tests can exercise the unauthenticated path.
func WithPrincipal(req *http.Request, principal string) *http.Request {
	p, err := id.ParsePrincipal(principal)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
}

// WithRequestID adds a request id to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
