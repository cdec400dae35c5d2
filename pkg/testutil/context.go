package testutil

import (
	"net/http"

	id "carepool/pkg/domain"
	"carepool/pkg/requestcontext"
)

// WithCaller adds a caller account to the request context, simulating what the
// auth middleware does for authenticated requests. Invalid accounts are
// silently ignored.
func WithCaller(req *http.Request, account string) *http.Request {
	parsed, err := id.ParseAccountID(account)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithCaller(req.Context(), parsed))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
