package testutil

import (
	"net/http"
	"time"

	"didanchor/pkg/domain"
	"didanchor/pkg/requestcontext"
)

// WithSender simulates what the auth middleware does for a valid bearer token.
func WithSender(req *http.Request, sender domain.PublicKey) *http.Request {
	return req.WithContext(requestcontext.WithSender(req.Context(), sender))
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
