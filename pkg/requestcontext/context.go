// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services read them. Keeping the package free of
// net/http lets the core read the transaction sender without depending on
// the transport.
//
//	sender, ok := requestcontext.Sender(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"

	"didanchor/pkg/domain"
)

type (
	senderKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeySender      = senderKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Sender returns the authenticated transaction sender, if any.
func Sender(ctx context.Context) (domain.PublicKey, bool) {
	sender, ok := ctx.Value(ContextKeySender).(domain.PublicKey)
	if !ok || sender.IsZero() {
		return domain.PublicKey{}, false
	}
	return sender, true
}

// WithSender injects the transaction sender.
func WithSender(ctx context.Context, sender domain.PublicKey) context.Context {
	return context.WithValue(ctx, ContextKeySender, sender)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for workers, the CLI and tests that do not set it.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
