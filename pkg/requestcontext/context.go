// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services and stores read them without pulling
// in net/http:
//
//	caller, ok := requestcontext.Caller(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithCaller(ctx, alice)
package requestcontext

import (
	"context"

	"selfid/pkg/domain"
)

type (
	callerKey    struct{}
	requestIDKey struct{}
	userAgentKey struct{}
	clientIPKey  struct{}
)

// Caller returns the authenticated account of the current call.
func Caller(ctx context.Context) (domain.AccountID, bool) {
	caller, ok := ctx.Value(callerKey{}).(domain.AccountID)
	return caller, ok && !caller.IsZero()
}

// WithCaller injects the authenticated account.
func WithCaller(ctx context.Context, caller domain.AccountID) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// RequestID returns the correlation id, or "" when unset.
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID injects a correlation id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// UserAgent returns the raw User-Agent of the request, or "".
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// ClientIP returns the client address of the request, or "".
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}
