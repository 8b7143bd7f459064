package transport

import "context"

type requestIDContextKey struct{}
type userAgentContextKey struct{}

// WithRequestID attaches a correlation identifier to ctx. The HTTP
// backend sends it as X-Request-ID; when absent a fresh UUID is
// generated per request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// WithUserAgent attaches a User-Agent override to ctx, replacing the
// backend's configured default for that request.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}
