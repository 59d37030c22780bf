package context

import (
	"context"
)

// ClientContext identifies the caller that requested an identifier.
type ClientContext struct {
	// ClientID comes from the X-Client-ID header and is only used for logs.
	ClientID   string
	RemoteAddr string
}

type clientContextKey struct{}

// WithClient adds ClientContext to context.
func WithClient(ctx context.Context, client *ClientContext) context.Context {
	return context.WithValue(ctx, clientContextKey{}, client)
}

// GetClient returns ClientContext from context.
func GetClient(ctx context.Context) *ClientContext {
	if v, ok := ctx.Value(clientContextKey{}).(*ClientContext); ok {
		return v
	}
	return nil
}

// GetClientID returns client ID from context or empty string.
func GetClientID(ctx context.Context) string {
	if c := GetClient(ctx); c != nil {
		return c.ClientID
	}
	return ""
}
