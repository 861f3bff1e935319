package internal

import (
	"context"
	"time"

	"github.com/frahmantamala/library-management/internal/core/identity"
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

// IdentityFromContext returns the caller resolved for this request, or nil
// for anonymous requests.
func IdentityFromContext(ctx context.Context) *identity.Identity {
	if ctx == nil {
		return nil
	}
	if id, ok := ctx.Value(ContextIdentityKey).(*identity.Identity); ok {
		return id
	}
	return nil
}

func ContextWithIdentity(ctx context.Context, id *identity.Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, id)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
