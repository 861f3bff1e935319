package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/auth"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/frahmantamala/library-management/pkg/logger"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*identity.Identity, error)
}

// Authenticate resolves the bearer token once per request. Requests without
// a token continue anonymously; a token that does not resolve is rejected.
func Authenticate(resolver IdentityResolver, lg *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := base.ExtractTokenFromHeader(r)
			id, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthorized) {
					base.WriteAppError(w, internal.ErrInvalidToken)
					return
				}
				base.WriteAppError(w, internal.NewInternalError("failed to resolve identity", err))
				return
			}
			if id == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := internal.ContextWithIdentity(r.Context(), id)
			ctx = logger.With(ctx, "user_id", id.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity(lg *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if internal.IdentityFromContext(r.Context()) == nil {
				base.WriteAppError(w, internal.ErrNotAuthenticated)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
