package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/authz"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/transport"
)

type Authorizer interface {
	Authorize(ctx context.Context, id *identity.Identity, permission string, resource *authz.Resource) (authz.Decision, error)
}

// RequirePermission guards read routes that need a capability but touch no
// single resource. Mutations are authorized again inside their transaction.
func RequirePermission(authorizer Authorizer, permission string, lg *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := authorizer.Authorize(r.Context(), internal.IdentityFromContext(r.Context()), permission, nil)
			if err != nil {
				base.WriteAppError(w, internal.NewInternalError("authorization check failed", err))
				return
			}
			if err := d.Err(); err != nil {
				base.WriteAppError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
