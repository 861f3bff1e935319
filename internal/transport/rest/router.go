package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/library-management/internal/audit"
	"github.com/frahmantamala/library-management/internal/auth"
	"github.com/frahmantamala/library-management/internal/authz"
	"github.com/frahmantamala/library-management/internal/book"
	"github.com/frahmantamala/library-management/internal/grant"
	"github.com/frahmantamala/library-management/internal/role"
	"github.com/frahmantamala/library-management/internal/transport/middleware"
	"github.com/frahmantamala/library-management/internal/transport/swagger"
	"github.com/frahmantamala/library-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
)

// Dependencies bundles what the router mounts. Nil handlers are skipped.
type Dependencies struct {
	DB         Pinger
	Resolver   middleware.IdentityResolver
	Authorizer middleware.Authorizer
	Logger     *slog.Logger

	// LoginRateLimit caps token requests per client IP per minute.
	LoginRateLimit int
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	MetricsPath    string
	Spec           *swagger.Spec

	AuthHandler  *auth.Handler
	UserHandler  *user.Handler
	RoleHandler  *role.Handler
	GrantHandler *grant.Handler
	AuditHandler *audit.Handler
	BookHandler  *book.Handler
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	healthHandler := NewHealthHandler(deps.DB)
	lg := deps.Logger
	require := func(permission string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(deps.Authorizer, permission, lg)
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(lg))
	router.Use(middleware.LoggingMiddleware(lg))
	router.Use(deps.Metrics.Middleware)

	if deps.MetricsHandler != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, deps.MetricsHandler)
	}
	if deps.Spec != nil {
		router.Handle(swagger.SpecRoute, deps.Spec)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ping", healthHandler.Ping)

		if deps.AuthHandler != nil {
			r.Group(func(ar chi.Router) {
				if deps.LoginRateLimit > 0 {
					ar.Use(httprate.Limit(deps.LoginRateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
				}
				ar.Post("/auth/token", deps.AuthHandler.Login)
			})
		}

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(deps.Resolver, lg))

			// Reads that tolerate anonymous callers.
			if deps.BookHandler != nil {
				pr.Get("/books", deps.BookHandler.ListBooks)
				pr.Get("/books/{bookID}", deps.BookHandler.GetBook)
			}

			// Everything below needs a caller. Mutations are authorized
			// inside their transaction by the action runner.
			pr.Group(func(ir chi.Router) {
				ir.Use(middleware.RequireIdentity(lg))

				if deps.BookHandler != nil {
					ir.Post("/books", deps.BookHandler.CreateBook)
					ir.Put("/books/{bookID}", deps.BookHandler.UpdateBook)
					ir.Delete("/books/{bookID}", deps.BookHandler.DeleteBook)
				}

				if deps.UserHandler != nil {
					ir.Route("/users", func(ur chi.Router) {
						ur.Get("/me", deps.UserHandler.GetCurrentUser)
						ur.Post("/", deps.UserHandler.CreateUser)
						ur.With(require(authz.UserView)).Get("/", deps.UserHandler.ListUsers)
						ur.With(require(authz.UserView)).Get("/{userID}", deps.UserHandler.GetUser)
						ur.Patch("/{userID}/status", deps.UserHandler.UpdateStatus)
						ur.Patch("/{userID}/role", deps.UserHandler.UpdateRole)
					})
				}

				if deps.RoleHandler != nil {
					ir.Route("/roles", func(rr chi.Router) {
						rr.Post("/", deps.RoleHandler.CreateRole)
						rr.With(require(authz.RoleView)).Get("/", deps.RoleHandler.ListRoles)
						rr.With(require(authz.RoleView)).Get("/{roleID}/permissions", deps.RoleHandler.GetRolePermissions)
						rr.Post("/{roleID}/permissions", deps.RoleHandler.AssignPermissions)
					})
					ir.Route("/permissions", func(pm chi.Router) {
						pm.Post("/", deps.RoleHandler.CreatePermission)
						pm.With(require(authz.PermissionView)).Get("/", deps.RoleHandler.ListPermissions)
					})
				}

				if deps.GrantHandler != nil {
					ir.Route("/book-permissions", func(gr chi.Router) {
						gr.Post("/", deps.GrantHandler.Assign)
						gr.With(require(authz.BookPermissionView)).Get("/book/{bookID}", deps.GrantHandler.ListForBook)
						gr.Delete("/{grantID}", deps.GrantHandler.Revoke)
					})
				}

				if deps.AuditHandler != nil {
					ir.With(require(authz.LogView)).Get("/logs", deps.AuditHandler.GetLogs)
				}
			})
		})
	})
}
