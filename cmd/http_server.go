package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/action"
	"github.com/frahmantamala/library-management/internal/audit"
	auditPostgres "github.com/frahmantamala/library-management/internal/audit/postgres"
	"github.com/frahmantamala/library-management/internal/auth"
	authPostgres "github.com/frahmantamala/library-management/internal/auth/postgres"
	"github.com/frahmantamala/library-management/internal/authz"
	authzPostgres "github.com/frahmantamala/library-management/internal/authz/postgres"
	"github.com/frahmantamala/library-management/internal/book"
	bookPostgres "github.com/frahmantamala/library-management/internal/book/postgres"
	"github.com/frahmantamala/library-management/internal/core/txn"
	"github.com/frahmantamala/library-management/internal/grant"
	grantPostgres "github.com/frahmantamala/library-management/internal/grant/postgres"
	"github.com/frahmantamala/library-management/internal/role"
	rolePostgres "github.com/frahmantamala/library-management/internal/role/postgres"
	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/frahmantamala/library-management/internal/transport/middleware"
	"github.com/frahmantamala/library-management/internal/transport/rest"
	"github.com/frahmantamala/library-management/internal/transport/swagger"
	"github.com/frahmantamala/library-management/internal/user"
	userPostgres "github.com/frahmantamala/library-management/internal/user/postgres"
	"github.com/frahmantamala/library-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("Failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	gdb := deps.Gorm

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		authzMetrics   *authz.Metrics
		httpMetrics    *middleware.HTTPMetrics
		metricsHandler http.Handler
	)
	if cfg.Observability.Metrics.Enabled {
		authzMetrics = authz.NewMetrics(registry)
		httpMetrics = middleware.NewHTTPMetrics(registry)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}

	txManager := txn.NewManager(gdb, txn.WithSnapshotIsolation())
	auditService := audit.NewService(auditPostgres.NewAuditRepository(gdb), lg)
	engine := authz.NewEngine(authzPostgres.NewRepository(gdb), txManager, authzMetrics, lg)
	runner := action.NewRunner(engine, auditService, txManager, lg)

	tokens := auth.NewJWTTokenService(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	credentials := auth.NewBcryptCredentialStore(cfg.Security.BCryptCost)
	authRepo := authPostgres.NewRepository(gdb)
	authService := auth.NewService(authRepo, tokens, credentials, auditService, lg)
	resolver := auth.NewResolver(tokens, authRepo, lg)

	base := transport.NewBaseHandler(lg)

	var spec *swagger.Spec
	if cfg.Server.OpenAPIPath != "" {
		var err error
		if spec, err = swagger.Load(context.Background(), cfg.Server.OpenAPIPath); err != nil {
			return err
		}
	}

	rest.RegisterAllRoutes(deps.Router, rest.Dependencies{
		DB:             deps.DB,
		Resolver:       resolver,
		Authorizer:     engine,
		Logger:         lg,
		LoginRateLimit: cfg.Security.LoginRateLimit,
		Metrics:        httpMetrics,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Observability.Metrics.Path,
		Spec:           spec,

		AuthHandler:  auth.NewHandler(base, authService),
		UserHandler:  user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(gdb), credentials, runner, lg)),
		RoleHandler:  role.NewHandler(base, role.NewService(rolePostgres.NewRoleRepository(gdb), runner, lg)),
		GrantHandler: grant.NewHandler(base, grant.NewService(grantPostgres.NewGrantRepository(gdb), runner, lg)),
		AuditHandler: audit.NewHandler(base, auditService),
		BookHandler:  book.NewHandler(base, book.NewService(bookPostgres.NewBookRepository(gdb), engine, runner, lg)),
	})
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := openGorm(db, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gdb,
		Router: chi.NewRouter(),
		Logger: lg,
	}, nil
}
