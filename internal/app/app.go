// Package app wires configuration, storage, domain services, and the HTTP
// server into a running application.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/adventureworks/storefront/db"
	"github.com/adventureworks/storefront/internal/domain/catalog"
	"github.com/adventureworks/storefront/internal/domain/identity"
	"github.com/adventureworks/storefront/internal/domain/order"
	"github.com/adventureworks/storefront/internal/domain/pricing"
	"github.com/adventureworks/storefront/internal/filestore"
	"github.com/adventureworks/storefront/internal/handler"
	"github.com/adventureworks/storefront/internal/postgres"
	"github.com/adventureworks/storefront/pkg/health"
	"github.com/adventureworks/storefront/pkg/httpmiddleware"
)

// repositories bundles the storage backends the domain services need,
// regardless of which driver produced them.
type repositories struct {
	catalog catalog.Repository
	users   identity.Repository
	orders  order.Repository
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	repos, closeStorage, err := openStorage(ctx, cfg, healthSvc)
	if err != nil {
		return errors.Wrap(err, "open storage")
	}
	defer closeStorage()

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	engine := pricing.NewEngine(repos.catalog)
	orderService := order.NewService(engine, repos.orders)
	identityService := identity.NewService(repos.users, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	// HTTP handlers.
	h := handler.New(repos.catalog, orderService, identityService)
	api := otelhttp.NewHandler(h.Routes(), "storefront-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", api)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// openStorage constructs the repositories for the configured driver and
// registers driver-specific readiness checks. The returned func releases the
// backend's resources.
func openStorage(ctx context.Context, cfg *Config, healthSvc *health.Health) (repositories, func(), error) {
	switch cfg.Storage.Driver {
	case "file":
		cat, err := filestore.LoadCatalog(db.Products)
		if err != nil {
			return repositories{}, nil, errors.Wrap(err, "load catalog")
		}
		store, err := filestore.Open(cfg.Storage.Dir)
		if err != nil {
			return repositories{}, nil, errors.Wrap(err, "open file store")
		}
		return repositories{
			catalog: cat,
			users:   store.Users(),
			orders:  store.Orders(),
		}, func() {}, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return repositories{}, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return repositories{}, nil, errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		return repositories{
			catalog: postgres.NewCatalogRepository(pool),
			users:   postgres.NewUserRepository(pool),
			orders:  postgres.NewOrderRepository(pool),
		}, pool.Close, nil

	default:
		return repositories{}, nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
