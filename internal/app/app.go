// Package app wires configuration, storage, domain services, and the HTTP
// server into a running process.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ironkart/ironkart/internal/api"
	"github.com/ironkart/ironkart/internal/domain/cart"
	"github.com/ironkart/ironkart/internal/domain/order"
	"github.com/ironkart/ironkart/internal/domain/pricing"
	"github.com/ironkart/ironkart/internal/media"
	"github.com/ironkart/ironkart/internal/repository"
	redisrepo "github.com/ironkart/ironkart/internal/repository/redis"
	"github.com/ironkart/ironkart/internal/session"
	"github.com/ironkart/ironkart/pkg/health"
	"github.com/ironkart/ironkart/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Redis is optional: without it, carts live only in process memory and
	// admin sessions do not survive a restart.
	var (
		rdb          *redisrepo.Client
		cartSessions cart.SessionRepository
		tokens       session.TokenStore = session.NewMemoryTokenStore()
	)
	if cfg.RedisURL != "" {
		rdb, err = redisrepo.New(ctx, cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "create redis client")
		}
		defer rdb.Close()
		cartSessions = redisrepo.NewCartRepository(rdb, cfg.CartTTL)
		tokens = redisrepo.NewTokenStore(rdb)
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	if rdb != nil {
		healthSvc.AddReadinessCheck("redis", 2*time.Second, rdb.Health)
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	contentRepo := repository.NewContentRepository(pool)
	adminKeyRepo := repository.NewAdminKeyRepository(pool)

	// Domain services.
	carts := cart.NewStore(cartSessions)
	resolver := pricing.NewResolver(settingsRepo)
	gateway := order.NewSimulatedGateway(cfg.PaymentDelay)
	checkout := order.NewService(carts, resolver, gateway, orderRepo)
	sessions := session.NewManager(adminKeyRepo, tokens, []byte(cfg.AdminKeyPepper), cfg.SessionTTL)

	mediaStore, err := media.NewFileStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		return errors.Wrap(err, "create media store")
	}

	// HTTP routes: health probes, uploaded images, and the API.
	handler := api.NewHandler(api.Config{
		Products:   productRepo,
		Categories: categoryRepo,
		Carts:      carts,
		Pricing:    resolver,
		Checkout:   checkout,
		Orders:     orderRepo,
		Settings:   settingsRepo,
		About:      contentRepo,
		Media:      mediaStore,
		Sessions:   sessions,
	})

	r := chi.NewRouter()
	r.Get("/livez", healthSvc.LiveEndpoint)
	r.Get("/readyz", healthSvc.ReadyEndpoint)
	r.Handle(cfg.MediaBaseURL+"/*", http.StripPrefix(cfg.MediaBaseURL+"/",
		http.FileServer(http.Dir(mediaStore.Dir()))))
	handler.Register(r)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(r, "ironkart-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowCredentials: cfg.CORS.AllowCredentials,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
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
