package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/cache"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/customer"
	"github.com/xenking/storefront/internal/handler"
	"github.com/xenking/storefront/internal/shopify"
	"github.com/xenking/storefront/pkg/health"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

var probes = []string{"/livez", "/readyz"}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Shopify.StoreDomain),
		zap.Bool("redis", cfg.Cache.RedisURL != ""),
	)
	if !cfg.Shopify.Configured() {
		lg.Warn("Storefront API credentials missing, serving degraded defaults")
	}

	s, err := newServer(ctx, lg, m, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	s.health.Start(ctx, 10*time.Second)
	s.health.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      cfg.Shopify.Timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           s.handler,
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		s.health.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		s.health.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

type server struct {
	handler http.Handler
	health  *health.Health
	close   func()
}

// newServer builds the full handler chain: probes, API routes and the
// middleware stack. Health checks are registered but not started.
func newServer(ctx context.Context, lg *zap.Logger, m httpmiddleware.Telemetry, cfg *Config) (*server, error) {
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Register(health.Readiness, health.Check{
		Name:     "shopify",
		Timeout:  time.Second,
		Fn:       health.ConfiguredCheck(cfg.Shopify.Configured, "storefront API credentials not configured"),
		Advisory: true,
	})

	store, closeStore, err := newStore(ctx, lg, cfg.Cache, healthSvc)
	if err != nil {
		return nil, errors.Wrap(err, "create cache")
	}

	client, err := shopify.New(shopify.Config{
		StoreDomain: cfg.Shopify.StoreDomain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.Timeout,
		HiddenTag:   cfg.Shopify.HiddenTag,
		CatalogTTL:  cfg.Cache.CatalogTTL,
		CartTTL:     cfg.Cache.CartTTL,
	}, shopify.Options{
		Cache:          store,
		Logger:         lg.Named("shopify"),
		MeterProvider:  m.MeterProvider(),
		TracerProvider: m.TracerProvider(),
	})
	if err != nil {
		closeStore()
		return nil, errors.Wrap(err, "create shopify client")
	}

	// Domain services.
	catalogSvc := catalog.NewService(
		catalog.ServiceConfig{StoreDomain: shopify.Origin(cfg.Shopify.StoreDomain)},
		client,
		lg.Named("catalog"),
	)
	cartManager := cart.NewManager(client.Carts(), store, lg.Named("cart"))
	customerSvc := customer.NewService(client.Customers(), lg.Named("customer"))

	// HTTP handlers.
	gin.SetMode(gin.ReleaseMode)
	h := handler.NewHandler(
		handler.HandlerConfig{
			CookieSecure:  cfg.Cookies.Secure,
			CookieDomain:  cfg.Cookies.Domain,
			WebhookSecret: cfg.Shopify.WebhookSecret,
		},
		catalogSvc,
		cartManager,
		customerSvc,
		store,
	)

	// Mux: health endpoints + gin API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", handler.NewEngine(h))

	return &server{
		handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				Origins:          cfg.CORS.Origins,
				AllowCredentials: cfg.CORS.AllowCredentials,
				Headers:          []string{"Content-Type", httpmiddleware.HeaderRequestID},
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:      cfg.RateLimit.Max,
				Window:   cfg.RateLimit.Window,
				Prefixes: []string{"/api/customer/", "/api/revalidate"},
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront", m, probes...),
			httpmiddleware.LogRequests(probes...),
		),
		health: healthSvc,
		close:  closeStore,
	}, nil
}

// newStore returns the Redis cache when a URL is configured and the
// in-memory cache otherwise. The in-memory cache is swept until ctx is done.
func newStore(ctx context.Context, lg *zap.Logger, cfg CacheConfig, healthSvc *health.Health) (cache.Store, func(), error) {
	if cfg.RedisURL != "" {
		client, err := cache.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		store := cache.NewRedis(client, cfg.Prefix)
		healthSvc.AddReadinessCheck("redis", 5*time.Second, health.PingCheck(store))
		lg.Info("Using Redis cache", zap.String("prefix", cfg.Prefix))
		return store, func() {
			if err := client.Close(); err != nil {
				lg.Warn("Close redis", zap.Error(err))
			}
		}, nil
	}

	store := cache.NewMemory()
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := store.Sweep(); n > 0 {
					lg.Debug("Swept cache", zap.Int("expired", n))
				}
			}
		}
	}()
	lg.Info("Using in-memory cache")
	return store, func() {}, nil
}
