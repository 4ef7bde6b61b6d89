package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xenking/kimhut-cafe/internal/domain/cart"
	"github.com/xenking/kimhut-cafe/internal/domain/order"
	"github.com/xenking/kimhut-cafe/internal/domain/product"
	"github.com/xenking/kimhut-cafe/internal/handler"
	"github.com/xenking/kimhut-cafe/internal/notify"
	"github.com/xenking/kimhut-cafe/internal/storage/jsonfile"
	"github.com/xenking/kimhut-cafe/internal/storage/postgres"
	"github.com/xenking/kimhut-cafe/pkg/health"
	"github.com/xenking/kimhut-cafe/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Catalog source: database when configured, products.json otherwise.
	var source product.Source
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		p, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer p.Close()

		if err := postgres.RunMigrations(ctx, p); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		pool = p
		source = postgres.NewProductSource(p)
	} else {
		source = jsonfile.New(cfg.CatalogPath)
	}

	// The catalog is loaded once; the index is immutable and shared across
	// all sessions without synchronization.
	products, err := source.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	index := product.NewIndex(products)
	lg.Info("Catalog loaded",
		zap.Int("products", index.Len()),
		zap.Strings("categories", index.Categories()),
	)

	// Health check service.
	healthSvc := health.New()
	if pool != nil {
		healthSvc.AddReadiness("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	}
	healthSvc.AddLiveness("goroutines", time.Second, health.GoroutineCount(10000))
	healthSvc.AddLiveness("gc-pause", time.Second, health.GCPause(time.Second))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Session carts.
	carts := cart.NewRegistry(cfg.Session.TTL)
	carts.StartSweeper(ctx, cfg.Session.SweepInterval)

	// Notification channels. Either channel may be unconfigured; dispatch
	// then soft-skips it.
	pushCh := notify.NewPushChannel(notify.PushConfig{
		BotToken: cfg.Push.BotToken,
		ChatID:   cfg.Push.ChatID,
		APIBase:  cfg.Push.APIBase,
		Timeout:  cfg.Push.Timeout,
	}, m.TracerProvider())
	if cfg.Push.BotToken == "" || cfg.Push.ChatID == "" {
		lg.Warn("Push channel not configured; order notifications will be skipped")
	}
	mailCh, err := notify.NewEmailChannel(notify.MailConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	if err != nil {
		return errors.Wrap(err, "create email channel")
	}
	if cfg.Mail.Host == "" || cfg.Mail.Username == "" {
		lg.Warn("Mail transport not configured; invoice emails will be skipped")
	}
	dispatcher := notify.NewDispatcher(pushCh, mailCh, m.MeterProvider(), lg)

	// Order flow + HTTP handlers.
	flow := order.NewFlow(index, dispatcher)
	h := handler.New(index, carts, flow)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.Session(cfg.Session.CookieName),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	return serveAndDrain(ctx, lg, server, healthSvc, cfg.Graceful)
}

// serveAndDrain runs the server until ctx is cancelled, then lowers
// readiness, waits out the drain delay, and shuts the listener down. A
// listener that fails outright returns immediately instead of parking the
// drain path forever.
func serveAndDrain(ctx context.Context, lg *zap.Logger, server *http.Server, healthSvc *health.Service, cfg GracefulConfig) error {
	serveErr := make(chan error, 1)
	go func() {
		lg.Info("Server listening", zap.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		healthSvc.Stop()
		return errors.Wrap(err, "server")
	case <-ctx.Done():
	}

	healthSvc.SetReady(false)
	lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.ReadinessDelay))
	time.Sleep(cfg.ReadinessDelay)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	lg.Info("Shutting down server", zap.Duration("timeout", cfg.ShutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("Server shutdown error", zap.Error(err))
	}
	healthSvc.Stop()

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	return nil
}
