package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pairwave/signaling/internal/config"
	"github.com/pairwave/signaling/internal/health"
	"github.com/pairwave/signaling/internal/hub"
	"github.com/pairwave/signaling/internal/identity"
	"github.com/pairwave/signaling/internal/invites"
	"github.com/pairwave/signaling/internal/logs"
	"github.com/pairwave/signaling/internal/metrics"
	"github.com/pairwave/signaling/internal/middleware"
	"github.com/pairwave/signaling/internal/ws"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to YAML config (optional)")
	flag.Parse()

	// 1) Config + logger
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger := logs.New("srv", cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2) Mux + core endpoints (rate-limited if configured; /ws has its own limiter)
	httpRL := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitingEnabled {
		httpRL = middleware.New(cfg.HTTPRatePerSec, cfg.HTTPBurst).Middleware()
	}
	mux := http.NewServeMux()
	mux.Handle("/healthz", httpRL(health.Healthz()))
	mux.Handle("/readyz", httpRL(health.Readyz()))
	mux.Handle(cfg.MetricsRoute, httpRL(metrics.Handler()))

	// 3) Invite store with its expiry janitor
	inv := invites.NewStore(cfg.InviteTTL)
	inv.StartJanitor(ctx)

	// 4) WebSocket endpoint: identity + hub + WS rate limit + tuning
	h := hub.New(hub.Options{
		MaxRoomSize: cfg.MaxRoomSize,
		Invites:     inv,
		Logger:      logger.Named("hub"),
	})
	ids := identity.New(cfg.JWTSecret, cfg.DevMode)
	wsOptions := []ws.Option{
		ws.WithBuffers(cfg.WSReadBuf, cfg.WSWriteBuf),
		ws.WithLimits(cfg.WSMaxMsg, cfg.Heartbeat),
	}
	if cfg.RateLimitingEnabled {
		wsOptions = append(wsOptions, ws.WithRateLimiter(middleware.New(cfg.WSConnRatePerSec, cfg.WSConnBurst)))
	}
	mux.Handle("/ws", ws.NewHandler(h, ids, cfg.CORSOrigins, logger.Named("ws"), cfg.DevMode, wsOptions...))

	// 5) HTTP server with timeouts
	srv := &http.Server{
		Addr:              cfg.BindAddr(),
		Handler:           logs.Middleware(logger)(mux),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	// 6) Serve (TLS if cert+key are set)
	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			logger.Info("serving HTTPS", zap.String("addr", cfg.BindAddr()))
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		logger.Info("serving HTTP", zap.String("addr", cfg.BindAddr()))
		errCh <- srv.ListenAndServe()
	}()

	// 7) Block until we're told to stop (signal) or the server fails
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}
}
