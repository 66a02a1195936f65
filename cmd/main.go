package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/typerank/internal/adapters/http/api"
	"github.com/okian/typerank/internal/adapters/http/site"
	"github.com/okian/typerank/internal/adapters/http/swagger"
	service "github.com/okian/typerank/internal/app"
	"github.com/okian/typerank/internal/config"
	"github.com/okian/typerank/pkg/logger"
	"github.com/okian/typerank/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 30 * time.Second
	limiterSweepInterval      = time.Minute
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (dotenv -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.New("failed to load config: " + err.Error())
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return errors.New("failed to initialize logging: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to open storage", logger.String("backend", cfg.StorageBackend), logger.Error(err))
		return err
	}

	svc := service.New(
		service.WithStore(store, cfg.StorageBackend),
		service.WithTiers(cfg.ActiveTiers()...),
		service.WithAuthEnabled(cfg.AuthEnabled),
		service.WithLogger(logger.Named("service")),
	)
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error(context.Background(), "failed to close storage", logger.Error(err))
		}
	}()

	// Surface a malformed document at startup rather than on the first request.
	if _, err := svc.GetStats(ctx); err != nil {
		log.Warn(ctx, "leaderboard document could not be read", logger.Error(err))
	}

	serverOpts := []api.ServerOption{
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithServerLogger(logger.Named("http")),
	}

	if cfg.AuthEnabled {
		authOpts := []api.AuthOption{
			api.WithRealm(cfg.AuthRealm),
			api.WithAuthLogger(logger.Named("auth")),
		}
		if cfg.AdminPasswordHash != "" {
			authOpts = append(authOpts, api.WithPasswordHash(cfg.AdminPasswordHash))
		} else {
			authOpts = append(authOpts, api.WithPassword(cfg.AdminPassword))
		}
		serverOpts = append(serverOpts, api.WithAdminAuth(api.NewBasicAuth(cfg.AdminUser, authOpts...)))
	} else {
		log.Warn(ctx, "admin authentication is disabled; the admin surface is open to every client")
	}

	if cfg.ScoreRateLimit > 0 {
		limiter := api.NewRateLimiter(cfg.ScoreRateLimit, cfg.ScoreRateBurst,
			api.WithTrustForwardedFor(cfg.TrustForwardedFor),
			api.WithLimiterLogger(logger.Named("ratelimit")),
		)
		go limiter.Run(ctx, limiterSweepInterval)
		serverOpts = append(serverOpts, api.WithScoreLimiter(limiter))
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	mux := http.NewServeMux()

	apiServer := api.NewServer(svc, serverOpts...)
	apiServer.Register(ctx, mux)
	site.Register(ctx, mux, site.WithAdminGuard(apiServer.Guard()))
	swagger.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("backend", cfg.StorageBackend),
			logger.Bool("tiered", svc.Tiered()),
			logger.Strings("tiers", svc.Tiers()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes the players gauge, which can drift when
// another process writes the shared document.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.GetStats(ctx); err != nil {
				logger.Get().Debug(ctx, "stats refresh failed", logger.Error(err))
			}
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
