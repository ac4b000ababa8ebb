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

	"github.com/okian/scoreview/internal/adapters/cache"
	"github.com/okian/scoreview/internal/adapters/http/api"
	"github.com/okian/scoreview/internal/adapters/http/swagger"
	"github.com/okian/scoreview/internal/adapters/scoreapi"
	service "github.com/okian/scoreview/internal/app"
	"github.com/okian/scoreview/internal/config"
	"github.com/okian/scoreview/pkg/logger"
	"github.com/okian/scoreview/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	client, err := newClient(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to create scoreboard client", logger.Error(err))
		os.Exit(1)
	}
	svc, err := newService(cfg, client, log)
	if err != nil {
		log.Error(ctx, "failed to create viewer service", logger.Error(err))
		os.Exit(1)
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("backend", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Live connections are hijacked and not tracked by Shutdown; closing the
	// sessions ends their streams.
	svc.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// newClient builds the backend client shared by one-shot views.
func newClient(cfg *config.Config, log logger.Logger) (*scoreapi.Client, error) {
	return scoreapi.New(cfg.APIBaseURL,
		scoreapi.WithTimeout(cfg.RequestTimeout()),
		scoreapi.WithRateLimit(cfg.RateLimitPerSec),
		scoreapi.WithCache(cache.NewTTLCache(
			cache.WithTTL(cfg.CacheTTL()),
			cache.WithMaxEntries(cfg.CacheMaxEntries),
		)),
		scoreapi.WithLogger(log.Named("scoreapi")),
	)
}

// newService serves one-shot views through client's shared cache. Live
// sessions bypass it and cache per session.
func newService(cfg *config.Config, client *scoreapi.Client, log logger.Logger) (*service.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return service.New(client,
		service.WithSessionBackend(client.Uncached()),
		service.WithLogger(log.Named("viewer")),
		service.WithSettleDelay(cfg.SettleDelay()),
		service.WithSessionCache(cfg.CacheTTL(), cfg.CacheMaxEntries),
		service.WithPageSize(cfg.PageSize),
		service.WithMailboxSize(cfg.MailboxSize),
		service.WithMaxSessions(cfg.MaxSessions),
		service.WithLocation(loc),
	), nil
}

func newMux(ctx context.Context, svc *service.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, log.Named("api")).Register(ctx, mux)
	return mux
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
