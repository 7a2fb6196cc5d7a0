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

	"github.com/okian/lookbook/internal/adapters/http/api"
	"github.com/okian/lookbook/internal/adapters/http/swagger"
	"github.com/okian/lookbook/internal/adapters/oracle"
	service "github.com/okian/lookbook/internal/app"
	"github.com/okian/lookbook/internal/config"
	"github.com/okian/lookbook/internal/domain/labelcache"
	"github.com/okian/lookbook/pkg/logger"
	"github.com/okian/lookbook/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 60 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := service.New(serviceOptions(cfg, log)...)
	if err := svc.Start(ctx); err != nil {
		log.Fatal(ctx, "failed to load recommender", logger.Error(err))
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx, cfg.MetricsRefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// serviceOptions maps configuration onto service options. Photo uploads are
// only wired when an oracle endpoint is configured.
func serviceOptions(cfg *config.Config, log logger.Logger) []service.Option {
	opts := []service.Option{
		service.WithLogger(log),
		service.WithCorpusPath(cfg.CorpusPath),
		service.WithImageIndexPath(cfg.ImageIndexPath),
		service.WithImageBaseURL(cfg.ImageBaseURL),
		service.WithFallbackFactor(cfg.FallbackFactor),
		service.WithDefaultK(cfg.DefaultK),
		service.WithMaxK(cfg.MaxK),
	}
	if cfg.OracleURL == "" {
		log.Warn(context.Background(), "oracle_url not set; photo recommendations are disabled")
		return opts
	}
	client := oracle.New(cfg.OracleURL,
		oracle.WithTimeout(cfg.OracleTimeout()),
		oracle.WithBreaker(cfg.BreakerMaxRequests, cfg.BreakerTimeout()),
		oracle.WithFailureThreshold(cfg.BreakerFailureThreshold),
		oracle.WithLogger(log.Named("oracle")),
	)
	opts = append(opts, service.WithLabeler(client))
	if cfg.LabelCacheSize > 0 {
		opts = append(opts, service.WithLabelCache(labelcache.New(labelcache.WithMaxSize(cfg.LabelCacheSize))))
	}
	return opts
}

func newMux(ctx context.Context, cfg *config.Config, svc *service.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc,
		api.WithMaxUploadBytes(cfg.MaxUploadBytes),
		api.WithLogger(log.Named("api")),
	).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater samples runtime metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	updateSystemMetrics()
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
