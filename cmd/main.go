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

	"github.com/go-chi/chi/v5"

	"github.com/okian/recap/internal/adapters/http/api"
	"github.com/okian/recap/internal/adapters/http/site"
	"github.com/okian/recap/internal/adapters/http/swagger"
	app "github.com/okian/recap/internal/app"
	"github.com/okian/recap/internal/config"
	"github.com/okian/recap/pkg/logger"
	"github.com/okian/recap/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := initLogging(cfg); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts, err := serviceOptions(cfg)
	if err != nil {
		loggerInstance.Error(ctx, "invalid service configuration", logger.Error(err))
		return
	}
	svc := app.New(append(opts, app.WithLogger(loggerInstance))...)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("dataDir", cfg.DataDir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(context.Background(), "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(shutdownCtx, "server stopped")
}

// initLogging configures the global logger from cfg.
func initLogging(cfg *config.Config) error {
	opts := []logger.Option{logger.WithFormat(cfg.LogFormat)}
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups))
	}
	return logger.Init(opts...)
}

// serviceOptions maps configuration onto report service options.
func serviceOptions(cfg *config.Config) ([]app.Option, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	start, end, err := cfg.SeriesRange()
	if err != nil {
		return nil, err
	}
	cutoff, err := cfg.Cutoff()
	if err != nil {
		return nil, err
	}

	return []app.Option{
		app.WithDataDir(cfg.DataDir),
		app.WithDatasets(app.Datasets{
			Members:  cfg.MembersDataset,
			Activity: cfg.ActivityDataset,
			Events:   cfg.EventsDataset,
			Staff:    cfg.StaffDataset,
			Matches:  cfg.MatchesDataset,
		}),
		app.WithFillPolicy(policy),
		app.WithSeriesRange(start, end),
		app.WithSmoothingWindow(cfg.SmoothingWindow),
		app.WithDailyIncrement(cfg.DailyIncrement),
		app.WithMeanCutoff(cutoff),
		app.WithRounding(cfg.RoundValues),
		app.WithDepartmentOrder(cfg.DepartmentOrder),
		app.WithActivityCategories(cfg.ActivityCategories),
		app.WithWinLabels(cfg.WinLabels),
		app.WithReportConcurrency(cfg.ReportConcurrency),
	}, nil
}

// newHandler builds the router with the landing page, docs and report routes.
func newHandler(ctx context.Context, svc *app.Service) chi.Router {
	router := api.NewRouter()

	// Landing page at /
	site.Register(ctx, router)

	// Register API docs under /api-docs
	swagger.Register(ctx, router)

	// Register report API routes with the service dependency.
	api.NewServer(svc, svc).Register(ctx, router)
	return router
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

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
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
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes session gauges.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if cached, ok := stats["cachedDatasets"].(int); ok {
		metrics.UpdateCacheEntries(cached)
	}
}
