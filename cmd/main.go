package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/rondo/internal/config"
	"github.com/okian/rondo/internal/simulate"
	"github.com/okian/rondo/pkg/logger"
	"github.com/okian/rondo/pkg/metrics"
)

// Metrics server timeout constants.
const (
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

func main() {
	var (
		baseURL     = flag.String("url", "http://localhost:8000/api/leaderboard", "Base URL of the leaderboard API")
		workers     = flag.Int("workers", 10, "Number of concurrent simulated users")
		users       = flag.Int("users", 1_000_000, "Upper bound of the random user ID range")
		interval    = flag.Duration("interval", time.Second, "Base think time between a worker's requests")
		iterations  = flag.Int("iterations", 0, "Per-worker iteration budget, 0 = run until interrupted")
		report      = flag.Duration("report", 5*time.Second, "Interval between periodic metrics reports")
		reportEvery = flag.Int("report-every", 0, "Report every N completed iterations, 0 = off")
		timeout     = flag.Duration("timeout", 10*time.Second, "HTTP request timeout")
		profile     = flag.String("profile", config.SleepProfileScaled, "Think-time profile: scaled or fixed")
		metricsAddr = flag.String("metrics", "", "Listen address for Prometheus metrics, empty = disabled")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Explicitly set flags take precedence over file/env configuration.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.BaseURL = *baseURL
		case "workers":
			cfg.Workers = *workers
		case "users":
			cfg.MaxUsers = *users
		case "interval":
			cfg.BaseInterval = *interval
		case "iterations":
			cfg.MaxIterations = *iterations
		case "report":
			cfg.ReportPeriod = *report
		case "report-every":
			cfg.ReportEvery = *reportEvery
		case "timeout":
			cfg.RequestTimeout = *timeout
		case "profile":
			cfg.SleepProfile = *profile
		case "metrics":
			cfg.MetricsAddr = *metricsAddr
		}
	})

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	if cfg.MetricsAddr != "" {
		startMetricsServer(ctx, cfg.MetricsAddr, log)
	}

	runCfg := &simulate.Config{
		BaseURL:       cfg.BaseURL,
		Workers:       cfg.Workers,
		MaxUsers:      cfg.MaxUsers,
		BaseInterval:  cfg.BaseInterval,
		MaxIterations: cfg.MaxIterations,
		ReportPeriod:  cfg.ReportPeriod,
		ReportEvery:   cfg.ReportEvery,
		Timeout:       cfg.RequestTimeout,
	}
	if cfg.SleepProfile == config.SleepProfileFixed {
		runCfg.Profile = simulate.FixedProfile()
	}

	if err := simulate.Run(ctx, runCfg); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		return
	}
}

// startMetricsServer exposes the Prometheus registry and shuts the listener
// down with the run context.
func startMetricsServer(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "metrics listening", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
