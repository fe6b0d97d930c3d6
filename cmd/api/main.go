// Package main is the entry point for the FairHour API server.
//
// It loads configuration, connects the Postgres pool, wires the forecast
// provider, notification dispatcher, and monitoring service, restores
// persisted monitors, and serves the HTTP API alongside the janitor cron.
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"fairhour/internal/api/handlers"
	"fairhour/internal/config"
	"fairhour/internal/core"
	"fairhour/internal/db"
	"fairhour/internal/external"
	"fairhour/internal/forecast"
	"fairhour/internal/monitor"
	"fairhour/internal/notifications/calendar"
	"fairhour/internal/notifications/email"
	"fairhour/internal/telemetry"
	"fairhour/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := config.LoadConfig(config.NewSSMProvider(region))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("fairhour API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	repo := db.NewEventRepository(pool)

	userAgent := "FairHour/" + cfg.Build.Version
	forecastBase := external.NewBaseClient(
		&http.Client{Timeout: cfg.Forecast.Timeout},
		"open-meteo",
		external.DefaultRetryPolicy(),
		userAgent,
	)
	provider := forecast.NewClient(forecastBase, cfg.Forecast.BaseURL, logger)

	emailBase := external.NewBaseClient(
		&http.Client{Timeout: 10 * time.Second},
		"sendgrid",
		external.DefaultRetryPolicy(),
		userAgent,
	)
	dispatcher := email.NewSendGridDispatcher(emailBase, calendar.NewICSExporter(""), email.DispatcherConfig{
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		BaseURL:     cfg.Email.BaseURL,
		Logger:      logger,
	})

	monitorMetrics, apiMetrics, err := newMetrics(ctx, cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	svc := monitor.NewService(monitor.ServiceConfig{
		Repo:       repo,
		Provider:   provider,
		Dispatcher: dispatcher,
		Metrics:    monitorMetrics,
		Clock:      types.RealClock{},
		Logger:     logger,
	})
	defer svc.Close()

	if err := svc.Restore(ctx); err != nil {
		return fmt.Errorf("restoring monitors: %w", err)
	}

	janitor := cron.New()
	if _, err := janitor.AddFunc(cfg.Janitor.SweepSchedule, func() {
		svc.Sweep(context.Background())
	}); err != nil {
		return fmt.Errorf("scheduling janitor sweep: %w", err)
	}

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Metrics = apiMetrics
	srv.HealthProbes = []core.HealthProbe{dbProbe{pool: pool}}

	monitorHandler := handlers.NewMonitorHandler(svc, provider, srv.Validator, types.RealClock{}, logger)
	scoreHandler := handlers.NewScoreHandler(provider, types.RealClock{}, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { monitorHandler.RegisterRoutes(r) },
		func(r chi.Router) { scoreHandler.RegisterRoutes(r) },
	)
	srv.MountRoutes()

	return serve(ctx, cfg, srv, janitor, logger)
}

// serve runs the HTTP server and the janitor cron until a shutdown signal or
// server failure, then drains both gracefully.
func serve(ctx context.Context, cfg *config.Config, srv *core.Server, janitor *cron.Cron, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	janitor.Start()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		cronCtx := janitor.Stop()
		select {
		case <-cronCtx.Done():
		case <-shutdownCtx.Done():
			logger.Warn("janitor sweep still running at shutdown deadline")
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped cleanly")
	return nil
}

// newPool builds the pgx connection pool with the configured tuning and
// verifies connectivity before returning.
func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// newMetrics builds the CloudWatch recorders when telemetry is enabled, or
// no-op implementations otherwise.
func newMetrics(ctx context.Context, cfg config.TelemetryConfig, logger *slog.Logger) (telemetry.MonitorMetrics, core.MetricsCollector, error) {
	if !cfg.Enabled {
		return telemetry.NoopMetrics{}, nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	})

	return telemetry.NewCloudWatchMonitorMetrics(client, logger),
		telemetry.NewCloudWatchAPIMetrics(client, logger),
		nil
}

// dbProbe reports database health via a pool ping.
type dbProbe struct {
	pool *pgxpool.Pool
}

func (dbProbe) Name() string { return "database" }

func (p dbProbe) Check(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// newLogger creates a JSON slog.Logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
