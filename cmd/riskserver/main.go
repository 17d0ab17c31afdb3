// Package main is the entry point for the risk report service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/branched-services/go-risk/internal/api/rest"
	"github.com/branched-services/go-risk/internal/config"
	"github.com/branched-services/go-risk/internal/observability"
	"github.com/branched-services/go-risk/internal/scenario"
	"github.com/branched-services/go-risk/pkg/health"
	"github.com/branched-services/go-risk/pkg/risk"
)

func main() {
	// Root context canceled on SIGTERM/SIGINT (12-factor: disposability)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	code := 0
	if err := run(ctx); err != nil {
		slog.Error("fatal error", "error", err)
		code = 1
	}

	os.Exit(code)
}

func run(ctx context.Context) error {
	// Load configuration from environment (12-factor: config)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Initialize structured logging (12-factor: logs as streams)
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("starting risk engine",
		"http_addr", cfg.HTTPAddr,
		"health_addr", cfg.HealthAddr,
		"scenario_file", cfg.ScenarioFile,
		"method", cfg.Method,
		"levels", cfg.Levels,
		"window_size", cfg.WindowSize,
		"recalc_interval", cfg.RecalcInterval,
	)

	// Build dependency graph (dependency inversion)

	// 1. Scenario observations from the configured backing file
	observations, err := scenario.Load(cfg.ScenarioFile)
	if err != nil {
		return fmt.Errorf("loading scenarios: %w", err)
	}
	source := scenario.NewReplay(cfg.PortfolioID, observations, cfg.BatchSize)
	defer source.Close()

	// 2. Provider (atomic report storage)
	provider := risk.NewProvider()

	// 3. Metrics registry, fed by the engine and the API
	metrics := observability.NewMetrics()

	// 4. Engine (orchestrates everything)
	engine := risk.New(
		source,
		provider,
		risk.WithMethod(cfg.QuantileMethod()),
		risk.WithLevels(cfg.Levels...),
		risk.WithWindowSize(cfg.WindowSize),
		risk.WithRecalcInterval(cfg.RecalcInterval),
		risk.WithLogger(logger),
		risk.WithRecorder(metrics),
	)

	// 5. API server
	apiServer := rest.NewServer(cfg.HTTPAddr, provider, logger, metrics)

	// 6. Health server
	healthServer := health.NewServer(cfg.HealthAddr, provider, metrics.Handler(), logger)

	// Run all components concurrently
	errCh := make(chan error, 3)

	go func() {
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("engine: %w", err)
		}
	}()

	go func() {
		if err := apiServer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	go func() {
		if err := healthServer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	case err := <-errCh:
		slog.Error("component failed", "error", err)
		return err
	}

	// Graceful shutdown with timeout
	slog.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown in reverse dependency order
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("api server shutdown error", "error", err)
	}

	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("health server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
